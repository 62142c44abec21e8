package deck

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Record is the persisted form of a deck, round-tripped through the
// record codec.
type Record struct {
	Images []ImageAsset `json:"images"`
}

// UnmarshalJSON accepts both the current asset-object list and the
// legacy form where images was a bare list of file paths. Legacy
// entries resolve to by-path assets with default metadata, so the rest
// of the engine only ever sees ImageAssets.
func (r *Record) UnmarshalJSON(data []byte) error {
	var peek struct {
		Images []json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}

	r.Images = make([]ImageAsset, 0, len(peek.Images))
	for i, raw := range peek.Images {
		var path string
		if err := json.Unmarshal(raw, &path); err == nil {
			r.Images = append(r.Images, ImageAsset{
				Filename:   filepath.Base(path),
				Difficulty: MinDifficulty,
				Source:     ByPath(path),
			})
			continue
		}

		var asset ImageAsset
		if err := json.Unmarshal(raw, &asset); err != nil {
			return fmt.Errorf("image entry %d: %w", i, err)
		}
		r.Images = append(r.Images, asset)
	}
	return nil
}

// ToRecord exports the deck's persisted form.
func (d *Deck) ToRecord() Record {
	return Record{Images: d.Assets()}
}

// FromRecord builds a deck from a decoded record, associated with path.
func FromRecord(path string, r Record) (*Deck, error) {
	return Load(path, r.Images)
}
