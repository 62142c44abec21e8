// Package deck models an ordered, user-curated collection of practice
// images and its mutation operations.
package deck

import (
	"errors"
	"fmt"
	"sort"
)

// Difficulty bounds for an asset. Out-of-range values are rejected at
// the mutation boundary so the rest of the engine can rely on them.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// MaxTagLen is the maximum rune length of a single tag.
const MaxTagLen = 24

var (
	ErrDuplicateFilename = errors.New("an asset with that filename already exists")
	ErrAssetNotFound     = errors.New("asset not found")
)

// SourceKind distinguishes how an asset's pixels are stored.
type SourceKind string

const (
	// SourceByPath references an image file outside the deck (legacy
	// decks stored bare paths).
	SourceByPath SourceKind = "path"

	// SourceEmbedded owns the image bytes inside the deck record.
	SourceEmbedded SourceKind = "embedded"
)

// AssetSource is the tagged variant behind an asset's pixels, resolved
// once at load time so nothing downstream branches on representation.
type AssetSource struct {
	Kind SourceKind `json:"kind"`
	Path string     `json:"path,omitempty"`
	Data []byte     `json:"data,omitempty"`
}

// ByPath builds a legacy external-file source.
func ByPath(path string) AssetSource {
	return AssetSource{Kind: SourceByPath, Path: path}
}

// Embedded builds a source owning the image bytes.
func Embedded(data []byte) AssetSource {
	return AssetSource{Kind: SourceEmbedded, Data: data}
}

// ImageAsset is one practice image plus its metadata. Filename is the
// identity within a deck.
type ImageAsset struct {
	Filename   string      `json:"filename"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	ByteSize   int64       `json:"byte_size"`
	Difficulty int         `json:"difficulty"`
	Tags       []string    `json:"tags,omitempty"`
	Source     AssetSource `json:"source"`
}

// HasTag reports whether the asset carries the tag.
func (a *ImageAsset) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Deck is an ordered sequence of image assets with a current file
// association. The order is user-significant and persisted as-is.
type Deck struct {
	assets []ImageAsset
	path   string // "" means untitled
	dirty  bool
}

// New creates an empty, untitled deck.
func New() *Deck {
	return &Deck{}
}

// Load builds a deck from previously persisted assets.
func Load(path string, assets []ImageAsset) (*Deck, error) {
	d := &Deck{path: path}
	for _, a := range assets {
		if err := d.Add(a); err != nil {
			return nil, fmt.Errorf("asset %q: %w", a.Filename, err)
		}
	}
	d.dirty = false
	return d, nil
}

// Path returns the current file association, or "" for untitled decks.
func (d *Deck) Path() string { return d.path }

// Dirty reports whether the deck has unsaved mutations.
func (d *Deck) Dirty() bool { return d.dirty }

// MarkSaved records the deck as persisted at path.
func (d *Deck) MarkSaved(path string) {
	d.path = path
	d.dirty = false
}

// Len returns the number of assets.
func (d *Deck) Len() int { return len(d.assets) }

// Assets returns a copy of the ordered asset list. Sessions snapshot
// this; later deck edits never reach a running session.
func (d *Deck) Assets() []ImageAsset {
	out := make([]ImageAsset, len(d.assets))
	copy(out, d.assets)
	return out
}

// Asset returns the asset with the given filename.
func (d *Deck) Asset(filename string) (ImageAsset, error) {
	i := d.index(filename)
	if i < 0 {
		return ImageAsset{}, fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	return d.assets[i], nil
}

// Add appends an asset, enforcing filename uniqueness and clamping
// metadata into its invariants (difficulty defaults to 1).
func (d *Deck) Add(a ImageAsset) error {
	if a.Filename == "" {
		return errors.New("asset filename must not be empty")
	}
	if d.index(a.Filename) >= 0 {
		return fmt.Errorf("%q: %w", a.Filename, ErrDuplicateFilename)
	}
	if a.Difficulty < MinDifficulty || a.Difficulty > MaxDifficulty {
		a.Difficulty = MinDifficulty
	}
	for _, tag := range a.Tags {
		if err := validateTag(tag); err != nil {
			return err
		}
	}
	a.Tags = dedupeTags(a.Tags)
	d.assets = append(d.assets, a)
	d.dirty = true
	return nil
}

// Remove deletes the asset with the given filename.
func (d *Deck) Remove(filename string) error {
	i := d.index(filename)
	if i < 0 {
		return fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	d.assets = append(d.assets[:i], d.assets[i+1:]...)
	d.dirty = true
	return nil
}

// Move repositions the asset to index to, shifting neighbors.
func (d *Deck) Move(filename string, to int) error {
	from := d.index(filename)
	if from < 0 {
		return fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(d.assets) {
		to = len(d.assets) - 1
	}
	if from == to {
		return nil
	}
	a := d.assets[from]
	d.assets = append(d.assets[:from], d.assets[from+1:]...)
	d.assets = append(d.assets[:to], append([]ImageAsset{a}, d.assets[to:]...)...)
	d.dirty = true
	return nil
}

// Rename changes an asset's filename, keeping uniqueness.
func (d *Deck) Rename(from, to string) error {
	if to == "" {
		return errors.New("new filename must not be empty")
	}
	i := d.index(from)
	if i < 0 {
		return fmt.Errorf("%q: %w", from, ErrAssetNotFound)
	}
	if from == to {
		return nil
	}
	if d.index(to) >= 0 {
		return fmt.Errorf("%q: %w", to, ErrDuplicateFilename)
	}
	d.assets[i].Filename = to
	d.dirty = true
	return nil
}

// SetDifficulty updates an asset's difficulty within [1,5].
func (d *Deck) SetDifficulty(filename string, difficulty int) error {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d out of range [%d,%d]", difficulty, MinDifficulty, MaxDifficulty)
	}
	i := d.index(filename)
	if i < 0 {
		return fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	d.assets[i].Difficulty = difficulty
	d.dirty = true
	return nil
}

// Tag adds a tag to an asset. Adding an existing tag is a no-op.
func (d *Deck) Tag(filename, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	i := d.index(filename)
	if i < 0 {
		return fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	if d.assets[i].HasTag(tag) {
		return nil
	}
	d.assets[i].Tags = append(d.assets[i].Tags, tag)
	d.dirty = true
	return nil
}

// Untag removes a tag from an asset. Removing an absent tag is a no-op.
func (d *Deck) Untag(filename, tag string) error {
	i := d.index(filename)
	if i < 0 {
		return fmt.Errorf("%q: %w", filename, ErrAssetNotFound)
	}
	tags := d.assets[i].Tags
	for j, t := range tags {
		if t == tag {
			d.assets[i].Tags = append(tags[:j], tags[j+1:]...)
			d.dirty = true
			return nil
		}
	}
	return nil
}

// Filenames returns the asset filenames in deck order.
func (d *Deck) Filenames() []string {
	out := make([]string, len(d.assets))
	for i, a := range d.assets {
		out[i] = a.Filename
	}
	return out
}

// AllTags returns every tag used in the deck, sorted.
func (d *Deck) AllTags() []string {
	seen := make(map[string]bool)
	for _, a := range d.assets {
		for _, t := range a.Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func (d *Deck) index(filename string) int {
	for i, a := range d.assets {
		if a.Filename == filename {
			return i
		}
	}
	return -1
}

func validateTag(tag string) error {
	if tag == "" {
		return errors.New("tag must not be empty")
	}
	if n := len([]rune(tag)); n > MaxTagLen {
		return fmt.Errorf("tag %q is %d chars, max %d", tag, n, MaxTagLen)
	}
	return nil
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
