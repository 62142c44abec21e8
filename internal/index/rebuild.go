package index

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/store"
)

// Rebuild repopulates the index from the pair files on disk. Pairs
// that fail to decode are logged and skipped; the rebuild keeps going.
func Rebuild(ctx context.Context, ix *Index, st *store.Store, logger *log.Logger) (int, error) {
	if err := ix.Clear(ctx); err != nil {
		return 0, err
	}
	names, err := st.ListPairs()
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, name := range names {
		pair, err := st.LoadPair(name)
		if err != nil {
			if logger != nil {
				logger.Warn("skip unreadable pair", "name", name, "err", err)
			}
			continue
		}
		if err := ix.Put(ctx, Entry{
			Name:            name,
			Source:          pair.Source.Filename,
			Timestamp:       pair.Timestamp,
			DurationSeconds: pair.DurationSeconds,
			Memo:            pair.Memo,
		}); err != nil {
			return indexed, err
		}
		indexed++
	}
	return indexed, nil
}
