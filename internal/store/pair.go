package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// pairStampFormat names pair files: {timestamp}_{source}.ckp.
const pairStampFormat = "20060102_150405"

// SourceMeta snapshots the reference asset at save time, so later
// deck edits cannot corrupt history.
type SourceMeta struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ByteSize int64  `json:"byte_size"`
}

// PracticePair links a reference image to the drawing captured for it.
// Immutable once written, except the memo.
type PracticePair struct {
	Timestamp       time.Time  `json:"timestamp"`
	DurationSeconds int        `json:"duration_seconds"`
	OriginalBytes   []byte     `json:"original_bytes"`
	CapturedBytes   []byte     `json:"captured_bytes"`
	Source          SourceMeta `json:"source"`
	Memo            string     `json:"memo,omitempty"`
}

// PairName returns the file name a pair is stored under.
func PairName(ts time.Time, sourceFilename string) string {
	base := strings.TrimSuffix(sourceFilename, filepath.Ext(sourceFilename))
	return fmt.Sprintf("%s_%s%s", ts.Format(pairStampFormat), sanitizeName(base), PairExt)
}

// SavePair writes a new pair record and returns its file name.
func (s *Store) SavePair(pair PracticePair) (string, error) {
	if pair.Timestamp.IsZero() {
		pair.Timestamp = time.Now()
	}
	name := PairName(pair.Timestamp, pair.Source.Filename)
	if err := s.writeRecord(filepath.Join(s.PairDir(), name), pair); err != nil {
		return "", err
	}
	return name, nil
}

// LoadPair reads one pair by file name.
func (s *Store) LoadPair(name string) (PracticePair, error) {
	var pair PracticePair
	err := s.readRecord(filepath.Join(s.PairDir(), name), &pair)
	return pair, err
}

// ListPairs returns pair file names, newest first. The timestamp
// prefix makes lexical order chronological.
func (s *Store) ListPairs() ([]string, error) {
	entries, err := os.ReadDir(s.PairDir())
	if err != nil {
		return nil, fmt.Errorf("read pair dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PairExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// UpdateMemo rewrites a pair's memo in place, leaving every other
// field untouched.
func (s *Store) UpdateMemo(name, memo string) error {
	pair, err := s.LoadPair(name)
	if err != nil {
		return err
	}
	pair.Memo = memo
	return s.writeRecord(filepath.Join(s.PairDir(), name), pair)
}

// sanitizeName strips path separators and other characters that do
// not belong in a file name component.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
}
