// Package store persists all application state under one data
// directory: settings, practice history, alarms, decks, and saved
// practice pairs. Every file on disk is written through the record
// codec and replaced atomically.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/codec"
)

const (
	datDir  = "dat"
	deckDir = "decks"
	pairDir = "pairs"

	settingsFile = "settings.dat"
	historyFile  = "history.dat"
	alarmsFile   = "alarms.dat"
	shadowFile   = "deck_autosave.ckd"

	// DeckExt is the on-disk deck file extension.
	DeckExt = ".ckd"
	// PairExt is the on-disk practice pair extension.
	PairExt = ".ckp"
)

// Store is the single access point for persisted state.
type Store struct {
	dir    string
	codec  *codec.Codec
	logger *log.Logger
}

// Open prepares the data directory layout and returns a Store.
func Open(dir string, c *codec.Codec, logger *log.Logger) (*Store, error) {
	for _, sub := range []string{datDir, deckDir, pairDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return &Store{dir: dir, codec: c, logger: logger}, nil
}

// Dir returns the data directory the store works in.
func (s *Store) Dir() string { return s.dir }

// DeckDir returns the directory deck files live in.
func (s *Store) DeckDir() string { return filepath.Join(s.dir, deckDir) }

// PairDir returns the directory pair files live in.
func (s *Store) PairDir() string { return filepath.Join(s.dir, pairDir) }

// IndexPath returns the path of the rebuildable pair index database.
func (s *Store) IndexPath() string { return filepath.Join(s.dir, datDir, "index.db") }

// DataDir resolves the data directory in priority order:
// 1. CROKI_DATA environment variable
// 2. $XDG_DATA_HOME/croki
// 3. ~/.local/share/croki
func DataDir() (string, error) {
	if p := os.Getenv("CROKI_DATA"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "croki"), nil
}

// writeRecord encodes v and atomically replaces path with the result.
func (s *Store) writeRecord(path string, v any) error {
	data, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return atomicWrite(path, data)
}

// readRecord loads and decodes path into v. A missing file returns
// fs.ErrNotExist; a corrupt file returns the codec's decode error.
func (s *Store) readRecord(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// loadOrDefault fills v from path, falling back to defaults() when the
// file is missing or corrupt. Corruption is logged, never fatal.
func (s *Store) loadOrDefault(path string, v any, defaults func()) {
	err := s.readRecord(path, v)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		defaults()
	default:
		s.warn("unreadable slot, starting fresh", "file", filepath.Base(path), "err", err)
		defaults()
	}
}

func (s *Store) warn(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, keyvals...)
	}
}

// atomicWrite lands data at path via a temp file and rename, so a
// crash mid-write never leaves a truncated record.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
