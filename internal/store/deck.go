package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/croki-app/croki/internal/deck"
)

// SaveDeck writes d to path (a .ckd file) and marks the deck saved.
func (s *Store) SaveDeck(d *deck.Deck, path string) error {
	if filepath.Ext(path) != DeckExt {
		path += DeckExt
	}
	if err := s.writeRecord(path, d.ToRecord()); err != nil {
		return err
	}
	d.MarkSaved(path)
	return nil
}

// LoadDeck reads a deck file. Legacy path-list decks load as decks of
// file-backed assets with default difficulty.
func (s *Store) LoadDeck(path string) (*deck.Deck, error) {
	var rec deck.Record
	if err := s.readRecord(path, &rec); err != nil {
		return nil, err
	}
	return deck.FromRecord(path, rec)
}

// ListDecks returns the deck files under the store's deck directory.
func (s *Store) ListDecks() ([]string, error) {
	entries, err := os.ReadDir(s.DeckDir())
	if err != nil {
		return nil, fmt.Errorf("read deck dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), DeckExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MutateDeck loads the deck at path, applies fn, and persists the
// result. The mutated deck is shadow-saved before the real save, so a
// crash between the two leaves a recoverable copy; a clean save clears
// the shadow again.
func (s *Store) MutateDeck(path string, fn func(*deck.Deck) error) error {
	d, err := s.LoadDeck(path)
	if err != nil {
		return err
	}
	if err := fn(d); err != nil {
		return err
	}
	if !d.Dirty() {
		return nil
	}
	if err := s.SaveShadowDeck(d); err != nil {
		s.warn("shadow save failed", "deck", filepath.Base(path), "err", err)
	}
	if err := s.SaveDeck(d, path); err != nil {
		return err
	}
	return s.ClearShadowDeck()
}

func (s *Store) shadowPath() string {
	return filepath.Join(s.dir, datDir, shadowFile)
}

// SaveShadowDeck autosaves the working deck so an unsaved session can
// be recovered after a crash. The deck's own dirty state is untouched.
func (s *Store) SaveShadowDeck(d *deck.Deck) error {
	return s.writeRecord(s.shadowPath(), d.ToRecord())
}

// LoadShadowDeck returns the autosaved deck, or nil when none exists.
func (s *Store) LoadShadowDeck() (*deck.Deck, error) {
	var rec deck.Record
	err := s.readRecord(s.shadowPath(), &rec)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return deck.FromRecord("", rec)
}

// ClearShadowDeck removes the autosave after a clean save or exit.
func (s *Store) ClearShadowDeck() error {
	err := os.Remove(s.shadowPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
