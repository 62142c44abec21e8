package store

import (
	"path/filepath"

	"github.com/croki-app/croki/internal/alarm"
	"github.com/croki-app/croki/internal/history"
)

// LoadHistory reads the practice heatmap, empty on missing/corrupt.
func (s *Store) LoadHistory() *history.Heatmap {
	hm := history.New()
	s.loadOrDefault(filepath.Join(s.dir, datDir, historyFile), hm, func() {
		hm = history.New()
	})
	if hm.Counts == nil {
		hm = history.New()
	}
	return hm
}

// SaveHistory replaces the heatmap slot.
func (s *Store) SaveHistory(hm *history.Heatmap) error {
	return s.writeRecord(filepath.Join(s.dir, datDir, historyFile), hm)
}

// LoadAlarms reads the alarm rule set, empty on missing/corrupt.
func (s *Store) LoadAlarms() []alarm.Rule {
	var rec alarm.Record
	s.loadOrDefault(filepath.Join(s.dir, datDir, alarmsFile), &rec, func() {
		rec = alarm.Record{}
	})
	return rec.Alarms
}

// SaveAlarms replaces the alarm slot.
func (s *Store) SaveAlarms(rules []alarm.Rule) error {
	return s.writeRecord(filepath.Join(s.dir, datDir, alarmsFile), alarm.Record{Alarms: rules})
}
