package store

import "path/filepath"

// Settings is the mutable application configuration. A missing or
// unreadable settings slot always yields DefaultSettings.
type Settings struct {
	DeckPath         string `json:"deck_path"`
	CountdownSeconds int    `json:"countdown_seconds"`
	StudyMode        bool   `json:"study_mode"`

	ImageBoxWidth  int  `json:"image_box_width"`
	ImageBoxHeight int  `json:"image_box_height"`
	Grayscale      bool `json:"grayscale"`
	FlipHorizontal bool `json:"flip_horizontal"`

	OverlayX      int `json:"overlay_x"`
	OverlayY      int `json:"overlay_y"`
	OverlayWidth  int `json:"overlay_width"`
	OverlayHeight int `json:"overlay_height"`

	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// DefaultSettings returns the configuration used on first run.
func DefaultSettings() Settings {
	return Settings{
		CountdownSeconds: 60,
		ImageBoxWidth:    800,
		ImageBoxHeight:   600,
		OverlayX:         40,
		OverlayY:         40,
		OverlayWidth:     160,
		OverlayHeight:    80,
		Language:         "en",
		Theme:            "dark",
	}
}

// Normalize clamps out-of-range fields back to usable values.
func (s *Settings) Normalize() {
	if s.CountdownSeconds < 1 {
		s.CountdownSeconds = DefaultSettings().CountdownSeconds
	}
	if s.ImageBoxWidth < 1 || s.ImageBoxHeight < 1 {
		d := DefaultSettings()
		s.ImageBoxWidth, s.ImageBoxHeight = d.ImageBoxWidth, d.ImageBoxHeight
	}
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Theme == "" {
		s.Theme = "dark"
	}
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.dir, datDir, settingsFile)
}

// LoadSettings reads the settings slot, returning defaults for a
// missing or corrupt file.
func (s *Store) LoadSettings() Settings {
	var out Settings
	s.loadOrDefault(s.settingsPath(), &out, func() { out = DefaultSettings() })
	out.Normalize()
	return out
}

// SaveSettings replaces the settings slot.
func (s *Store) SaveSettings(settings Settings) error {
	return s.writeRecord(s.settingsPath(), settings)
}
