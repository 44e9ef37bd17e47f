package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ThemesConfig maps theme indices to stylesheet files under Dir.
// Index 0 is the default theme and must always resolve to a readable asset;
// anonymous users and users with an unknown index get index 0.
type ThemesConfig struct {
	// Dir is the directory holding theme stylesheets.
	Dir string `env:"DIR" envDefault:"assets/themes"`

	// Paths maps a theme index to a stylesheet filename inside Dir,
	// e.g. THEMES_PATHS="0:standard.css,1:darken.css".
	Paths map[int]string `env:"PATHS" envDefault:"0:standard.css" envSeparator:"," envKeyValSeparator:":"`
}

// AssetPath returns the on-disk path for a theme index. The second return
// is false when the index has no configured asset.
func (t ThemesConfig) AssetPath(index int) (string, bool) {
	name, ok := t.Paths[index]
	if !ok {
		return "", false
	}
	return filepath.Join(t.Dir, name), true
}

// Validate ensures index 0 exists and every configured asset is readable.
// A missing asset for a configured index is a configuration error surfaced
// at startup, never per-request.
func (t ThemesConfig) Validate() error {
	if _, ok := t.Paths[0]; !ok {
		return errors.New("themes: default theme (index 0) is not configured")
	}
	for index, name := range t.Paths {
		if name == "" {
			return fmt.Errorf("themes: empty asset path for index %d", index)
		}
		path := filepath.Join(t.Dir, name)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("themes: asset for index %d unreadable: %w", index, err)
		}
	}
	return nil
}
