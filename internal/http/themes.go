package httpx

import (
	"fmt"
	"os"

	"github.com/meridianhq/meridian/config"
	"github.com/meridianhq/meridian/internal/domain/model"
)

// ThemeLibrary holds every configured theme stylesheet, read once at
// startup. Construction fails when the default theme (index 0) is missing
// or any configured asset is unreadable, so a bad theme map surfaces when
// the process boots, never per-request.
type ThemeLibrary struct {
	css map[int]string
}

// LoadThemes validates the theme configuration and reads every asset.
func LoadThemes(cfg config.ThemesConfig) (*ThemeLibrary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	css := make(map[int]string, len(cfg.Paths))
	for index := range cfg.Paths {
		path, _ := cfg.AssetPath(index)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("themes: read asset for index %d: %w", index, err)
		}
		css[index] = string(content)
	}
	return &ThemeLibrary{css: css}, nil
}

// CSS returns the stylesheet for a theme index; unknown indices fall back
// to the default theme.
func (t *ThemeLibrary) CSS(index int) string {
	if s, ok := t.css[index]; ok {
		return s
	}
	return t.css[0]
}

// StylesFor resolves the theme and custom stylesheet for a user. Anonymous
// requests get the default theme and no custom CSS.
func (t *ThemeLibrary) StylesFor(user *model.User) (themeCSS, userCSS string) {
	if user == nil {
		return t.CSS(0), ""
	}
	return t.CSS(user.Theme), user.CSS
}
