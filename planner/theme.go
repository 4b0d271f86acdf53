package planner

import (
	"fmt"
	"strings"
)

// Theme names a color palette.
type Theme string

const (
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
	ThemeNature  Theme = "nature"
	ThemeMinimal Theme = "minimal"
)

// Themes lists the available themes in menu order.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeNature, ThemeMinimal}

// Palette is the set of colors a theme assigns.
type Palette struct {
	Theme      Theme  `json:"theme"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	LightText  string `json:"light_text"`
	Background string `json:"background"`
	Card       string `json:"card"`
	Border     string `json:"border"`
}

var palettes = map[Theme]Palette{
	ThemeLight: {
		Theme: ThemeLight, Primary: "#4a6fa5", Secondary: "#166088", Accent: "#4fc3f7",
		Text: "#333", LightText: "#666", Background: "#f9f9f9", Card: "#fff", Border: "#e0e0e0",
	},
	ThemeDark: {
		Theme: ThemeDark, Primary: "#4a6fa5", Secondary: "#166088", Accent: "#4fc3f7",
		Text: "#e0e0e0", LightText: "#a0a0a0", Background: "#121212", Card: "#1e1e1e", Border: "#333",
	},
	ThemeNature: {
		Theme: ThemeNature, Primary: "#4caf50", Secondary: "#2e7d32", Accent: "#8bc34a",
		Text: "#333", LightText: "#666", Background: "#f1f8e9", Card: "#fff", Border: "#c8e6c9",
	},
	ThemeMinimal: {
		Theme: ThemeMinimal, Primary: "#607d8b", Secondary: "#455a64", Accent: "#90a4ae",
		Text: "#212121", LightText: "#757575", Background: "#fafafa", Card: "#fff", Border: "#eceff1",
	},
}

// ParseTheme validates a theme name; empty means light.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return ThemeLight, nil
	}
	if _, ok := palettes[t]; !ok {
		return "", &ValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", s)}
	}
	return t, nil
}

// PaletteFor returns the palette of t, falling back to light for unknown names.
func PaletteFor(t Theme) Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[ThemeLight]
}

// CSSVariables renders the palette as the custom properties the page stylesheet reads.
func (p Palette) CSSVariables() string {
	var b strings.Builder
	b.WriteString(":root{")
	fmt.Fprintf(&b, "--primary-color:%s;--secondary-color:%s;--accent-color:%s;", p.Primary, p.Secondary, p.Accent)
	fmt.Fprintf(&b, "--text-color:%s;--light-text:%s;", p.Text, p.LightText)
	fmt.Fprintf(&b, "--background-color:%s;--card-color:%s;--border-color:%s", p.Background, p.Card, p.Border)
	b.WriteString("}")
	return b.String()
}
