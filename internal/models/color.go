package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color is a named theme color for a project. It is persisted as its hex form.
type Color string

const (
	ColorBlack   Color = "Black"
	ColorWhite   Color = "White"
	ColorRed     Color = "Red"
	ColorGreen   Color = "Green"
	ColorBlue    Color = "Blue"
	ColorYellow  Color = "Yellow"
	ColorCyan    Color = "Cyan"
	ColorMagenta Color = "Magenta"
	ColorGray    Color = "Gray"
	ColorSilver  Color = "Silver"
	ColorMaroon  Color = "Maroon"
	ColorOlive   Color = "Olive"
	ColorLime    Color = "Lime"
	ColorNavy    Color = "Navy"
	ColorTeal    Color = "Teal"
	ColorPurple  Color = "Purple"
	ColorOrange  Color = "Orange"
	ColorBrown   Color = "Brown"
	ColorPink    Color = "Pink"
	ColorGold    Color = "Gold"
)

// AllColors returns every color in catalog order.
func AllColors() []Color {
	return []Color{
		ColorBlack, ColorWhite, ColorRed, ColorGreen, ColorBlue,
		ColorYellow, ColorCyan, ColorMagenta, ColorGray, ColorSilver,
		ColorMaroon, ColorOlive, ColorLime, ColorNavy, ColorTeal,
		ColorPurple, ColorOrange, ColorBrown, ColorPink, ColorGold,
	}
}

// Hex returns the #RRGGBB form of the color, or "" if c is not in the catalog.
func (c Color) Hex() string {
	switch c {
	case ColorBlack:
		return "#000000"
	case ColorWhite:
		return "#FFFFFF"
	case ColorRed:
		return "#FF0000"
	case ColorGreen:
		return "#008000"
	case ColorBlue:
		return "#0000FF"
	case ColorYellow:
		return "#FFFF00"
	case ColorCyan:
		return "#00FFFF"
	case ColorMagenta:
		return "#FF00FF"
	case ColorGray:
		return "#808080"
	case ColorSilver:
		return "#C0C0C0"
	case ColorMaroon:
		return "#800000"
	case ColorOlive:
		return "#808000"
	case ColorLime:
		return "#00FF00"
	case ColorNavy:
		return "#000080"
	case ColorTeal:
		return "#008080"
	case ColorPurple:
		return "#800080"
	case ColorOrange:
		return "#FFA500"
	case ColorBrown:
		return "#A52A2A"
	case ColorPink:
		return "#FFC0CB"
	case ColorGold:
		return "#FFD700"
	default:
		return ""
	}
}

// Valid reports whether c is a member of the catalog.
func (c Color) Valid() bool { return c.Hex() != "" }

// ParseColor accepts a color name (case-insensitive) or the hex form of a catalog color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	for _, c := range AllColors() {
		if strings.EqualFold(string(c), s) || strings.EqualFold(c.Hex(), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalJSON() ([]byte, error) {
	hex := c.Hex()
	if hex == "" {
		return nil, fmt.Errorf("unknown color %q", string(c))
	}
	return json.Marshal(hex)
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be a string: %w", err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
