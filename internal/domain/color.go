package domain

import (
	"encoding/json"
	"strings"
)

// PaletteToken is one of the fixed badge colors the UI ships with.
type PaletteToken string

// The full palette. TokenSkyblue is the new-entry default.
const (
	TokenSkyblue PaletteToken = "bg-skyblue"
	TokenRed     PaletteToken = "bg-red"
	TokenOrange  PaletteToken = "bg-orange"
	TokenGreen   PaletteToken = "bg-green"
	TokenPurple  PaletteToken = "bg-purple"
	TokenBlue    PaletteToken = "bg-blue"
	TokenGray    PaletteToken = "bg-gray"
)

// Color is the display color of a ride or segment badge.
// It is either a palette token or an explicit color value picked with the
// color wheel. The two cases are kept distinct because explicit values must
// never be substituted by fallback logic, while palette tokens may be.
//
// On the wire and in the database a Color is a single string: explicit
// values carry a "#" prefix ("#e17055"), everything else is a palette token.
type Color struct {
	token    PaletteToken
	explicit string
}

// Palette returns a Color holding the given palette token.
func Palette(t PaletteToken) Color {
	return Color{token: t}
}

// Explicit returns a Color holding an explicit value. The "#" prefix is
// added if missing.
func Explicit(value string) Color {
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	return Color{explicit: value}
}

// ParseColor maps the stored string form back to a Color.
// Empty input yields the zero Color (IsZero reports true).
func ParseColor(s string) Color {
	switch {
	case s == "":
		return Color{}
	case strings.HasPrefix(s, "#"):
		return Color{explicit: s}
	default:
		return Color{token: PaletteToken(s)}
	}
}

// IsZero reports whether the color is unset.
func (c Color) IsZero() bool { return c.token == "" && c.explicit == "" }

// IsExplicit reports whether the color is an explicit value rather than a
// palette token.
func (c Color) IsExplicit() bool { return c.explicit != "" }

// String returns the stored string form: the explicit value (with "#"
// prefix) or the palette token. Zero colors render as "".
func (c Color) String() string {
	if c.explicit != "" {
		return c.explicit
	}
	return string(c.token)
}

// MarshalJSON encodes the color as its single-string stored form.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes the single-string stored form.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseColor(s)
	return nil
}
