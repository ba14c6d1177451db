package domain

import "strings"

// Style selects the persona used to rewrite a quote.
type Style string

// Supported styles.
const (
	StyleGenZ      Style = "gen_z"
	StylePirate    Style = "pirate"
	StyleLeetSpeak Style = "leet_speak"
	StyleMedieval  Style = "medieval"
)

// DefaultStyle is used when no style or an unknown style is requested.
const DefaultStyle = StyleGenZ

var styles = []Style{StyleGenZ, StylePirate, StyleLeetSpeak, StyleMedieval}

// Styles returns every supported style in a stable order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)

	return out
}

// ParseStyle maps s onto the closed set. Unknown or empty input yields DefaultStyle.
func ParseStyle(s string) Style {
	st := Style(strings.TrimSpace(s))
	if st.Valid() {
		return st
	}

	return DefaultStyle
}

// Valid reports whether s belongs to the closed set.
func (s Style) Valid() bool {
	for _, known := range styles {
		if s == known {
			return true
		}
	}

	return false
}

// String returns the wire name of the style.
func (s Style) String() string {
	return string(s)
}
