package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Width tokens understood by every renderer.
const (
	WidthSmall  = "small"
	WidthMedium = "medium"
	WidthLarge  = "large"
	WidthFull   = "full"
)

var widthTokens = map[string]bool{
	WidthSmall:  true,
	WidthMedium: true,
	WidthLarge:  true,
	WidthFull:   true,
}

// Width is the declared size category of a zone.
// Exactly one of Token or Custom is set; the zero value is invalid.
type Width struct {
	Token  string
	Custom float64
}

// TokenWidth returns a Width for one of the fixed tokens.
func TokenWidth(token string) Width {
	return Width{Token: token}
}

// CustomWidth returns a Width for a numeric size.
func CustomWidth(size float64) Width {
	return Width{Custom: size}
}

// ParseWidth accepts a token ("small", "medium", "large", "full") or a positive number.
func ParseWidth(s string) (Width, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if widthTokens[s] {
		return Width{Token: s}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Width{}, fmt.Errorf("%w: %q", ErrInvalidWidth, s)
	}
	w := Width{Custom: f}
	if err := w.Validate(); err != nil {
		return Width{}, err
	}
	return w, nil
}

// IsCustom reports whether the width is a numeric size rather than a token.
func (w Width) IsCustom() bool {
	return w.Token == ""
}

// Validate checks that the width is a known token or a positive custom size.
func (w Width) Validate() error {
	if w.Token != "" {
		if !widthTokens[w.Token] {
			return fmt.Errorf("%w: unknown token %q", ErrInvalidWidth, w.Token)
		}
		return nil
	}
	if w.Custom <= 0 {
		return fmt.Errorf("%w: custom size must be positive, got %v", ErrInvalidWidth, w.Custom)
	}
	return nil
}

func (w Width) String() string {
	if w.Token != "" {
		return w.Token
	}
	return strconv.FormatFloat(w.Custom, 'f', -1, 64)
}

// MarshalJSON encodes tokens as strings and custom sizes as numbers.
func (w Width) MarshalJSON() ([]byte, error) {
	if w.Token != "" {
		return json.Marshal(w.Token)
	}
	return json.Marshal(w.Custom)
}

// UnmarshalJSON accepts either a string token or a number.
func (w *Width) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		parsed, err := ParseWidth(token)
		if err != nil {
			return err
		}
		*w = parsed
		return nil
	}
	var size float64
	if err := json.Unmarshal(data, &size); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWidth, string(data))
	}
	parsed := Width{Custom: size}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*w = parsed
	return nil
}

// MarshalYAML mirrors MarshalJSON for gopkg.in/yaml.v3.
func (w Width) MarshalYAML() (any, error) {
	if w.Token != "" {
		return w.Token, nil
	}
	return w.Custom, nil
}
