package kml

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color parsed from a hex triplet.
type RGB struct {
	R, G, B uint8
}

// Style carries the caller-supplied presentation for emitted polygons.
// FillOpacity is in [0, 1] and becomes the alpha channel of the fill
// color on the wire.
type Style struct {
	StrokeColor RGB
	FillColor   RGB
	FillOpacity float64
	StrokeWidth int
}

// ParseHexColor parses an "RRGGBB" hex triplet. A leading '#' is
// accepted.
func ParseHexColor(s string) (RGB, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(t) != 6 {
		return RGB{}, fmt.Errorf("kml: invalid hex color %q", s)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(t[2*i:2*i+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("kml: invalid hex color %q", s)
		}
		ch[i] = uint8(v)
	}

	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// abgr encodes a color in KML's aabbggrr hex order.
func abgr(alpha uint8, c RGB) string {
	return fmt.Sprintf("%02x%02x%02x%02x", alpha, c.B, c.G, c.R)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
