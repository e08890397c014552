// Package render turns view results into chart geometry and text.
package render

import (
	"fmt"
	"math"
	"strconv"
)

// Plasma stops, dark to bright.
var plasmaStops = []string{
	"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
	"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
}

const (
	EmphasisFill   = "#ffd700" // gold
	DeemphasisFill = "#d3d3d3" // lightgrey
)

type rgb struct{ r, g, b uint8 }

// Plasma returns the colour at t on the plasma scale. t is clamped to [0,1].
func Plasma(t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := t * float64(len(plasmaStops)-1)
	i := int(math.Floor(pos))
	if i >= len(plasmaStops)-1 {
		return plasmaStops[len(plasmaStops)-1]
	}
	frac := pos - float64(i)

	a, b := mustHex(plasmaStops[i]), mustHex(plasmaStops[i+1])
	return rgb{
		r: lerp(a.r, b.r, frac),
		g: lerp(a.g, b.g, frac),
		b: lerp(a.b, b.b, frac),
	}.hex()
}

// SliceFill returns the pie fill for a slice.
func SliceFill(emphasized bool) string {
	if emphasized {
		return EmphasisFill
	}
	return DeemphasisFill
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func mustHex(s string) rgb {
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic(fmt.Sprintf("bad palette colour %q: %v", s, err))
	}
	return rgb{r: uint8(v >> 16), g: uint8(v >> 8), b: uint8(v)}
}
