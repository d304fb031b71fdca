package palette

import (
	"fmt"
	"math"
	"strconv"
)

// Size is the number of entries in a rendered palette
const Size = 256

// MidpointIndex is returned when a value domain is degenerate (max == min)
const MidpointIndex = 128

// Seed color ramps, darkest to brightest
var (
	Iron     = []string{"00000a", "91009c", "e64616", "feb400", "fffdf0"}
	Rainbow  = []string{"3949ab", "81d4fa", "66bb6a", "ffe082", "e53935"}
	Binary   = []string{"212121", "b31412"}
	Sunlight = []string{"212121", "ffca28"}
)

// ColorIndex normalizes a value within [min, max] to a palette index in
// [0, 255]. Values are clamped to the domain; a degenerate domain maps to
// MidpointIndex.
func ColorIndex(value, min, max float64) int {
	if max == min {
		return MidpointIndex
	}

	normalized := (value - min) / (max - min)
	normalized = math.Max(0, math.Min(1, normalized))

	return int(math.Round(normalized * (Size - 1)))
}

// Create interpolates a ramp of hex seed colors into a full Size-entry
// palette of "rrggbb" strings.
func Create(seeds []string) ([]string, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("palette needs at least one seed color")
	}

	rgb := make([][3]float64, len(seeds))
	for i, s := range seeds {
		c, err := parseHexColor(s)
		if err != nil {
			return nil, err
		}
		rgb[i] = c
	}

	colors := make([]string, Size)
	if len(rgb) == 1 {
		for i := range colors {
			colors[i] = formatHexColor(rgb[0])
		}
		return colors, nil
	}

	step := float64(len(rgb)-1) / float64(Size-1)
	for i := range colors {
		pos := float64(i) * step
		lower := int(math.Floor(pos))
		upper := int(math.Ceil(pos))
		frac := pos - float64(lower)

		var c [3]float64
		for ch := 0; ch < 3; ch++ {
			c[ch] = rgb[lower][ch] + frac*(rgb[upper][ch]-rgb[lower][ch])
		}
		colors[i] = formatHexColor(c)
	}

	return colors, nil
}

func parseHexColor(s string) ([3]float64, error) {
	if len(s) != 6 {
		return [3]float64{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [3]float64{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	return [3]float64{
		float64(v >> 16 & 0xff),
		float64(v >> 8 & 0xff),
		float64(v & 0xff),
	}, nil
}

func formatHexColor(c [3]float64) string {
	return fmt.Sprintf("%02x%02x%02x",
		int(math.Round(c[0])), int(math.Round(c[1])), int(math.Round(c[2])))
}
