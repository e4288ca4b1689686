package exporter

import (
	"strconv"
	"strings"
)

// parseHexColor parses #rgb, #rgba, #rrggbb and #rrggbbaa into 0-1 channels.
// Anything else is opaque black.
func parseHexColor(s string) [4]float64 {
	black := [4]float64{0, 0, 0, 1}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(s) {
	case 3, 4:
		var long strings.Builder
		for _, r := range s {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		s = long.String()
	case 6, 8:
	default:
		return black
	}
	if len(s) == 6 {
		s += "ff"
	}

	var out [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return black
		}
		out[i] = float64(v) / 255
	}
	return out
}
