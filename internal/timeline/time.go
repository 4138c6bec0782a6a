package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatTimestamp renders seconds as H:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(math.Round(seconds * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
}

// ParseTimestamp parses H:MM:SS.mmm, MM:SS.mmm or plain seconds into
// seconds. The fractional part is optional and a comma is accepted in
// place of the dot.
func ParseTimestamp(ts string) (float64, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	ts = strings.ReplaceAll(ts, ",", ".")

	parts := strings.Split(ts, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp: %s", ts)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp: %s: %w", ts, err)
		}
		total = total*60 + v
	}

	if total < 0 {
		return 0, fmt.Errorf("negative timestamp: %s", ts)
	}
	return total, nil
}
