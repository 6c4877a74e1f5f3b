package captions

import (
	"fmt"
	"math"
)

// FormatTimestamp renders a seconds offset as an ASS timestamp H:MM:SS.CC
// with centisecond resolution. Hours carry no upper digit limit and are not
// zero padded; minutes, seconds, and centiseconds are always two digits.
// Negative, NaN, or infinite input is clamped to zero so the output is never
// malformed.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	remainder := totalMillis % 3_600_000
	minutes := remainder / 60_000
	secs := (remainder % 60_000) / 1000
	centis := (remainder % 1000) / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
