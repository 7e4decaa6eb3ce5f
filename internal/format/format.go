package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// Bytes renders a byte count with the largest unit that keeps the
// magnitude expressible in at most two decimal places.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}

	value := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[i]
}

// SuccessRate renders successCount/totalRequests as a percentage with
// two decimal places. A run with zero requests reports 0.00% rather
// than dividing by zero.
func SuccessRate(successCount, totalRequests int) string {
	if totalRequests == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(successCount)/float64(totalRequests)*100)
}

// Rate1 is SuccessRate with a single decimal place, used for the
// compact history badges.
func Rate1(successCount, totalRequests int) string {
	if totalRequests == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(successCount)/float64(totalRequests)*100)
}

// Millis renders a millisecond quantity with two decimals for
// fractional averages and no decimals for integral values.
func Millis(ms float64) string {
	if ms == math.Trunc(ms) {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fms", ms)
}

// Timestamp converts an ISO-8601 wire timestamp to local time in the
// same layout the rest of the UI uses. Unparsable input is shown as-is
// so a backend quirk never blanks the field.
func Timestamp(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, ts); err != nil {
			return ts
		}
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Duration renders a wall-time duration compactly (1.2s, 450ms, 2m5s).
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm%ds", m, s)
	}
}
