package utils

import (
	"strconv"
	"strings"
	"time"
)

const kibibyte = 1024

var sizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case binary unit. Values
// below ten units keep one decimal.
func FormatFileSize(bytes int64) string {
	if bytes < kibibyte {
		return strconv.FormatInt(max(bytes, 0), 10) + sizeUnits[0]
	}
	value := float64(bytes)
	unit := 0
	for value >= kibibyte && unit < len(sizeUnits)-1 {
		value /= kibibyte
		unit++
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	return strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0") + sizeUnits[unit]
}

// FormatTimestamp renders a modification time for serialized output in UTC
// RFC 3339 form. The zero time renders as an empty string.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
