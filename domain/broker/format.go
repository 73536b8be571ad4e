package broker

import (
	"fmt"
	"strconv"
)

// FormatGrouped renders an integer with thousands separators, the way the
// exported tables print raw values.
func FormatGrouped(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// FormatCompact abbreviates large amounts: trillions as "1.2345T",
// billions as "1.2345B", anything smaller grouped.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.4fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.4fB", v/1e9)
	default:
		return FormatGrouped(int64(v))
	}
}

// FormatPct renders a share with two decimals and a percent sign.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
