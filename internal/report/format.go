package report

import (
	"strconv"
	"strings"
)

// FormatNumber renders follower-style counts: 1.2M, 44.5K, 312.
func FormatNumber(n int64) string {
	switch {
	case n >= 1_000_000:
		return compact(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return compact(float64(n)/1_000) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func compact(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// percent renders a ratio already multiplied by 100 with one decimal.
func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
