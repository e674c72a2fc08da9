package extraction

import (
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"math"
	"strconv"
	"strings"
)

var errEmptyNumber = errors.New("empty numeric token")

// ParseScale maps a unit word that may follow a number to its scale.
// Unknown words map to ScaleNone.
func ParseScale(suffix string) models.ScaleSuffix {
	w := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(suffix)), ".")
	switch {
	case w == "":
		return models.ScaleNone
	case w == "k" || w == "к" || w == "thousand" || strings.HasPrefix(w, "тыс"):
		return models.ScaleThousand
	case w == "m" || w == "м" || w == "mln" || w == "million" || w == "млн" || strings.HasPrefix(w, "миллион"):
		return models.ScaleMillion
	default:
		return models.ScaleNone
	}
}

// Normalize converts a numeric token and its unit word into an integer.
// Normalize("44.9", "K") == 44900, Normalize("44,500", "") == 44500.
func Normalize(digits, suffix string) (int64, error) {
	return NormalizeScaled(digits, ParseScale(suffix))
}

// NormalizeScaled is Normalize with the unit already resolved to a scale.
func NormalizeScaled(digits string, scale models.ScaleSuffix) (int64, error) {
	d := stripSpaces(digits)
	if d == "" {
		return 0, errEmptyNumber
	}

	if scale == models.ScaleNone {
		d = strings.NewReplacer(",", "", ".", "").Replace(d)
		v, err := strconv.ParseInt(d, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", digits, err)
		}
		return v, nil
	}

	// With a unit the separator is a decimal point; "1,234.5K" keeps the dot.
	if strings.Contains(d, ".") {
		d = strings.ReplaceAll(d, ",", "")
	} else {
		d = strings.ReplaceAll(d, ",", ".")
	}
	f, err := strconv.ParseFloat(d, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", digits, err)
	}
	return int64(math.Round(f * scale.Multiplier())), nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u2009', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
}
