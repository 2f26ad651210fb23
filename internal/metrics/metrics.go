// Package metrics turns raw counts and averages from the store into
// display-safe integers. Every value leaving this package is in [0,100].
package metrics

import (
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMetricInput is returned when a value that should be numeric is
// not. Callers substitute the stored/zero value and continue; a malformed
// field never aborts a report.
var ErrInvalidMetricInput = errors.New("invalid metric input")

type Band string

const (
	BandAdvanced   Band = "avanzado"
	BandInProgress Band = "en_progreso"
	BandNeedsHelp  Band = "necesita_ayuda"
)

// PercentageOf returns part as a rounded percentage of whole, clamped to
// [0,100]. A zero or negative whole yields 0, never a division error.
func PercentageOf(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return ClampPercent(int(math.Round(float64(part) * 100 / float64(whole))))
}

// ClampPercent clamps an integer percentage to [0,100].
func ClampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClampAverage converts a raw SQL average to a display percentage. NULL
// (no observations) is 0 by contract, not an error.
func ClampAverage(avg sql.NullFloat64) int {
	if !avg.Valid {
		return 0
	}
	return ClampPercent(int(math.Round(avg.Float64)))
}

// BandOf classifies a general-progress value into a performance band.
// Thresholds are fixed: >=70 advanced, 40-69 in progress, <40 needs help.
func BandOf(progress int) Band {
	switch {
	case progress >= 70:
		return BandAdvanced
	case progress >= 40:
		return BandInProgress
	default:
		return BandNeedsHelp
	}
}

// ParseScore parses a score field from a form. Empty input and malformed
// input both return ErrInvalidMetricInput so callers can fall back to the
// stored value; valid input is clamped to [0,100].
func ParseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidMetricInput
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidMetricInput
	}
	return ClampPercent(n), nil
}
