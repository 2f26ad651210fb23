package metrics

import (
	"database/sql"
	"errors"
	"testing"
)

func TestPercentageOf(t *testing.T) {
	tests := []struct {
		name  string
		part  int
		whole int
		want  int
	}{
		{name: "zero whole yields zero", part: 10, whole: 0, want: 0},
		{name: "zero whole with zero part", part: 0, whole: 0, want: 0},
		{name: "negative whole yields zero", part: 5, whole: -3, want: 0},
		{name: "simple half", part: 1, whole: 2, want: 50},
		{name: "rounds up", part: 2, whole: 3, want: 67},
		{name: "rounds down", part: 1, whole: 3, want: 33},
		{name: "full population", part: 25, whole: 25, want: 100},
		{name: "part exceeding whole is clamped", part: 30, whole: 25, want: 100},
		{name: "negative part is clamped", part: -5, whole: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageOf(tt.part, tt.whole)
			if got != tt.want {
				t.Errorf("PercentageOf(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("PercentageOf(%d, %d) = %d, out of [0,100]", tt.part, tt.whole, got)
			}
		})
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		progress int
		want     Band
	}{
		{progress: 100, want: BandAdvanced},
		{progress: 70, want: BandAdvanced},
		{progress: 69, want: BandInProgress},
		{progress: 40, want: BandInProgress},
		{progress: 39, want: BandNeedsHelp},
		{progress: 0, want: BandNeedsHelp},
	}

	for _, tt := range tests {
		got := BandOf(tt.progress)
		if got != tt.want {
			t.Errorf("BandOf(%d) = %s, want %s", tt.progress, got, tt.want)
		}
	}
}

func TestClampAverage(t *testing.T) {
	tests := []struct {
		name string
		avg  sql.NullFloat64
		want int
	}{
		{name: "null is zero", avg: sql.NullFloat64{}, want: 0},
		{name: "rounds to nearest", avg: sql.NullFloat64{Float64: 66.6, Valid: true}, want: 67},
		{name: "rounds half up", avg: sql.NullFloat64{Float64: 49.5, Valid: true}, want: 50},
		{name: "clamps above 100", avg: sql.NullFloat64{Float64: 104.2, Valid: true}, want: 100},
		{name: "clamps below 0", avg: sql.NullFloat64{Float64: -3.0, Valid: true}, want: 0},
		{name: "exact value", avg: sql.NullFloat64{Float64: 85.0, Valid: true}, want: 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampAverage(tt.avg); got != tt.want {
				t.Errorf("ClampAverage(%v) = %d, want %d", tt.avg, got, tt.want)
			}
		})
	}
}

func TestClampPercent(t *testing.T) {
	if got := ClampPercent(101); got != 100 {
		t.Errorf("ClampPercent(101) = %d, want 100", got)
	}
	if got := ClampPercent(-1); got != 0 {
		t.Errorf("ClampPercent(-1) = %d, want 0", got)
	}
	if got := ClampPercent(55); got != 55 {
		t.Errorf("ClampPercent(55) = %d, want 55", got)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "valid score", raw: "85", want: 85},
		{name: "trims whitespace", raw: " 40 ", want: 40},
		{name: "clamps over 100", raw: "150", want: 100},
		{name: "clamps negative", raw: "-10", want: 0},
		{name: "empty is invalid", raw: "", wantErr: true},
		{name: "blank is invalid", raw: "   ", wantErr: true},
		{name: "non-numeric is invalid", raw: "abc", wantErr: true},
		{name: "float is invalid", raw: "7.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMetricInput) {
					t.Errorf("ParseScore(%q) error = %v, want ErrInvalidMetricInput", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
