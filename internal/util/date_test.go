package util

import (
	"testing"
	"time"
)

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, time.January, 23, 14, 5, 0, 0, time.Local)
	if got := FormatDateTime(ts); got != "23/01/2026 14:05" {
		t.Errorf("FormatDateTime() = %q, want %q", got, "23/01/2026 14:05")
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.January, 3, 23, 59, 0, 0, time.Local)
	if got := FormatDate(ts); got != "03/01/2026" {
		t.Errorf("FormatDate() = %q, want %q", got, "03/01/2026")
	}
}

func TestDaysAgo(t *testing.T) {
	today := startOfDay(time.Now())

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "today with time of day",
			date: today.Add(9 * time.Hour),
			want: "hoy",
		},
		{
			name: "yesterday",
			date: today.AddDate(0, 0, -1),
			want: "ayer",
		},
		{
			name: "last week",
			date: today.AddDate(0, 0, -7),
			want: "hace 7 dias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysAgo(tt.date); got != tt.want {
				t.Errorf("DaysAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}
