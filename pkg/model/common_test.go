package model

import (
	"testing"
	"time"
)

func TestTimeRange_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a        TimeRange
		b        TimeRange
		expected bool
	}{
		{
			name:     "完全重叠",
			a:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			b:        TimeRange{Start: base, End: base.Add(8 * time.Hour)},
			expected: true,
		},
		{
			name:     "部分重叠",
			a:        TimeRange{Start: base, End: base.Add(4 * time.Hour)},
			b:        TimeRange{Start: base.Add(2 * time.Hour), End: base.Add(6 * time.Hour)},
			expected: true,
		},
		{
			name:     "首尾相接不算重叠",
			a:        TimeRange{Start: base, End: base.Add(4 * time.Hour)},
			b:        TimeRange{Start: base.Add(4 * time.Hour), End: base.Add(8 * time.Hour)},
			expected: false,
		},
		{
			name:     "完全分离",
			a:        TimeRange{Start: base, End: base.Add(2 * time.Hour)},
			b:        TimeRange{Start: base.Add(24 * time.Hour), End: base.Add(26 * time.Hour)},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFormatParseDate(t *testing.T) {
	d := time.Date(2026, 3, 6, 15, 30, 0, 0, time.UTC)

	key := FormatDate(d)
	if key != "2026-03-06" {
		t.Errorf("FormatDate() = %s, expected 2026-03-06", key)
	}

	parsed, err := ParseDate(key)
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.March || parsed.Day() != 6 {
		t.Errorf("ParseDate() = %v, expected 2026-03-06", parsed)
	}
}

func TestNewBaseModel(t *testing.T) {
	base := NewBaseModel()

	if base.ID.String() == "" {
		t.Error("ID should not be empty")
	}
	if base.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if base.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should not be zero")
	}
	if base.IsArchived() {
		t.Error("new model should not be archived")
	}
}
