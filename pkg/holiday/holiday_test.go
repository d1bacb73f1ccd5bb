package holiday

import (
	"testing"
	"time"
)

func TestStatic_IsHoliday(t *testing.T) {
	s := NewStatic()
	s.Add("2026-10-01", "国庆节")
	s.AddRange(
		time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC),
		"春节",
	)

	tests := []struct {
		name     string
		date     string
		expected bool
	}{
		{"单日节假日", "2026-10-01", true},
		{"假期区间首日", "2026-02-16", true},
		{"假期区间末日", "2026-02-22", true},
		{"假期区间外", "2026-02-23", false},
		{"普通工作日", "2026-03-02", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsHoliday(tt.date); got != tt.expected {
				t.Errorf("IsHoliday(%s) = %v, expected %v", tt.date, got, tt.expected)
			}
		})
	}
}

func TestStatic_HolidaysInRange(t *testing.T) {
	s := FromDates([]string{"2026-04-04", "2026-04-05", "2026-04-06", "2026-05-01"})

	got := s.HolidaysInRange("2026-04-01", "2026-04-30")
	if len(got) != 3 {
		t.Fatalf("HolidaysInRange() 返回 %d 个，expected 3", len(got))
	}
	// 结果应升序
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Errorf("结果未按升序排列: %v", got)
		}
	}
}

func TestNop(t *testing.T) {
	var n Nop
	if n.IsHoliday("2026-10-01") {
		t.Error("Nop 检查器不应报告任何节假日")
	}
	if n.HolidaysInRange("2026-01-01", "2026-12-31") != nil {
		t.Error("Nop 检查器区间查询应为空")
	}
}
