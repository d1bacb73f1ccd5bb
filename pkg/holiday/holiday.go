// Package holiday 提供节假日判断能力
package holiday

import (
	"sort"
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// Checker 节假日检查器。未配置检查器时周末是唯一的非工作日。
type Checker interface {
	// IsHoliday 判断某日期（YYYY-MM-DD）是否为节假日
	IsHoliday(date string) bool
	// HolidaysInRange 返回 [start, end] 区间内的节假日列表（含两端）
	HolidaysInRange(start, end string) []string
}

// Nop 空实现：没有任何节假日
type Nop struct{}

// IsHoliday 恒为 false
func (Nop) IsHoliday(string) bool { return false }

// HolidaysInRange 恒为空
func (Nop) HolidaysInRange(string, string) []string { return nil }

// Static 基于固定日期集合的检查器
type Static struct {
	dates map[string]string // 日期 -> 节假日名称
}

// NewStatic 创建固定日期检查器
func NewStatic() *Static {
	return &Static{dates: make(map[string]string)}
}

// FromDates 用日期列表构建检查器
func FromDates(dates []string) *Static {
	s := NewStatic()
	for _, d := range dates {
		s.dates[d] = ""
	}
	return s
}

// Add 添加节假日
func (s *Static) Add(date, name string) {
	s.dates[date] = name
}

// AddRange 添加连续假期，如春节、国庆长假
func (s *Static) AddRange(start, end time.Time, name string) {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		s.dates[model.FormatDate(d)] = name
	}
}

// IsHoliday 判断是否为节假日
func (s *Static) IsHoliday(date string) bool {
	_, ok := s.dates[date]
	return ok
}

// Name 返回节假日名称
func (s *Static) Name(date string) (string, bool) {
	name, ok := s.dates[date]
	return name, ok
}

// HolidaysInRange 返回区间内的节假日（升序）
func (s *Static) HolidaysInRange(start, end string) []string {
	var out []string
	for d := range s.dates {
		if d >= start && d <= end {
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

// Len 节假日数量
func (s *Static) Len() int {
	return len(s.dates)
}
