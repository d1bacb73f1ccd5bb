// Package clock 提供时间来源抽象，便于测试与可复现的排期运行
package clock

import "time"

// Clock 时间提供者
type Clock interface {
	Now() time.Time
}

// System 系统时钟
type System struct{}

// Now 返回当前系统时间
func (System) Now() time.Time {
	return time.Now()
}

// Fixed 固定时钟
type Fixed struct {
	t time.Time
}

// NewFixed 创建固定时钟
func NewFixed(t time.Time) Fixed {
	return Fixed{t: t}
}

// Now 返回固定时间
func (f Fixed) Now() time.Time {
	return f.t
}

// None 空时钟：表示调用方不提供当前时间，
// 排期器不会对"今天"做已流逝工时的扣减
type None struct{}

// Now 返回零值时间
func (None) Now() time.Time {
	return time.Time{}
}
