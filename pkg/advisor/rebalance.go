// Package advisor 提供排期再平衡建议
package advisor

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/stats"
)

// 浮点工时比较容差
const hoursTolerance = 1e-6

// Rebalancer 再平衡建议器。
// 在不破坏容量与截止日期约束的前提下，建议把可移动任务的
// 整小时工时从高峰日挪到低谷日，降低每日工时方差。
type Rebalancer struct {
	holidays holiday.Checker
}

// NewRebalancer 创建再平衡建议器
func NewRebalancer(hc holiday.Checker) *Rebalancer {
	return &Rebalancer{holidays: hc}
}

// Recommendation 挪动建议
type Recommendation struct {
	TaskID   uuid.UUID `json:"task_id"`
	TaskName string    `json:"task_name"`
	FromDate string    `json:"from_date"`
	ToDate   string    `json:"to_date"`
	Hours    float64   `json:"hours"`
	Gain     float64   `json:"gain"` // 方差下降量
	Reason   string    `json:"reason"`
	Rank     int       `json:"rank"`
}

// Options 建议选项
type Options struct {
	MaxRecommendations int     // 最大建议数量
	MinGain            float64 // 最低方差收益
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{
		MaxRecommendations: 5,
		MinGain:            0.5,
	}
}

// Recommend 生成再平衡建议。
// tasks 为结果中的任务，daily 为容量占用表，maxHoursPerDay 为单日上限。
// 每个（任务，来源日）组合最多产生一条建议，按收益降序排名。
func (r *Rebalancer) Recommend(tasks []*model.Task, daily map[string]float64, maxHoursPerDay float64, opts *Options) []Recommendation {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(daily) == 0 {
		return nil
	}

	span := buildSpan(daily, r.holidays)
	if len(span.dates) < 2 {
		return nil
	}
	before := stats.Variance(span.series)

	byID := make(map[uuid.UUID]*model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var out []Recommendation
	for _, t := range tasks {
		if t.IsPinned() || t.Status != model.TaskPending || len(t.DailyAllocations) == 0 {
			continue
		}
		dueKey := effectiveDueKey(t, byID)

		fromDates := make([]string, 0, len(t.DailyAllocations))
		for d := range t.DailyAllocations {
			fromDates = append(fromDates, d)
		}
		sort.Strings(fromDates)

		for _, from := range fromDates {
			fi, ok := span.index[from]
			if !ok {
				continue
			}
			maxChunk := int(t.DailyAllocations[from])
			if maxChunk < 1 {
				continue
			}

			if rec, gain := r.bestMoveFrom(t, span, fi, maxChunk, dueKey, maxHoursPerDay, before); gain >= opts.MinGain {
				out = append(out, rec)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Gain > out[j].Gain
	})
	if len(out) > opts.MaxRecommendations {
		out = out[:opts.MaxRecommendations]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// BestMove 返回收益最高的单条建议，没有值得做的挪动时返回 nil
func (r *Rebalancer) BestMove(tasks []*model.Task, daily map[string]float64, maxHoursPerDay float64) *Recommendation {
	recs := r.Recommend(tasks, daily, maxHoursPerDay, &Options{
		MaxRecommendations: 1,
		MinGain:            0.1, // 单条建议放宽收益门槛
	})
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}

// bestMoveFrom 在所有合法目标日中为一个来源日挑出收益最高的挪动
func (r *Rebalancer) bestMoveFrom(t *model.Task, span *daySpan, fi, maxChunk int, dueKey string, maxPerDay, before float64) (Recommendation, float64) {
	var best Recommendation
	bestGain := 0.0

	for ti, to := range span.dates {
		if ti == fi {
			continue
		}
		if dueKey != "" && to > dueKey {
			continue
		}
		for h := 1; h <= maxChunk; h++ {
			hf := float64(h)
			if span.series[ti]+hf > maxPerDay+hoursTolerance {
				break
			}
			gain := before - span.varianceAfterMove(fi, ti, hf)
			if gain > bestGain {
				bestGain = gain
				best = Recommendation{
					TaskID:   t.ID,
					TaskName: t.Name,
					FromDate: span.dates[fi],
					ToDate:   to,
					Hours:    hf,
					Gain:     gain,
					Reason: fmt.Sprintf("%s 负载 %.1f 小时而 %s 仅 %.1f 小时，挪动 %d 小时后整体更均衡",
						span.dates[fi], span.series[fi], to, span.series[ti], h),
				}
			}
		}
	}
	return best, bestGain
}

// daySpan 排期跨度内的工作日序列
type daySpan struct {
	dates  []string
	index  map[string]int
	series []float64
}

// buildSpan 把容量占用表展开成首尾日期之间的工作日序列，空档日计为 0
func buildSpan(daily map[string]float64, hc holiday.Checker) *daySpan {
	keys := make([]string, 0, len(daily))
	for d := range daily {
		keys = append(keys, d)
	}
	sort.Strings(keys)

	first, err1 := model.ParseDate(keys[0])
	last, err2 := model.ParseDate(keys[len(keys)-1])
	if err1 != nil || err2 != nil {
		return &daySpan{index: map[string]int{}}
	}

	span := &daySpan{index: make(map[string]int)}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !isWorkday(d, hc) {
			continue
		}
		key := model.FormatDate(d)
		span.index[key] = len(span.dates)
		span.dates = append(span.dates, key)
		span.series = append(span.series, daily[key])
	}
	return span
}

// varianceAfterMove 模拟把 hours 从 fi 挪到 ti 之后的方差
func (s *daySpan) varianceAfterMove(fi, ti int, hours float64) float64 {
	sim := make([]float64, len(s.series))
	copy(sim, s.series)
	sim[fi] -= hours
	sim[ti] += hours
	return stats.Variance(sim)
}

func isWorkday(d time.Time, hc holiday.Checker) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !hc.IsHoliday(model.FormatDate(d))
}

// effectiveDueKey 返回任务有效截止日期的日期键，没有时返回空串
func effectiveDueKey(t *model.Task, byID map[uuid.UUID]*model.Task) string {
	visited := make(map[uuid.UUID]bool)
	for cur := t; cur != nil; {
		if visited[cur.ID] {
			return ""
		}
		visited[cur.ID] = true

		if cur.Deadline != nil {
			return model.FormatDate(*cur.Deadline)
		}
		if cur.ParentID == nil {
			return ""
		}
		cur = byID[*cur.ParentID]
	}
	return ""
}
