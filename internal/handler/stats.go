package handler

import (
	"net/http"

	"github.com/paiqi/paiqi/internal/config"
	"github.com/paiqi/paiqi/internal/metrics"
	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/stats"
)

// StatsHandler 工作量统计处理器
type StatsHandler struct {
	cfg   *config.Config
	tasks TaskStore
}

// NewStatsHandler 创建工作量统计处理器
func NewStatsHandler(cfg *config.Config, tasks TaskStore) *StatsHandler {
	return &StatsHandler{cfg: cfg, tasks: tasks}
}

// Workload 统计指定区间的每日负载分布与容量利用率
// GET /api/v1/stats/workload?start=2026-01-01&end=2026-01-31
func (h *StatsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "start 和 end 参数不能为空"))
		return
	}

	startDay, err := model.ParseDate(start)
	if err != nil {
		respondError(w, apperrors.InvalidInput("start", "日期格式应为 YYYY-MM-DD"))
		return
	}
	endDay, err := model.ParseDate(end)
	if err != nil {
		respondError(w, apperrors.InvalidInput("end", "日期格式应为 YYYY-MM-DD"))
		return
	}
	if endDay.Before(startDay) {
		respondError(w, apperrors.New(apperrors.CodeInvalidTimeRange, "结束日期早于开始日期"))
		return
	}

	tasks, err := h.tasks.GetAll(r.Context())
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务失败"))
		return
	}

	// ISO日期串的字典序即时间序，区间过滤直接比较字符串
	daily := make(map[string]float64)
	open := 0
	for _, t := range tasks {
		if !t.IsFinished() {
			open++
		}
		for date, hours := range t.DailyAllocations {
			if date >= start && date <= end {
				daily[date] += hours
			}
		}
	}
	metrics.SetOpenTasks(open)

	distribution := stats.NewDistributionAnalyzer().Analyze(daily)
	utilization := stats.NewUtilizationAnalyzer(h.cfg.Planner.MaxHoursPerDay).Analyze(daily, start, end)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start":        start,
		"end":          end,
		"distribution": distribution,
		"utilization":  utilization,
	})
}
