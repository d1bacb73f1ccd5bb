package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/clock"
	"github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/logger"
	"github.com/paiqi/paiqi/pkg/model"
)

// PlannerConfig 优化器的默认参数，可被单次请求覆盖
type PlannerConfig struct {
	StartHour      int          // 每日工作开始小时
	EndHour        int          // 每日工作结束小时
	MaxHoursPerDay float64      // 默认单日容量上限
	Search         SearchConfig // 搜索类策略默认调参
}

// DefaultPlannerConfig 默认配置：工作时段 9-18 点，单日 8 小时
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		StartHour:      9,
		EndHour:        18,
		MaxHoursPerDay: 8,
		Search:         DefaultSearchConfig(),
	}
}

// Planner 任务排期优化器门面。
// 节假日与时钟是必需的注入参数，不需要时传 holiday.Nop{} 和 clock.None{}。
type Planner struct {
	cfg      PlannerConfig
	holidays holiday.Checker
	clock    clock.Clock
	log      *logger.PlannerLogger
}

func New(cfg PlannerConfig, hc holiday.Checker, clk clock.Clock) *Planner {
	return &Planner{
		cfg:      cfg,
		holidays: hc,
		clock:    clk,
		log:      logger.NewPlannerLogger(),
	}
}

// OptimizeParams 一次优化运行的输入参数
type OptimizeParams struct {
	StartDate      time.Time
	MaxHoursPerDay float64       // <=0 时使用配置默认值
	ForceOverride  bool          // 是否重排已有排期的待办任务
	Algorithm      string        // 九种算法之一
	TaskIDs        []uuid.UUID   // 可选：只排这些任务
	CurrentTime    *time.Time    // 可选：覆盖"现在"，影响当天剩余容量
	Search         *SearchConfig // 可选：覆盖搜索调参
}

// Optimize 执行一次排期优化。
// 整个运行在任务深拷贝上进行，调用方的任务对象不会被修改。
// 未知算法、指定任务不存在、没有可排期任务这三类错误在任何分配
// 开始之前返回；单个任务排不下只计入结果的失败列表，不中止运行。
func (p *Planner) Optimize(params OptimizeParams, tasks []*model.Task) (*OptimizeResult, error) {
	started := time.Now()

	kind, err := ParseKind(params.Algorithm)
	if err != nil {
		return nil, err
	}

	snapshot := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		snapshot = append(snapshot, t.Clone())
	}

	if err := checkRequestedTasks(snapshot, params.TaskIDs); err != nil {
		return nil, err
	}

	candidates := selectCandidates(snapshot, params.TaskIDs, params.ForceOverride)
	if len(candidates) == 0 {
		return nil, errors.NoSchedulableTasks("")
	}

	maxHours := params.MaxHoursPerDay
	if maxHours <= 0 {
		maxHours = p.cfg.MaxHoursPerDay
	}
	clk := p.clock
	if params.CurrentTime != nil {
		clk = clock.NewFixed(*params.CurrentTime)
	}
	startDate := params.StartDate
	if startDate.IsZero() {
		startDate = clk.Now()
	}

	pc := NewContext(startDate, maxHours, p.holidays, clk)
	pc.SetTasks(snapshot)
	pc.InitializeAllocations(snapshot, params.ForceOverride)

	search := p.cfg.Search
	if params.Search != nil {
		search = *params.Search
	}
	strat := newStrategy(kind, p.cfg.StartHour, p.cfg.EndHour, search)

	p.log.StartOptimize(strat.Name(), model.FormatDate(pc.StartDate), len(candidates))
	scheduled := strat.Run(pc, candidates)
	elapsed := time.Since(started)

	res := buildResult(pc, strat.Name(), scheduled, elapsed)
	for _, f := range res.FailedTasks {
		p.log.TaskFailed(f.TaskName, f.Reason)
	}
	p.log.OptimizeComplete(strat.Name(), elapsed, res.Fitness.Total, len(scheduled), len(res.FailedTasks))
	return res, nil
}

// checkRequestedTasks 显式指定的任务必须全部存在
func checkRequestedTasks(snapshot []*model.Task, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]bool, len(snapshot))
	for _, t := range snapshot {
		byID[t.ID] = true
	}
	for _, id := range ids {
		if !byID[id] {
			return errors.TaskNotFound(id.String())
		}
	}
	return nil
}

// selectCandidates 过滤本次要排期的任务：可排期且未固定；
// 已有排期的待办任务仅在强制重排时入选，入选即清空旧排期字段
// （旧占用已不再计入容量表，保留旧字段会误导依赖检查）。
func selectCandidates(snapshot []*model.Task, ids []uuid.UUID, forceOverride bool) []*model.Task {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var out []*model.Task
	for _, t := range snapshot {
		if len(want) > 0 && !want[t.ID] {
			continue
		}
		if !t.IsSchedulable() || t.IsPinned() {
			continue
		}
		if t.IsScheduled() {
			if !forceOverride {
				continue
			}
			t.PlannedStart = nil
			t.PlannedEnd = nil
			t.DailyAllocations = nil
		}
		out = append(out, t)
	}
	return out
}
