package handler

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/paiqi/paiqi/internal/config"
	"github.com/paiqi/paiqi/internal/metrics"
	"github.com/paiqi/paiqi/pkg/advisor"
	"github.com/paiqi/paiqi/pkg/clock"
	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/logger"
	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/planner"
	planvalidator "github.com/paiqi/paiqi/pkg/validator"
)

// OptimizeHandler 排期优化处理器
type OptimizeHandler struct {
	cfg      *config.Config
	tasks    TaskStore
	plans    PlanStore
	holidays HolidayStore
	validate *validator.Validate
	trans    ut.Translator
}

// NewOptimizeHandler 创建排期优化处理器
func NewOptimizeHandler(cfg *config.Config, tasks TaskStore, plans PlanStore, holidays HolidayStore, validate *validator.Validate, trans ut.Translator) *OptimizeHandler {
	return &OptimizeHandler{
		cfg:      cfg,
		tasks:    tasks,
		plans:    plans,
		holidays: holidays,
		validate: validate,
		trans:    trans,
	}
}

// OptimizeRequest 排期优化请求
type OptimizeRequest struct {
	Name           string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Algorithm      string   `json:"algorithm" validate:"required"`
	StartDate      string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MaxHoursPerDay float64  `json:"max_hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	ForceOverride  bool     `json:"force_override,omitempty"`
	TaskIDs        []string `json:"task_ids,omitempty" validate:"omitempty,dive,uuid"`
	Seed           *int64   `json:"seed,omitempty"`
}

// OptimizeResponse 一次优化运行的完整响应
type OptimizeResponse struct {
	Success         bool                     `json:"success"`
	PlanID          string                   `json:"plan_id"`
	Result          *planner.OptimizeResult  `json:"result"`
	Conflicts       []planvalidator.Conflict `json:"conflicts"`
	ConflictSummary planvalidator.Summary    `json:"conflict_summary"`
	Recommendations []advisor.Recommendation `json:"recommendations,omitempty"`
	Duration        string                   `json:"duration"`
}

// Optimize 执行一次排期优化并持久化结果
// POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	// 先解析算法名，保证监控标签取值有界
	kind, err := planner.ParseKind(req.Algorithm)
	if err != nil {
		respondAppError(w, err)
		return
	}
	algo := kind.String()

	params := planner.OptimizeParams{
		MaxHoursPerDay: req.MaxHoursPerDay,
		ForceOverride:  req.ForceOverride,
		Algorithm:      algo,
	}
	if req.StartDate != "" {
		start, perr := model.ParseDate(req.StartDate)
		if perr != nil {
			respondError(w, apperrors.InvalidInput("start_date", "日期格式应为 YYYY-MM-DD"))
			return
		}
		params.StartDate = start
	}
	for _, raw := range req.TaskIDs {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			respondError(w, apperrors.New(apperrors.CodeInvalidInput, "无效的任务ID格式: "+raw))
			return
		}
		params.TaskIDs = append(params.TaskIDs, id)
	}

	search := h.searchConfig()
	if req.Seed != nil {
		search.Seed = *req.Seed
	}
	params.Search = &search

	ctx := r.Context()

	tasks, err := h.tasks.ListOpen(ctx)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载任务失败"))
		return
	}

	hc, err := h.holidays.Checker(ctx)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载节假日失败"))
		return
	}

	pl := planner.New(h.plannerConfig(), hc, clock.System{})
	result, err := pl.Optimize(params, tasks)
	if err != nil {
		metrics.RecordOptimizeRun(algo, false)
		respondAppError(w, err)
		return
	}

	metrics.RecordOptimizeRun(algo, true)
	metrics.ObserveOptimizeDuration(algo, result.Elapsed)
	metrics.SetBestFitness(algo, result.Fitness.Total)
	metrics.SetScheduledTasks(algo, len(result.ScheduledTasks))
	for _, f := range result.FailedTasks {
		metrics.RecordTaskFailure(f.Reason)
	}

	// 落库：先写任务排期字段，再写一条运行记录。
	// 失败重跑会整体覆盖，不需要跨表事务。
	if err := h.tasks.SavePlanningAll(ctx, result.ScheduledTasks); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存任务排期失败"))
		return
	}
	plan := h.buildPlanRecord(&req, result, search)
	if err := h.plans.Create(ctx, plan); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "保存排期记录失败"))
		return
	}

	logger.WithContext(ctx).Info().
		Str("algorithm", algo).
		Str("plan_id", plan.ID.String()).
		Int("scheduled", len(result.ScheduledTasks)).
		Int("failed", len(result.FailedTasks)).
		Float64("fitness", result.Fitness.Total).
		Msg("排期结果已落库")

	// 事后诊断与削峰建议基于落库后的完整视图
	merged := mergeScheduled(tasks, result.ScheduledTasks)
	checker := planvalidator.NewPlanValidator(&planvalidator.ValidatorConfig{
		MaxHoursPerDay:    result.MaxHoursPerDay,
		CheckDependencies: true,
		CheckFixed:        true,
	})
	conflicts := checker.Validate(merged, result.DailyAllocations)
	if conflicts == nil {
		conflicts = []planvalidator.Conflict{}
	}

	recs := advisor.NewRebalancer(hc).Recommend(merged, result.DailyAllocations, result.MaxHoursPerDay, nil)

	respondJSON(w, http.StatusOK, OptimizeResponse{
		Success:         true,
		PlanID:          plan.ID.String(),
		Result:          result,
		Conflicts:       conflicts,
		ConflictSummary: checker.Summarize(conflicts),
		Recommendations: recs,
		Duration:        result.Elapsed.String(),
	})
}

// Algorithms 返回全部可用算法的元信息
// GET /api/v1/algorithms
func (h *OptimizeHandler) Algorithms(w http.ResponseWriter, r *http.Request) {
	algorithms := planner.Algorithms()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"algorithms": algorithms,
		"total":      len(algorithms),
	})
}

func (h *OptimizeHandler) plannerConfig() planner.PlannerConfig {
	return planner.PlannerConfig{
		StartHour:      h.cfg.Planner.StartHour,
		EndHour:        h.cfg.Planner.EndHour,
		MaxHoursPerDay: h.cfg.Planner.MaxHoursPerDay,
		Search:         h.searchConfig(),
	}
}

func (h *OptimizeHandler) searchConfig() planner.SearchConfig {
	return planner.SearchConfig{
		PopulationSize: h.cfg.Planner.PopulationSize,
		Generations:    h.cfg.Planner.Generations,
		SampleCount:    h.cfg.Planner.SampleCount,
		Seed:           h.cfg.Planner.Seed,
	}
}

// buildPlanRecord 把一次运行的产出组装成持久化记录
func (h *OptimizeHandler) buildPlanRecord(req *OptimizeRequest, res *planner.OptimizeResult, search planner.SearchConfig) *model.Plan {
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", res.Algorithm, res.StartDate)
	}

	return &model.Plan{
		BaseModel:      model.NewBaseModel(),
		Name:           name,
		Algorithm:      res.Algorithm,
		StartDate:      res.StartDate,
		MaxHoursPerDay: res.MaxHoursPerDay,
		ForceOverride:  req.ForceOverride,
		Params: model.JSONMap{
			"population_size": search.PopulationSize,
			"generations":     search.Generations,
			"sample_count":    search.SampleCount,
			"seed":            search.Seed,
		},
		Fitness:        res.Fitness.Total,
		ScheduledCount: len(res.ScheduledTasks),
		FailedCount:    len(res.FailedTasks),
		TotalHours:     res.Summary.TotalHours,
		Allocations:    res.DailyAllocations,
		DurationMillis: res.Summary.ElapsedMillis,
	}
}

// mergeScheduled 用带新排期的副本替换快照中的同一任务
func mergeScheduled(snapshot, scheduled []*model.Task) []*model.Task {
	byID := make(map[uuid.UUID]*model.Task, len(scheduled))
	for _, t := range scheduled {
		byID[t.ID] = t
	}

	merged := make([]*model.Task, 0, len(snapshot))
	for _, t := range snapshot {
		if s, ok := byID[t.ID]; ok {
			merged = append(merged, s)
		} else {
			merged = append(merged, t)
		}
	}
	return merged
}
