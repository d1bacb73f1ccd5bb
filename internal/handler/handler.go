// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/google/uuid"

	"github.com/paiqi/paiqi/internal/config"
	"github.com/paiqi/paiqi/internal/repository"
	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
)

// TaskStore 任务存取接口
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.ListFilter) ([]*model.Task, int, error)
	ListOpen(ctx context.Context) ([]*model.Task, error)
	GetAll(ctx context.Context) ([]*model.Task, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]*model.Task, error)
	SavePlanningAll(ctx context.Context, tasks []*model.Task) error
}

// PlanStore 排期记录存取接口
type PlanStore interface {
	Create(ctx context.Context, plan *model.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repository.ListFilter) ([]*model.Plan, int, error)
}

// HolidayStore 节假日存取接口
type HolidayStore interface {
	Add(ctx context.Context, date, name string) error
	Remove(ctx context.Context, date string) error
	ListRange(ctx context.Context, start, end string) (map[string]string, error)
	Checker(ctx context.Context) (holiday.Checker, error)
}

var (
	_ TaskStore    = (*repository.TaskRepository)(nil)
	_ PlanStore    = (*repository.PlanRepository)(nil)
	_ HolidayStore = (*repository.HolidayRepository)(nil)
)

// Handlers 聚合全部HTTP处理器
type Handlers struct {
	Optimize *OptimizeHandler
	Task     *TaskHandler
	Plan     *PlanHandler
	Stats    *StatsHandler
	Holiday  *HolidayHandler
}

// New 创建全部处理器并注入共享依赖
func New(cfg *config.Config, tasks TaskStore, plans PlanStore, holidays HolidayStore) (*Handlers, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("初始化请求校验器失败: %w", err)
	}

	return &Handlers{
		Optimize: NewOptimizeHandler(cfg, tasks, plans, holidays, validate, trans),
		Task:     NewTaskHandler(tasks, validate, trans),
		Plan:     NewPlanHandler(plans),
		Stats:    NewStatsHandler(cfg, tasks),
		Holiday:  NewHolidayHandler(holidays, validate, trans),
	}, nil
}

// Routes 组装 /api/v1 业务路由
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/optimize", h.Optimize.Optimize)
	r.Get("/algorithms", h.Optimize.Algorithms)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.Task.List)
		r.Post("/", h.Task.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Task.Get)
			r.Put("/", h.Task.Update)
			r.Delete("/", h.Task.Delete)
			r.Get("/children", h.Task.Children)
		})
	})

	r.Route("/plans", func(r chi.Router) {
		r.Get("/", h.Plan.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Plan.Get)
			r.Delete("/", h.Plan.Delete)
		})
	})

	r.Get("/stats/workload", h.Stats.Workload)

	r.Route("/holidays", func(r chi.Router) {
		r.Get("/", h.Holiday.List)
		r.Post("/", h.Holiday.Add)
		r.Delete("/{date}", h.Holiday.Remove)
	})

	return r
}

// newValidator 创建带中文错误翻译的请求校验器
func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, ok := uni.GetTranslator("zh")
	if !ok {
		return nil, nil, fmt.Errorf("中文翻译器不可用")
	}
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("注册校验翻译失败: %w", err)
	}

	return validate, trans, nil
}

// readJSON 解析请求体，拒绝未知字段
func readJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)

	payload := map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
	}
	if err.Details != "" {
		payload["details"] = err.Details
	}
	if len(err.Fields) > 0 {
		payload["fields"] = err.Fields
	}
	json.NewEncoder(w).Encode(payload)
}

// respondAppError 把任意错误规整为 AppError 后返回
func respondAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.CodeInternal, "服务器内部错误")
	}
	respondError(w, appErr)
}

// respondValidationError 把字段校验错误翻译成中文后返回
func respondValidationError(w http.ResponseWriter, trans ut.Translator, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		respondError(w, apperrors.Wrap(err, apperrors.CodeValidationFail, "请求参数验证失败"))
		return
	}

	appErr := apperrors.New(apperrors.CodeValidationFail, "请求参数验证失败")
	for _, fe := range fieldErrs {
		appErr.WithField(fe.Field(), fe.Translate(trans))
	}
	respondError(w, appErr)
}

// urlUUID 解析路径中的UUID参数
func urlUUID(r *http.Request, name string) (uuid.UUID, *apperrors.AppError) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.CodeInvalidInput, "无效的ID格式: "+raw)
	}
	return id, nil
}

// parseDatePtr 解析已通过格式校验的日期字符串
func parseDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}
