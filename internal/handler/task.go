package handler

import (
	"errors"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/paiqi/paiqi/internal/repository"
	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/model"
)

// TaskHandler 任务管理处理器
type TaskHandler struct {
	tasks    TaskStore
	validate *validator.Validate
	trans    ut.Translator
}

// NewTaskHandler 创建任务管理处理器
func NewTaskHandler(tasks TaskStore, validate *validator.Validate, trans ut.Translator) *TaskHandler {
	return &TaskHandler{tasks: tasks, validate: validate, trans: trans}
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Description      string             `json:"description,omitempty"`
	Priority         int                `json:"priority" validate:"gte=0"`
	EstimatedHours   float64            `json:"estimated_hours" validate:"gte=0"`
	Deadline         string             `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsFixed          bool               `json:"is_fixed,omitempty"`
	PlannedStart     string             `json:"planned_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PlannedEnd       string             `json:"planned_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DailyAllocations map[string]float64 `json:"daily_allocations,omitempty"`
	ParentID         string             `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	DependsOn        []string           `json:"depends_on,omitempty" validate:"omitempty,dive,uuid"`
	Tags             []string           `json:"tags,omitempty"`
}

// UpdateTaskRequest 更新任务请求，缺失字段保持不变
type UpdateTaskRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description    *string  `json:"description,omitempty"`
	Priority       *int     `json:"priority,omitempty" validate:"omitempty,gte=0"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	Deadline       *string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsFixed        *bool    `json:"is_fixed,omitempty"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed canceled"`
	ParentID       *string  `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	DependsOn      []string `json:"depends_on,omitempty" validate:"omitempty,dive,uuid"`
	Tags           []string `json:"tags,omitempty"`
}

// Create 创建任务
// POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	task := model.NewTask(req.Name, req.Priority, req.EstimatedHours)
	task.Description = req.Description
	task.IsFixed = req.IsFixed
	task.Tags = req.Tags
	task.Deadline = parseDatePtr(req.Deadline)
	task.PlannedStart = parseDatePtr(req.PlannedStart)
	task.PlannedEnd = parseDatePtr(req.PlannedEnd)
	if len(req.DailyAllocations) > 0 {
		task.DailyAllocations = req.DailyAllocations
	}
	if req.ParentID != "" {
		pid, _ := uuid.Parse(req.ParentID)
		task.ParentID = &pid
	}
	for _, raw := range req.DependsOn {
		dep, _ := uuid.Parse(raw)
		task.DependsOn = append(task.DependsOn, dep)
	}

	// 固定任务不参与重排，必须自带完整的占用区间
	if task.IsFixed && !task.IsScheduled() {
		respondError(w, apperrors.InvalidInput("is_fixed", "固定任务必须提供计划开始和结束日期"))
		return
	}

	if err := h.tasks.Create(r.Context(), task); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建任务失败"))
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// List 查询任务列表
// GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.DefaultListFilter()
	if v := q.Get("status"); v != "" {
		filter = filter.WithStatus(v)
	}
	if v := q.Get("search"); v != "" {
		filter = filter.WithSearch(v)
	}
	if start, end := q.Get("start"), q.Get("end"); start != "" || end != "" {
		filter = filter.WithDateRange(start, end)
	}
	if v := q.Get("is_fixed"); v != "" {
		filter = filter.WithExtra("is_fixed", v == "true")
	}
	if v := q.Get("tag"); v != "" {
		filter = filter.WithExtra("tag", v)
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter = filter.WithLimit(n)
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter = filter.WithOffset(n)
		}
	}

	tasks, total, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务失败"))
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":  tasks,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Get 获取单个任务
// GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务失败"))
		return
	}
	if task == nil {
		respondError(w, apperrors.TaskNotFound(id.String()))
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Update 更新任务元信息
// PUT /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	var req UpdateTaskRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询任务失败"))
		return
	}
	if task == nil {
		respondError(w, apperrors.TaskNotFound(id.String()))
		return
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = *req.EstimatedHours
	}
	if req.Deadline != nil {
		task.Deadline = parseDatePtr(*req.Deadline)
	}
	if req.IsFixed != nil {
		task.IsFixed = *req.IsFixed
	}
	if req.Status != nil {
		task.Status = model.TaskStatus(*req.Status)
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			task.ParentID = nil
		} else {
			pid, _ := uuid.Parse(*req.ParentID)
			task.ParentID = &pid
		}
	}
	if req.DependsOn != nil {
		deps := make([]uuid.UUID, 0, len(req.DependsOn))
		for _, raw := range req.DependsOn {
			dep, _ := uuid.Parse(raw)
			deps = append(deps, dep)
		}
		task.DependsOn = deps
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}

	if task.IsFixed && !task.IsScheduled() {
		respondError(w, apperrors.InvalidInput("is_fixed", "固定任务必须提供计划开始和结束日期"))
		return
	}

	if err := h.tasks.Update(r.Context(), task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, apperrors.TaskNotFound(id.String()))
			return
		}
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "更新任务失败"))
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Delete 软删除任务
// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, apperrors.TaskNotFound(id.String()))
			return
		}
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除任务失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id.String()})
}

// Children 获取子任务列表
// GET /api/v1/tasks/{id}/children
func (h *TaskHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	children, err := h.tasks.GetChildren(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询子任务失败"))
		return
	}
	if children == nil {
		children = []*model.Task{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": children,
		"total": len(children),
	})
}
