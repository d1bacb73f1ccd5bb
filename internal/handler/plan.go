package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/paiqi/paiqi/internal/repository"
	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/model"
)

// PlanHandler 排期记录处理器
type PlanHandler struct {
	plans PlanStore
}

// NewPlanHandler 创建排期记录处理器
func NewPlanHandler(plans PlanStore) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// List 查询历史排期记录
// GET /api/v1/plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.DefaultListFilter()
	if v := q.Get("algorithm"); v != "" {
		filter = filter.WithExtra("algorithm", v)
	}
	if start, end := q.Get("start"), q.Get("end"); start != "" || end != "" {
		filter = filter.WithDateRange(start, end)
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

	plans, total, err := h.plans.List(r.Context(), filter)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排期记录失败"))
		return
	}
	if plans == nil {
		plans = []*model.Plan{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"plans":  plans,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Get 获取单条排期记录
// GET /api/v1/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	plan, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排期记录失败"))
		return
	}
	if plan == nil {
		respondError(w, apperrors.NotFound("排期记录", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// Delete 软删除排期记录
// DELETE /api/v1/plans/{id}
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := urlUUID(r, "id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	if err := h.plans.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, apperrors.NotFound("排期记录", id.String()))
			return
		}
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除排期记录失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id.String()})
}
