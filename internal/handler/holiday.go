package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/model"
)

// HolidayHandler 节假日管理处理器
type HolidayHandler struct {
	holidays HolidayStore
	validate *validator.Validate
	trans    ut.Translator
}

// NewHolidayHandler 创建节假日管理处理器
func NewHolidayHandler(holidays HolidayStore, validate *validator.Validate, trans ut.Translator) *HolidayHandler {
	return &HolidayHandler{holidays: holidays, validate: validate, trans: trans}
}

// AddHolidayRequest 添加节假日请求
type AddHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=50"`
}

// List 查询节假日，缺省返回当年
// GET /api/v1/holidays?start=2026-01-01&end=2026-12-31
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")

	year := time.Now().Year()
	if start == "" {
		start = fmt.Sprintf("%d-01-01", year)
	}
	if end == "" {
		end = fmt.Sprintf("%d-12-31", year)
	}
	if _, err := model.ParseDate(start); err != nil {
		respondError(w, apperrors.InvalidInput("start", "日期格式应为 YYYY-MM-DD"))
		return
	}
	if _, err := model.ParseDate(end); err != nil {
		respondError(w, apperrors.InvalidInput("end", "日期格式应为 YYYY-MM-DD"))
		return
	}

	holidays, err := h.holidays.ListRange(r.Context(), start, end)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询节假日失败"))
		return
	}
	if holidays == nil {
		holidays = map[string]string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"start":    start,
		"end":      end,
		"holidays": holidays,
		"total":    len(holidays),
	})
}

// Add 添加节假日，重复日期覆盖名称
// POST /api/v1/holidays
func (h *HolidayHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddHolidayRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.holidays.Add(r.Context(), req.Date, req.Name); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "添加节假日失败"))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"date": req.Date,
		"name": req.Name,
	})
}

// Remove 删除节假日
// DELETE /api/v1/holidays/{date}
func (h *HolidayHandler) Remove(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := model.ParseDate(date); err != nil {
		respondError(w, apperrors.InvalidInput("date", "日期格式应为 YYYY-MM-DD"))
		return
	}

	if err := h.holidays.Remove(r.Context(), date); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "删除节假日失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "date": date})
}
