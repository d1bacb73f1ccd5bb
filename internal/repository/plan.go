package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/model"
)

// planColumns 排期记录表的查询列
const planColumns = `id, name, algorithm, start_date, max_hours_per_day, force_override,
	params, fitness, scheduled_count, failed_count, total_hours,
	allocations, duration_ms, created_at, updated_at`

// PlanRepository 排期记录仓储
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建排期记录仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create 保存一次优化运行的记录
func (r *PlanRepository) Create(ctx context.Context, plan *model.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	paramsJSON, _ := json.Marshal(plan.Params)
	allocJSON, _ := json.Marshal(plan.Allocations)

	query := `
		INSERT INTO plans (
			id, name, algorithm, start_date, max_hours_per_day, force_override,
			params, fitness, scheduled_count, failed_count, total_hours,
			allocations, duration_ms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Algorithm, plan.StartDate, plan.MaxHoursPerDay, plan.ForceOverride,
		paramsJSON, plan.Fitness, plan.ScheduledCount, plan.FailedCount, plan.TotalHours,
		allocJSON, plan.DurationMillis, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存排期记录失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取排期记录，不存在时返回 nil
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1 AND deleted_at IS NULL`, planColumns)
	return r.scanPlan(r.db.QueryRowContext(ctx, query, id))
}

// Delete 软删除排期记录
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE plans SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除排期记录失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("排期记录不存在: %w", ErrNotFound)
	}

	return nil
}

// List 查询排期记录列表
func (r *PlanRepository) List(ctx context.Context, filter ListFilter) ([]*model.Plan, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	// 算法过滤
	if algo, ok := filter.Extra["algorithm"].(string); ok && algo != "" {
		conditions = append(conditions, fmt.Sprintf("algorithm = $%d", argIndex))
		args = append(args, algo)
		argIndex++
	}

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", argIndex))
		args = append(args, filter.StartDate)
		argIndex++
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", argIndex))
		args = append(args, filter.EndDate)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM plans WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM plans
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, planColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		plan, err := r.scanPlanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, plan)
	}

	return plans, total, nil
}

// scanPlan 扫描单行排期记录
func (r *PlanRepository) scanPlan(row *sql.Row) (*model.Plan, error) {
	plan := &model.Plan{}
	var paramsJSON, allocJSON []byte

	err := row.Scan(
		&plan.ID, &plan.Name, &plan.Algorithm, &plan.StartDate, &plan.MaxHoursPerDay, &plan.ForceOverride,
		&paramsJSON, &plan.Fitness, &plan.ScheduledCount, &plan.FailedCount, &plan.TotalHours,
		&allocJSON, &plan.DurationMillis, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描排期记录失败: %w", err)
	}

	json.Unmarshal(paramsJSON, &plan.Params)
	json.Unmarshal(allocJSON, &plan.Allocations)

	return plan, nil
}

// scanPlanRow 扫描Rows中的排期记录
func (r *PlanRepository) scanPlanRow(rows *sql.Rows) (*model.Plan, error) {
	plan := &model.Plan{}
	var paramsJSON, allocJSON []byte

	err := rows.Scan(
		&plan.ID, &plan.Name, &plan.Algorithm, &plan.StartDate, &plan.MaxHoursPerDay, &plan.ForceOverride,
		&paramsJSON, &plan.Fitness, &plan.ScheduledCount, &plan.FailedCount, &plan.TotalHours,
		&allocJSON, &plan.DurationMillis, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描排期记录失败: %w", err)
	}

	json.Unmarshal(paramsJSON, &plan.Params)
	json.Unmarshal(allocJSON, &plan.Allocations)

	return plan, nil
}
