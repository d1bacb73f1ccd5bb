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

// taskColumns 任务表的查询列
const taskColumns = `id, name, description, priority, estimated_hours,
	planned_start, planned_end, deadline, is_fixed, status,
	parent_id, depends_on, tags, daily_allocations, created_at, updated_at`

// TaskRepository 任务仓储
type TaskRepository struct {
	db DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = model.TaskPending
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	depsJSON, _ := json.Marshal(task.DependsOn)
	tagsJSON, _ := json.Marshal(task.Tags)
	allocJSON, _ := json.Marshal(task.DailyAllocations)

	query := `
		INSERT INTO tasks (
			id, name, description, priority, estimated_hours,
			planned_start, planned_end, deadline, is_fixed, status,
			parent_id, depends_on, tags, daily_allocations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Name, task.Description, task.Priority, task.EstimatedHours,
		task.PlannedStart, task.PlannedEnd, task.Deadline, task.IsFixed, task.Status,
		task.ParentID, depsJSON, tagsJSON, allocJSON, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建任务失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取任务，不存在时返回 nil
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND deleted_at IS NULL`, taskColumns)
	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新任务元信息。
// 排期产出（计划区间、每日分配）通过 SavePlanning 单独落库。
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	depsJSON, _ := json.Marshal(task.DependsOn)
	tagsJSON, _ := json.Marshal(task.Tags)

	query := `
		UPDATE tasks SET
			name = $2, description = $3, priority = $4, estimated_hours = $5,
			deadline = $6, is_fixed = $7, status = $8, parent_id = $9,
			depends_on = $10, tags = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.Name, task.Description, task.Priority, task.EstimatedHours,
		task.Deadline, task.IsFixed, task.Status, task.ParentID,
		depsJSON, tagsJSON, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新任务失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("任务不存在: %w", ErrNotFound)
	}

	return nil
}

// SavePlanning 落库一次排期产出：计划区间与每日分配
func (r *TaskRepository) SavePlanning(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()
	allocJSON, _ := json.Marshal(task.DailyAllocations)

	query := `
		UPDATE tasks SET
			planned_start = $2, planned_end = $3, daily_allocations = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.PlannedStart, task.PlannedEnd, allocJSON, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存排期结果失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("任务不存在: %w", ErrNotFound)
	}

	return nil
}

// SavePlanningAll 批量落库排期产出
func (r *TaskRepository) SavePlanningAll(ctx context.Context, tasks []*model.Task) error {
	for _, t := range tasks {
		if err := r.SavePlanning(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Delete 软删除任务
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tasks SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除任务失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("任务不存在: %w", ErrNotFound)
	}

	return nil
}

// List 查询任务列表
func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]*model.Task, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	// 截止日期范围过滤
	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("deadline >= $%d", argIndex))
		args = append(args, filter.StartDate)
		argIndex++
	}
	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("deadline <= $%d", argIndex))
		args = append(args, filter.EndDate)
		argIndex++
	}

	// 固定任务过滤
	if fixed, ok := filter.Extra["is_fixed"].(bool); ok {
		conditions = append(conditions, fmt.Sprintf("is_fixed = $%d", argIndex))
		args = append(args, fixed)
		argIndex++
	}

	// 标签过滤
	if tag, ok := filter.Extra["tag"].(string); ok && tag != "" {
		tagJSON, _ := json.Marshal([]string{tag})
		conditions = append(conditions, fmt.Sprintf("tags @> $%d", argIndex))
		args = append(args, tagJSON)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	// 查询列表
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
		FROM tasks
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, taskColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	return tasks, total, nil
}

// ListByIDs 根据ID列表获取任务
func (r *TaskRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id IN (%s) AND deleted_at IS NULL
	`, taskColumns, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// ListOpen 获取所有未终结的任务，供一次优化运行装载快照。
// 已完成和已取消的任务不参与排期，但固定与进行中的任务要占容量，所以一并返回。
func (r *TaskRepository) ListOpen(ctx context.Context) ([]*model.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE status IN ($1, $2) AND deleted_at IS NULL
		ORDER BY deadline ASC NULLS LAST, priority DESC
	`, taskColumns)

	rows, err := r.db.QueryContext(ctx, query, model.TaskPending, model.TaskInProgress)
	if err != nil {
		return nil, fmt.Errorf("查询待排期任务失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// GetAll 获取所有未删除的任务
func (r *TaskRepository) GetAll(ctx context.Context) ([]*model.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, taskColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// GetChildren 获取指定任务的子任务
func (r *TaskRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]*model.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE parent_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, taskColumns)

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("查询子任务失败: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// scanTask 扫描单行任务数据
func (r *TaskRepository) scanTask(row *sql.Row) (*model.Task, error) {
	task := &model.Task{}
	var plannedStart, plannedEnd, deadline sql.NullTime
	var parentID uuid.NullUUID
	var depsJSON, tagsJSON, allocJSON []byte

	err := row.Scan(
		&task.ID, &task.Name, &task.Description, &task.Priority, &task.EstimatedHours,
		&plannedStart, &plannedEnd, &deadline, &task.IsFixed, &task.Status,
		&parentID, &depsJSON, &tagsJSON, &allocJSON, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描任务数据失败: %w", err)
	}

	fillTaskNullables(task, plannedStart, plannedEnd, deadline, parentID)
	json.Unmarshal(depsJSON, &task.DependsOn)
	json.Unmarshal(tagsJSON, &task.Tags)
	json.Unmarshal(allocJSON, &task.DailyAllocations)

	return task, nil
}

// scanTaskRow 扫描Rows中的任务数据
func (r *TaskRepository) scanTaskRow(rows *sql.Rows) (*model.Task, error) {
	task := &model.Task{}
	var plannedStart, plannedEnd, deadline sql.NullTime
	var parentID uuid.NullUUID
	var depsJSON, tagsJSON, allocJSON []byte

	err := rows.Scan(
		&task.ID, &task.Name, &task.Description, &task.Priority, &task.EstimatedHours,
		&plannedStart, &plannedEnd, &deadline, &task.IsFixed, &task.Status,
		&parentID, &depsJSON, &tagsJSON, &allocJSON, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描任务数据失败: %w", err)
	}

	fillTaskNullables(task, plannedStart, plannedEnd, deadline, parentID)
	json.Unmarshal(depsJSON, &task.DependsOn)
	json.Unmarshal(tagsJSON, &task.Tags)
	json.Unmarshal(allocJSON, &task.DailyAllocations)

	return task, nil
}

// fillTaskNullables 回填可空列
func fillTaskNullables(task *model.Task, plannedStart, plannedEnd, deadline sql.NullTime, parentID uuid.NullUUID) {
	if plannedStart.Valid {
		task.PlannedStart = &plannedStart.Time
	}
	if plannedEnd.Valid {
		task.PlannedEnd = &plannedEnd.Time
	}
	if deadline.Valid {
		task.Deadline = &deadline.Time
	}
	if parentID.Valid {
		id := parentID.UUID
		task.ParentID = &id
	}
}
