package repository

import (
	"context"
	"fmt"

	"github.com/paiqi/paiqi/pkg/holiday"
)

// HolidayRepository 节假日仓储
type HolidayRepository struct {
	db DB
}

// NewHolidayRepository 创建节假日仓储
func NewHolidayRepository(db DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// Add 添加节假日，重复日期覆盖名称
func (r *HolidayRepository) Add(ctx context.Context, date, name string) error {
	query := `
		INSERT INTO holidays (date, name) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET name = EXCLUDED.name
	`

	if _, err := r.db.ExecContext(ctx, query, date, name); err != nil {
		return fmt.Errorf("添加节假日失败: %w", err)
	}
	return nil
}

// Remove 删除节假日
func (r *HolidayRepository) Remove(ctx context.Context, date string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = $1`, date); err != nil {
		return fmt.Errorf("删除节假日失败: %w", err)
	}
	return nil
}

// ListRange 返回区间内的节假日（日期 -> 名称）
func (r *HolidayRepository) ListRange(ctx context.Context, start, end string) (map[string]string, error) {
	query := `SELECT date, name FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("查询节假日失败: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, fmt.Errorf("扫描节假日数据失败: %w", err)
		}
		out[date] = name
	}

	return out, nil
}

// Checker 把节假日表装载成排期引擎可用的检查器
func (r *HolidayRepository) Checker(ctx context.Context) (holiday.Checker, error) {
	query := `SELECT date, name FROM holidays`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("装载节假日失败: %w", err)
	}
	defer rows.Close()

	checker := holiday.NewStatic()
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, fmt.Errorf("扫描节假日数据失败: %w", err)
		}
		checker.Add(date, name)
	}

	return checker, nil
}
