package validator

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/model"
)

func TestValidate_CleanPlan(t *testing.T) {
	v := NewPlanValidator(nil)

	due := date(t, "2026-03-10")
	task := model.NewTask("正常任务", 5, 8)
	task.Deadline = &due
	setPlanned(task, "2026-03-02", "2026-03-03", map[string]float64{
		"2026-03-02": 4, "2026-03-03": 4,
	})

	conflicts := v.Validate([]*model.Task{task}, map[string]float64{
		"2026-03-02": 4, "2026-03-03": 4,
	})
	if len(conflicts) != 0 {
		t.Errorf("无冲突的排期不应报告问题: %+v", conflicts)
	}
}

func TestValidate_CapacityViolation(t *testing.T) {
	v := NewPlanValidator(&ValidatorConfig{MaxHoursPerDay: 8})

	conflicts := v.Validate(nil, map[string]float64{
		"2026-03-02": 10,
		"2026-03-03": 8, // 恰好满载不算超限
	})

	if len(conflicts) != 1 {
		t.Fatalf("冲突数 = %d, 期望 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != ConflictCapacity || c.Severity != SeverityError || c.Date != "2026-03-02" {
		t.Errorf("冲突 = %+v, 期望 capacity/error/2026-03-02", c)
	}
}

func TestValidate_DeadlineMiss(t *testing.T) {
	v := NewPlanValidator(nil)
	due := date(t, "2026-03-05")

	cases := []struct {
		name     string
		end      string
		severity string
	}{
		{"逾期两天", "2026-03-07", SeverityError},
		{"贴线完成", "2026-03-05", SeverityWarning},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := model.NewTask("报告", 5, 8)
			task.Deadline = &due
			setPlanned(task, "2026-03-02", tc.end, nil)

			conflicts := v.Validate([]*model.Task{task}, nil)
			if len(conflicts) != 1 {
				t.Fatalf("冲突数 = %d, 期望 1", len(conflicts))
			}
			c := conflicts[0]
			if c.Type != ConflictDeadline || c.Severity != tc.severity || c.TaskID != task.ID {
				t.Errorf("冲突 = %+v, 期望 deadline/%s", c, tc.severity)
			}
		})
	}

	t.Run("按期完成", func(t *testing.T) {
		task := model.NewTask("报告", 5, 8)
		task.Deadline = &due
		setPlanned(task, "2026-03-02", "2026-03-04", nil)

		if conflicts := v.Validate([]*model.Task{task}, nil); len(conflicts) != 0 {
			t.Errorf("提前完成不应报告冲突: %+v", conflicts)
		}
	})
}

func TestValidate_DeadlineInheritedFromParent(t *testing.T) {
	v := NewPlanValidator(nil)

	due := date(t, "2026-03-03")
	parent := model.NewTask("父任务", 5, 0)
	parent.Deadline = &due

	child := model.NewTask("子任务", 5, 8)
	child.ParentID = &parent.ID
	setPlanned(child, "2026-03-02", "2026-03-06", nil)

	conflicts := v.Validate([]*model.Task{parent, child}, nil)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictDeadline || conflicts[0].TaskID != child.ID {
		t.Errorf("子任务应按父任务截止日期判定逾期: %+v", conflicts)
	}
}

func TestValidate_DependencyViolations(t *testing.T) {
	v := NewPlanValidator(nil)

	t.Run("开始早于依赖结束", func(t *testing.T) {
		dep := model.NewTask("前置", 5, 8)
		setPlanned(dep, "2026-03-02", "2026-03-03", nil)
		follow := model.NewTask("后续", 5, 8)
		follow.DependsOn = []uuid.UUID{dep.ID}
		setPlanned(follow, "2026-03-03", "2026-03-04", nil)

		conflicts := v.Validate([]*model.Task{dep, follow}, nil)
		if len(conflicts) != 1 || conflicts[0].Type != ConflictDependency || conflicts[0].Severity != SeverityError {
			t.Errorf("同日衔接应判定为依赖颠倒: %+v", conflicts)
		}
	})

	t.Run("依赖未排期", func(t *testing.T) {
		dep := model.NewTask("前置", 5, 8)
		follow := model.NewTask("后续", 5, 8)
		follow.DependsOn = []uuid.UUID{dep.ID}
		setPlanned(follow, "2026-03-02", "2026-03-03", nil)

		conflicts := v.Validate([]*model.Task{dep, follow}, nil)
		if len(conflicts) != 1 || conflicts[0].Severity != SeverityWarning {
			t.Errorf("依赖未排期应为警告: %+v", conflicts)
		}
	})

	t.Run("依赖已完成", func(t *testing.T) {
		dep := model.NewTask("前置", 5, 8)
		dep.Status = model.TaskCompleted
		follow := model.NewTask("后续", 5, 8)
		follow.DependsOn = []uuid.UUID{dep.ID}
		setPlanned(follow, "2026-03-02", "2026-03-03", nil)

		if conflicts := v.Validate([]*model.Task{dep, follow}, nil); len(conflicts) != 0 {
			t.Errorf("已完成的依赖不应产生冲突: %+v", conflicts)
		}
	})

	t.Run("次日衔接合法", func(t *testing.T) {
		dep := model.NewTask("前置", 5, 8)
		setPlanned(dep, "2026-03-02", "2026-03-03", nil)
		follow := model.NewTask("后续", 5, 8)
		follow.DependsOn = []uuid.UUID{dep.ID}
		setPlanned(follow, "2026-03-04", "2026-03-05", nil)

		if conflicts := v.Validate([]*model.Task{dep, follow}, nil); len(conflicts) != 0 {
			t.Errorf("依赖结束次日开始不应有冲突: %+v", conflicts)
		}
	})
}

func TestValidate_FixedDrift(t *testing.T) {
	v := NewPlanValidator(nil)

	fixed := model.NewTask("固定例会", 4, 4)
	fixed.IsFixed = true
	setPlanned(fixed, "2026-03-02", "2026-03-03", map[string]float64{
		"2026-03-02": 2, "2026-03-03": 2,
	})

	t.Run("占用丢失", func(t *testing.T) {
		conflicts := v.Validate([]*model.Task{fixed}, map[string]float64{
			"2026-03-02": 2, // 03-03 的占用不见了
		})
		if len(conflicts) != 1 || conflicts[0].Type != ConflictFixedDrift || conflicts[0].Date != "2026-03-03" {
			t.Errorf("丢失的固定占用应被检出: %+v", conflicts)
		}
	})

	t.Run("占用完整", func(t *testing.T) {
		conflicts := v.Validate([]*model.Task{fixed}, map[string]float64{
			"2026-03-02": 6, "2026-03-03": 2, // 同日叠加其他任务不算漂移
		})
		if len(conflicts) != 0 {
			t.Errorf("完整保留的固定占用不应报告冲突: %+v", conflicts)
		}
	})
}

func TestSummarize(t *testing.T) {
	v := NewPlanValidator(nil)
	conflicts := []Conflict{
		{Type: ConflictCapacity, Severity: SeverityError},
		{Type: ConflictDeadline, Severity: SeverityError},
		{Type: ConflictDeadline, Severity: SeverityWarning},
	}

	s := v.Summarize(conflicts)
	if s.Total != 3 || s.Errors != 2 || s.Warnings != 1 {
		t.Errorf("汇总 = %+v, 期望 3/2/1", s)
	}
	if s.ByType[ConflictDeadline] != 2 || s.ByType[ConflictCapacity] != 1 {
		t.Errorf("分类计数 = %+v", s.ByType)
	}
}

// ---- 测试辅助 ----

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("解析日期 %s 失败: %v", s, err)
	}
	return d
}

func setPlanned(task *model.Task, start, end string, alloc map[string]float64) {
	s, _ := model.ParseDate(start)
	e, _ := model.ParseDate(end)
	task.PlannedStart = &s
	task.PlannedEnd = &e
	task.DailyAllocations = alloc
}
