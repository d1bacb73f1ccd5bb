package template

import (
	"strings"
	"testing"

	"github.com/paiqi/paiqi/pkg/model"
)

func TestManager_CreateTemplate(t *testing.T) {
	manager := NewManager()

	tests := []struct {
		name        string
		level       int
		wantError   bool
		weeklyHours float64
	}{
		{"等级1", 1, false, 3},
		{"等级3", 3, false, 7},
		{"等级6", 6, false, 20},
		{"无效等级0", 0, true, 0},
		{"无效等级7", 7, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := manager.CreateTemplate("周例行维护", tt.level, "2026-03-02")
			if tt.wantError {
				if err == nil {
					t.Error("期望报错, 实际为 nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if tpl.WeeklyHours != tt.weeklyHours {
				t.Errorf("每周工时 = %v, 期望 %v", tpl.WeeklyHours, tt.weeklyHours)
			}
			if tpl.Status != "active" || tpl.TemplateNo == "" {
				t.Errorf("模板 = %+v, 期望 active 且带编号", tpl)
			}
		})
	}

	t.Run("日期格式错误", func(t *testing.T) {
		if _, err := manager.CreateTemplate("坏日期", 2, "03/02/2026"); err == nil {
			t.Error("非法日期应报错")
		}
	})
}

func TestManager_GenerateTasks(t *testing.T) {
	manager := NewManager()

	tpl, err := manager.CreateTemplate("数据备份", 2, "2026-03-02")
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	tpl.Tags = []string{"运维"}

	// 等级2：每周5小时，分周二、周五两次，每次2.5小时
	tasks, err := manager.GenerateTasks(tpl, "2026-03-02", "2026-03-13")
	if err != nil {
		t.Fatalf("生成任务失败: %v", err)
	}

	if len(tasks) != 4 {
		t.Fatalf("任务数 = %d, 期望两周共 4 个", len(tasks))
	}

	wantDates := []string{"2026-03-03", "2026-03-06", "2026-03-10", "2026-03-13"}
	for i, task := range tasks {
		if task.EstimatedHours != 2.5 {
			t.Errorf("任务 %d 预估工时 = %v, 期望 2.5", i, task.EstimatedHours)
		}
		if task.Status != model.TaskPending {
			t.Errorf("任务 %d 状态 = %s, 期望 pending", i, task.Status)
		}
		if task.Deadline == nil || model.FormatDate(*task.Deadline) != wantDates[i] {
			t.Errorf("任务 %d 截止日期 = %v, 期望 %s", i, task.Deadline, wantDates[i])
		}
		if !strings.HasSuffix(task.Name, wantDates[i]) {
			t.Errorf("任务 %d 名称 = %s, 期望以服务日结尾", i, task.Name)
		}
		if !strings.Contains(task.Description, tpl.TemplateNo) || !strings.Contains(task.Description, "TK") {
			t.Errorf("任务 %d 描述应包含模板编号与任务编号: %s", i, task.Description)
		}
		if len(task.Tags) != 1 || task.Tags[0] != "运维" {
			t.Errorf("任务 %d 标签 = %v, 期望继承模板标签", i, task.Tags)
		}
	}
}

func TestManager_GenerateTasks_Inactive(t *testing.T) {
	manager := NewManager()

	tpl, _ := manager.CreateTemplate("已停用", 2, "2026-03-02")
	tpl.Status = "paused"

	if _, err := manager.GenerateTasks(tpl, "2026-03-02", "2026-03-13"); err == nil {
		t.Error("停用的模板应报错")
	}
	if _, err := manager.GenerateTasks(nil, "2026-03-02", "2026-03-13"); err == nil {
		t.Error("空模板应报错")
	}
}

func TestManager_GenerateTasks_BadRange(t *testing.T) {
	manager := NewManager()
	tpl, _ := manager.CreateTemplate("正常模板", 2, "2026-03-02")

	if _, err := manager.GenerateTasks(tpl, "不是日期", "2026-03-13"); err == nil {
		t.Error("非法开始日期应报错")
	}
	if _, err := manager.GenerateTasks(tpl, "2026-03-02", "不是日期"); err == nil {
		t.Error("非法结束日期应报错")
	}

	// 区间为空时生成零个任务而不是报错
	tasks, err := manager.GenerateTasks(tpl, "2026-03-13", "2026-03-02")
	if err != nil || len(tasks) != 0 {
		t.Errorf("空区间 = %d 个任务, err=%v, 期望 0 个且无错误", len(tasks), err)
	}
}

func TestManager_ValidateTemplate(t *testing.T) {
	manager := NewManager()

	tests := []struct {
		name   string
		tpl    *model.TaskTemplate
		hasErr bool
	}{
		{
			name: "有效模板",
			tpl: &model.TaskTemplate{
				Level:       3,
				WeeklyHours: 7,
				StartDate:   "2026-03-02",
				Frequency:   "twice_weekly",
			},
			hasErr: false,
		},
		{
			name: "无效等级",
			tpl: &model.TaskTemplate{
				Level:       7,
				WeeklyHours: 7,
				StartDate:   "2026-03-02",
				Frequency:   "twice_weekly",
			},
			hasErr: true,
		},
		{
			name: "无开始日期",
			tpl: &model.TaskTemplate{
				Level:       3,
				WeeklyHours: 7,
				Frequency:   "twice_weekly",
			},
			hasErr: true,
		},
		{
			name: "频率无效",
			tpl: &model.TaskTemplate{
				Level:       3,
				WeeklyHours: 7,
				StartDate:   "2026-03-02",
				Frequency:   "hourly",
			},
			hasErr: true,
		},
		{
			name: "零工时",
			tpl: &model.TaskTemplate{
				Level:       3,
				StartDate:   "2026-03-02",
				Frequency:   "twice_weekly",
			},
			hasErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := manager.ValidateTemplate(tt.tpl)
			if (len(problems) > 0) != tt.hasErr {
				t.Errorf("ValidateTemplate() 问题 = %v, 期望报错 = %v", problems, tt.hasErr)
			}
		})
	}
}
