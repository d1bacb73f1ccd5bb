// Package template 提供周期性任务模板管理
package template

import (
	"fmt"
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// Manager 任务模板管理器
type Manager struct {
	// 强度等级对应的每周工时
	levelHours map[int]float64
}

// NewManager 创建任务模板管理器
func NewManager() *Manager {
	return &Manager{
		levelHours: map[int]float64{
			1: 3,  // 一级：每周3小时
			2: 5,  // 二级：每周5小时
			3: 7,  // 三级：每周7小时
			4: 10, // 四级：每周10小时
			5: 15, // 五级：每周15小时
			6: 20, // 六级：每周20小时
		},
	}
}

// CreateTemplate 创建任务模板
func (m *Manager) CreateTemplate(name string, level int, startDate string) (*model.TaskTemplate, error) {
	if level < 1 || level > 6 {
		return nil, fmt.Errorf("强度等级必须在1-6之间")
	}
	if _, err := model.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("开始日期格式错误: %v", err)
	}

	weeklyHours, ok := m.levelHours[level]
	if !ok {
		weeklyHours = 5
	}

	tt := &model.TaskTemplate{
		BaseModel:   model.NewBaseModel(),
		Name:        name,
		TemplateNo:  generateTemplateNo(),
		Level:       level,
		WeeklyHours: weeklyHours,
		Priority:    levelPriority(level),
		Frequency:   calculateFrequency(weeklyHours),
		StartDate:   startDate,
		Status:      "active",
	}

	return tt, nil
}

// GenerateTasks 按模板在日期区间内生成待排期任务。
// 每周的工时均匀分摊到固定的服务日上，每个任务以其服务日为截止日期。
func (m *Manager) GenerateTasks(tt *model.TaskTemplate, startDate, endDate string) ([]*model.Task, error) {
	if tt == nil || !tt.IsActive() {
		return nil, fmt.Errorf("任务模板无效或已停用")
	}

	start, err := model.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("开始日期格式错误: %v", err)
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("结束日期格式错误: %v", err)
	}

	// 每周服务次数与单次工时
	sessions := calculateSessionsPerWeek(tt.WeeklyHours)
	sessionHours := tt.WeeklyHours / float64(sessions)

	// 服务日安排（均匀分布在一周内）
	serviceDays := getServiceDays(sessions)

	var tasks []*model.Task
	seq := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		weekday := int(current.Weekday())

		isServiceDay := false
		for _, day := range serviceDays {
			if day == weekday {
				isServiceDay = true
				break
			}
		}
		if !isServiceDay {
			continue
		}

		seq++
		due := current
		task := model.NewTask(fmt.Sprintf("%s %s", tt.Name, model.FormatDate(current)), tt.Priority, sessionHours)
		task.Deadline = &due
		task.Description = fmt.Sprintf("由模板 %s 生成，编号 %s", tt.TemplateNo, generateTaskNo(current, seq))
		if len(tt.Tags) > 0 {
			task.Tags = append([]string{}, tt.Tags...)
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

// ValidateTemplate 验证任务模板，返回问题列表
func (m *Manager) ValidateTemplate(tt *model.TaskTemplate) []string {
	var problems []string

	if tt.Level < 1 || tt.Level > 6 {
		problems = append(problems, "强度等级无效")
	}

	if tt.WeeklyHours <= 0 {
		problems = append(problems, "每周工时必须大于0")
	}

	if tt.StartDate == "" {
		problems = append(problems, "开始日期不能为空")
	} else if _, err := model.ParseDate(tt.StartDate); err != nil {
		problems = append(problems, "开始日期格式错误")
	}

	switch tt.Frequency {
	case "weekly", "twice_weekly", "three_times_weekly", "daily":
	default:
		problems = append(problems, "频率无效")
	}

	return problems
}

// 辅助函数

func generateTemplateNo() string {
	return fmt.Sprintf("TT%s%04d", time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}

func generateTaskNo(date time.Time, seq int) string {
	return fmt.Sprintf("TK%s%03d", date.Format("20060102"), seq)
}

func levelPriority(level int) int {
	switch {
	case level >= 5:
		return 8
	case level >= 3:
		return 5
	default:
		return 3
	}
}

func calculateFrequency(weeklyHours float64) string {
	if weeklyHours <= 3 {
		return "weekly"
	} else if weeklyHours <= 7 {
		return "twice_weekly"
	} else if weeklyHours <= 14 {
		return "three_times_weekly"
	}
	return "daily"
}

func calculateSessionsPerWeek(weeklyHours float64) int {
	if weeklyHours <= 3 {
		return 1
	} else if weeklyHours <= 7 {
		return 2
	} else if weeklyHours <= 14 {
		return 3
	}
	return 5
}

func getServiceDays(sessionsPerWeek int) []int {
	switch sessionsPerWeek {
	case 1:
		return []int{3} // 周三
	case 2:
		return []int{2, 5} // 周二、周五
	case 3:
		return []int{1, 3, 5} // 周一、周三、周五
	default:
		return []int{1, 2, 3, 4, 5} // 工作日
	}
}
