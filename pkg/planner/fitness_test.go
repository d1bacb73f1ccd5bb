package planner

import (
	"testing"

	"github.com/paiqi/paiqi/pkg/model"
)

func TestFitnessBreakdown(t *testing.T) {
	// 两个任务：优先级 5 和 3，第二个逾期 2 天；每日工时 {2, 6}
	deadline := mustDate(t, "2026-03-03")
	plannedEnd := mustDate(t, "2026-03-05")

	first := model.NewTask("高优先", 5, 4)
	late := model.NewTask("逾期任务", 3, 4)
	late.Deadline = &deadline
	late.PlannedEnd = &plannedEnd

	scheduled := []*model.Task{first, late}
	allocations := map[string]float64{"2026-03-02": 2, "2026-03-03": 6}

	b := FitnessCalculator{}.Breakdown(scheduled, allocations, false)

	// priorityScore = 5*(2-0) + 3*(2-1) = 13
	if b.PriorityScore != 13 {
		t.Errorf("PriorityScore = %v, 期望 13", b.PriorityScore)
	}
	// 逾期 2 天 * 100
	if b.DeadlinePenalty != 200 {
		t.Errorf("DeadlinePenalty = %v, 期望 200", b.DeadlinePenalty)
	}
	// 方差({2,6}) = 4, 罚分 4*10
	if !closeTo(b.VariancePenalty, 40, 1e-9) {
		t.Errorf("VariancePenalty = %v, 期望 40", b.VariancePenalty)
	}
	if b.SchedulingBonus != 0 {
		t.Errorf("未开启奖励时 SchedulingBonus = %v", b.SchedulingBonus)
	}
	if want := 13.0 - 200 - 40; !closeTo(b.Total, want, 1e-9) {
		t.Errorf("Total = %v, 期望 %v", b.Total, want)
	}
}

func TestFitness_SchedulingBonus(t *testing.T) {
	tasks := []*model.Task{model.NewTask("甲", 1, 2), model.NewTask("乙", 1, 2)}

	without := FitnessCalculator{}.Calculate(tasks, nil, false)
	with := FitnessCalculator{}.Calculate(tasks, nil, true)
	if diff := with - without; !closeTo(diff, 100, 1e-9) {
		t.Errorf("两个任务的奖励差 = %v, 期望 2*50", diff)
	}
}

func TestFitness_MoreScheduledBeatsFewer(t *testing.T) {
	// 开启奖励时，排上更多任务的方案得分不应更低
	few := []*model.Task{model.NewTask("甲", 3, 2)}
	more := []*model.Task{model.NewTask("甲", 3, 2), model.NewTask("乙", 3, 2)}
	alloc := map[string]float64{"2026-03-02": 4}

	fewScore := FitnessCalculator{}.Calculate(few, alloc, true)
	moreScore := FitnessCalculator{}.Calculate(more, alloc, true)
	if moreScore <= fewScore {
		t.Errorf("多排任务 %v 应高于少排 %v", moreScore, fewScore)
	}
}

func TestDaysLate(t *testing.T) {
	deadline := mustDate(t, "2026-03-05")

	tests := []struct {
		name string
		end  string
		want int
	}{
		{name: "按期完成", end: "2026-03-04", want: 0},
		{name: "截止日当天完成不算逾期", end: "2026-03-05", want: 0},
		{name: "晚一天", end: "2026-03-06", want: 1},
		{name: "晚一周", end: "2026-03-12", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := model.NewTask("任务", 3, 4)
			tk.Deadline = &deadline
			end := mustDate(t, tt.end)
			tk.PlannedEnd = &end
			if got := daysLate(tk); got != tt.want {
				t.Errorf("daysLate = %d, 期望 %d", got, tt.want)
			}
		})
	}
}

func TestDaysLate_NoDeadline(t *testing.T) {
	tk := model.NewTask("无截止", 3, 4)
	end := mustDate(t, "2026-03-20")
	tk.PlannedEnd = &end
	if got := daysLate(tk); got != 0 {
		t.Errorf("无截止日期 daysLate = %d, 期望 0", got)
	}
}
