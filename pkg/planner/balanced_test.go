package planner

import (
	"testing"

	"github.com/paiqi/paiqi/pkg/model"
)

func TestBalanced_SpreadsEvenly(t *testing.T) {
	// 12 小时、周四截止：周一到周四每天 3 小时，而不是前两天塞满
	pc := newTestContext(t, "2026-03-02", 8)
	b := NewBalanced(9, 18)

	deadline := mustDate(t, "2026-03-05")
	tk := model.NewTask("匀速推进", 5, 12)
	tk.Deadline = &deadline

	scheduled := b.Run(pc, []*model.Task{tk})
	if len(scheduled) != 1 {
		t.Fatalf("排期失败: %+v", pc.Failures())
	}
	for _, date := range []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05"} {
		if got := scheduled[0].DailyAllocations[date]; !closeTo(got, 3, 1e-9) {
			t.Errorf("%s = %v, 期望 3", date, got)
		}
	}
}

func TestBalanced_NoDeadlineFallsBackToGreedy(t *testing.T) {
	pc := newTestContext(t, "2026-03-02", 8)
	b := NewBalanced(9, 18)

	scheduled := b.Run(pc, []*model.Task{model.NewTask("无截止", 5, 12)})
	if len(scheduled) != 1 {
		t.Fatalf("排期失败: %+v", pc.Failures())
	}
	tk := scheduled[0]
	if tk.DailyAllocations["2026-03-02"] != 8 || tk.DailyAllocations["2026-03-03"] != 4 {
		t.Errorf("无截止日期应退化为贪心: %v", tk.DailyAllocations)
	}
}

func TestBalanced_SqueezesAroundExistingLoad(t *testing.T) {
	// 周一已被占去 6 小时，均摊额度装不下时按可用容量缩减，
	// 其余工时顺延到后面几天重新平摊
	pc := newTestContext(t, "2026-03-02", 8)
	pc.allocations["2026-03-02"] = 6
	b := NewBalanced(9, 18)

	deadline := mustDate(t, "2026-03-05")
	tk := model.NewTask("见缝插针", 5, 12)
	tk.Deadline = &deadline

	scheduled := b.Run(pc, []*model.Task{tk})
	if len(scheduled) != 1 {
		t.Fatalf("排期失败: %+v", pc.Failures())
	}
	placed := scheduled[0]
	if got := placed.DailyAllocations["2026-03-02"]; !closeTo(got, 2, 1e-9) {
		t.Errorf("周一 = %v, 期望只占剩余的 2", got)
	}
	if !closeTo(placed.AllocatedHours(), 12, 1e-9) {
		t.Errorf("分配总和 = %v, 期望 12", placed.AllocatedHours())
	}
	if got := pc.Committed("2026-03-02"); got > 8+hoursEpsilon {
		t.Errorf("周一总占用 %v 超上限", got)
	}
}
