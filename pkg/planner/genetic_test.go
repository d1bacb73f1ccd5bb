package planner

import (
	"math/rand"
	"testing"

	"github.com/paiqi/paiqi/pkg/model"
)

func TestGenetic_Deterministic(t *testing.T) {
	tasks := searchFixture(t)
	cfg := smallSearchConfig()

	run := func() *Context {
		pc := newTestContext(t, "2026-03-02", 8)
		pc.SetTasks(tasks)
		NewGenetic(9, 18, cfg).Run(pc, tasks)
		return pc
	}

	first := run().Allocations()
	second := run().Allocations()
	if len(first) != len(second) {
		t.Fatalf("两次运行容量表日期数不同: %d vs %d", len(first), len(second))
	}
	for d, h := range first {
		if second[d] != h {
			t.Errorf("日期 %s 两次运行分配不同: %v vs %v", d, h, second[d])
		}
	}
}

func TestGenetic_SchedulesAllWhenFeasible(t *testing.T) {
	tasks := searchFixture(t)
	pc := newTestContext(t, "2026-03-02", 8)
	pc.SetTasks(tasks)

	scheduled := NewGenetic(9, 18, smallSearchConfig()).Run(pc, tasks)
	if len(scheduled) != len(tasks) {
		t.Fatalf("成功 %d 个, 期望 %d 个, 失败: %+v", len(scheduled), len(tasks), pc.Failures())
	}
	for _, tk := range scheduled {
		if !closeTo(tk.AllocatedHours(), tk.EstimatedHours, 1e-9) {
			t.Errorf("任务 %s 分配 %v, 期望 %v", tk.Name, tk.AllocatedHours(), tk.EstimatedHours)
		}
	}
	for date, h := range pc.Allocations() {
		if h > 8+hoursEpsilon {
			t.Errorf("日期 %s 占用 %v 超上限", date, h)
		}
	}
}

func TestGenetic_EmptyInput(t *testing.T) {
	pc := newTestContext(t, "2026-03-02", 8)
	if got := NewGenetic(9, 18, smallSearchConfig()).Run(pc, nil); len(got) != 0 {
		t.Errorf("空输入应返回空结果, 实际 %d 个", len(got))
	}
}

func TestOrderCrossover_ValidPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p1 := []int{0, 1, 2, 3, 4, 5}
	p2 := []int{5, 4, 3, 2, 1, 0}

	for i := 0; i < 20; i++ {
		child := orderCrossover(p1, p2, rng)
		if len(child) != len(p1) {
			t.Fatalf("子代长度 = %d, 期望 %d", len(child), len(p1))
		}
		seen := make(map[int]bool, len(child))
		for _, gene := range child {
			if seen[gene] {
				t.Fatalf("子代出现重复基因 %d: %v", gene, child)
			}
			seen[gene] = true
		}
	}
}

func TestSwapMutate_KeepsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	order := []int{0, 1, 2, 3, 4}
	swapMutate(order, rng)

	seen := make(map[int]bool, len(order))
	for _, gene := range order {
		seen[gene] = true
	}
	if len(seen) != 5 {
		t.Errorf("变异后不再是合法排列: %v", order)
	}
}

func TestSelectByRoulette_NegativeFitness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pop := []individual{
		{order: []int{0}, fitness: -250},
		{order: []int{1}, fitness: -80},
		{order: []int{2}, fitness: 40},
	}
	for i := 0; i < 50; i++ {
		picked := selectByRoulette(pop, rng)
		if len(picked.order) != 1 {
			t.Fatal("轮盘赌应返回种群成员")
		}
	}
}

func TestNormalizedSearchConfig(t *testing.T) {
	var zero SearchConfig
	got := zero.normalized()
	def := DefaultSearchConfig()
	if got.PopulationSize != def.PopulationSize || got.Generations != def.Generations ||
		got.SampleCount != def.SampleCount {
		t.Errorf("零值配置应补成默认值: %+v", got)
	}

	custom := SearchConfig{PopulationSize: 6, Generations: 5, EliteCount: 1, CrossoverRate: 0.5, MutationRate: 0.3, SampleCount: 10, Seed: 9}
	if got := custom.normalized(); got != custom {
		t.Errorf("自定义配置不应被改写: %+v", got)
	}
}

// ---- 测试辅助 ----

// searchFixture 搜索类策略共用的小规模任务集
func searchFixture(t *testing.T) []*model.Task {
	t.Helper()
	near := mustDate(t, "2026-03-04")
	far := mustDate(t, "2026-03-12")

	a := model.NewTask("紧急修复", 8, 6)
	a.Deadline = &near
	b := model.NewTask("新功能", 5, 10)
	b.Deadline = &far
	c := model.NewTask("文档整理", 2, 4)
	d := model.NewTask("代码评审", 6, 3)
	d.Deadline = &far
	return []*model.Task{a, b, c, d}
}

func smallSearchConfig() SearchConfig {
	return SearchConfig{
		PopulationSize: 8,
		Generations:    6,
		EliteCount:     2,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
		SampleCount:    40,
		Seed:           7,
	}
}
