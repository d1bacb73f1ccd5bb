package planner

import (
	"math/rand"
	"sort"

	"github.com/paiqi/paiqi/pkg/model"
)

// SearchConfig 搜索类策略（遗传、蒙特卡洛）的运行参数。
// 固定 Seed 时同一输入的两次运行结果完全一致。
type SearchConfig struct {
	PopulationSize int     // 种群规模
	Generations    int     // 迭代代数
	EliteCount     int     // 每代直接保留的精英个体数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	SampleCount    int     // 蒙特卡洛采样次数
	Seed           int64   // 随机种子
}

// DefaultSearchConfig 默认搜索参数
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		PopulationSize: 20,
		Generations:    40,
		EliteCount:     2,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		SampleCount:    200,
		Seed:           1,
	}
}

// normalized 把零值字段补成默认值，保证策略内部参数总是可用
func (c SearchConfig) normalized() SearchConfig {
	def := DefaultSearchConfig()
	if c.PopulationSize < 2 {
		c.PopulationSize = def.PopulationSize
	}
	if c.Generations <= 0 {
		c.Generations = def.Generations
	}
	if c.EliteCount <= 0 {
		c.EliteCount = def.EliteCount
	}
	if c.CrossoverRate <= 0 {
		c.CrossoverRate = def.CrossoverRate
	}
	if c.MutationRate <= 0 {
		c.MutationRate = def.MutationRate
	}
	if c.SampleCount <= 0 {
		c.SampleCount = def.SampleCount
	}
	return c
}

// Genetic 遗传算法策略：染色体是任务的排期顺序（索引排列），
// 解码时按该顺序做贪心前向分配，用适应度评分进化若干代，
// 最后把最优顺序在真实上下文上重放得出结果。
type Genetic struct {
	startHour int
	endHour   int
	cfg       SearchConfig
}

func NewGenetic(startHour, endHour int, cfg SearchConfig) *Genetic {
	return &Genetic{startHour: startHour, endHour: endHour, cfg: cfg.normalized()}
}

func (g *Genetic) Name() string { return "genetic" }

// individual 种群个体：一个任务顺序及其适应度
type individual struct {
	order   []int
	fitness float64
}

func (g *Genetic) Run(pc *Context, tasks []*model.Task) []*model.Task {
	if len(tasks) == 0 {
		return nil
	}
	base := SortByUrgency(tasks, pc.StartDate)
	rng := rand.New(rand.NewSource(g.cfg.Seed))

	// 初始种群：保留一个紧迫度顺序的个体作基准，其余随机打乱
	pop := make([]individual, 0, g.cfg.PopulationSize)
	for i := 0; i < g.cfg.PopulationSize; i++ {
		order := identityOrder(len(base))
		if i > 0 {
			rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		}
		pop = append(pop, individual{order: order, fitness: g.evaluate(pc, base, order)})
	}
	sortByFitness(pop)

	for gen := 0; gen < g.cfg.Generations; gen++ {
		next := make([]individual, 0, len(pop))
		for i := 0; i < g.cfg.EliteCount && i < len(pop); i++ {
			next = append(next, individual{order: cloneOrder(pop[i].order), fitness: pop[i].fitness})
		}
		for len(next) < len(pop) {
			p1 := selectByRoulette(pop, rng)
			p2 := selectByRoulette(pop, rng)
			child := individual{order: cloneOrder(p1.order)}
			if rng.Float64() < g.cfg.CrossoverRate {
				child.order = orderCrossover(p1.order, p2.order, rng)
			}
			if rng.Float64() < g.cfg.MutationRate {
				swapMutate(child.order, rng)
			}
			child.fitness = g.evaluate(pc, base, child.order)
			next = append(next, child)
		}
		pop = next
		sortByFitness(pop)
	}

	return decodeSchedule(pc, base, pop[0].order, nil, g.startHour, g.endHour)
}

// evaluate 在上下文副本上试算一个顺序的适应度，不影响真实容量表
func (g *Genetic) evaluate(pc *Context, base []*model.Task, order []int) float64 {
	trial := pc.CloneForTrial()
	scheduled := decodeSchedule(trial, base, order, nil, g.startHour, g.endHour)
	return FitnessCalculator{}.Calculate(scheduled, trial.Allocations(), true)
}

// decodeSchedule 按给定顺序在上下文上执行一轮贪心前向分配。
// offsets 是每个位置的起始日偏移（可为 nil），供蒙特卡洛做随机扰动。
// 失败任务记录到所给上下文的失败列表。
func decodeSchedule(pc *Context, base []*model.Task, order []int, offsets []int, startHour, endHour int) []*model.Task {
	scheduled := make([]*model.Task, 0, len(order))
	for pos, idx := range order {
		t := base[idx]
		cursor := pc.StartDate
		if offsets != nil && offsets[pos] > 0 {
			cursor = cursor.AddDate(0, 0, offsets[pos])
		}
		placed, err := allocateForward(pc, t, allocOptions{
			cursor:    cursor,
			deadline:  pc.EffectiveDeadline(t),
			startHour: startHour,
			endHour:   endHour,
		})
		if err != nil {
			pc.RecordFailure(t, err.Error())
			continue
		}
		pc.UpdateTask(placed)
		scheduled = append(scheduled, placed)
	}
	return scheduled
}

// selectByRoulette 轮盘赌选择。适应度可能为负，
// 先整体平移到正区间再按占比选择。
func selectByRoulette(pop []individual, rng *rand.Rand) individual {
	minFit := pop[0].fitness
	for _, ind := range pop[1:] {
		if ind.fitness < minFit {
			minFit = ind.fitness
		}
	}
	total := 0.0
	for _, ind := range pop {
		total += ind.fitness - minFit + 1
	}
	r := rng.Float64() * total
	acc := 0.0
	for _, ind := range pop {
		acc += ind.fitness - minFit + 1
		if r <= acc {
			return ind
		}
	}
	return pop[len(pop)-1]
}

// orderCrossover 顺序交叉：保留 p1 的前段，
// 其余基因按它们在 p2 中的相对顺序补齐，结果仍是合法排列
func orderCrossover(p1, p2 []int, rng *rand.Rand) []int {
	n := len(p1)
	if n < 2 {
		return cloneOrder(p1)
	}
	cut := 1 + rng.Intn(n-1)
	child := make([]int, 0, n)
	child = append(child, p1[:cut]...)
	used := make(map[int]bool, cut)
	for _, gene := range child {
		used[gene] = true
	}
	for _, gene := range p2 {
		if !used[gene] {
			child = append(child, gene)
		}
	}
	return child
}

// swapMutate 变异：随机交换两个位置
func swapMutate(order []int, rng *rand.Rand) {
	n := len(order)
	if n < 2 {
		return
	}
	i, j := rng.Intn(n), rng.Intn(n)
	order[i], order[j] = order[j], order[i]
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func cloneOrder(order []int) []int {
	out := make([]int, len(order))
	copy(out, order)
	return out
}

// sortByFitness 适应度降序，平分时保持相对顺序以确保结果确定
func sortByFitness(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness > pop[j].fitness
	})
}
