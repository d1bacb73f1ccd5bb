package planner

import (
	"math/rand"

	"github.com/paiqi/paiqi/pkg/model"
)

const (
	// mcMaxOffsetDays 随机起始日偏移的上限（天）
	mcMaxOffsetDays = 3
	// mcPerturbProb 单个任务被施加偏移的概率
	mcPerturbProb = 0.3
)

// MonteCarlo 蒙特卡洛策略：随机采样若干候选方案
// （随机任务顺序加小幅起始日偏移），逐个评分保留最优，
// 最后把最优方案在真实上下文上重放。
// 同分不换，保证固定种子下结果确定。
type MonteCarlo struct {
	startHour int
	endHour   int
	cfg       SearchConfig
}

func NewMonteCarlo(startHour, endHour int, cfg SearchConfig) *MonteCarlo {
	return &MonteCarlo{startHour: startHour, endHour: endHour, cfg: cfg.normalized()}
}

func (m *MonteCarlo) Name() string { return "monte_carlo" }

func (m *MonteCarlo) Run(pc *Context, tasks []*model.Task) []*model.Task {
	if len(tasks) == 0 {
		return nil
	}
	base := SortByUrgency(tasks, pc.StartDate)
	rng := rand.New(rand.NewSource(m.cfg.Seed))

	// 第一个样本固定为紧迫度顺序、零偏移，作为基准下界
	bestOrder := identityOrder(len(base))
	bestOffsets := make([]int, len(base))
	bestFit := m.evaluate(pc, base, bestOrder, bestOffsets)

	for i := 1; i < m.cfg.SampleCount; i++ {
		order := identityOrder(len(base))
		rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		offsets := make([]int, len(base))
		for p := range offsets {
			if rng.Float64() < mcPerturbProb {
				offsets[p] = rng.Intn(mcMaxOffsetDays + 1)
			}
		}
		if fit := m.evaluate(pc, base, order, offsets); fit > bestFit {
			bestFit = fit
			bestOrder = order
			bestOffsets = offsets
		}
	}

	return decodeSchedule(pc, base, bestOrder, bestOffsets, m.startHour, m.endHour)
}

func (m *MonteCarlo) evaluate(pc *Context, base []*model.Task, order, offsets []int) float64 {
	trial := pc.CloneForTrial()
	scheduled := decodeSchedule(trial, base, order, offsets, m.startHour, m.endHour)
	return FitnessCalculator{}.Calculate(scheduled, trial.Allocations(), true)
}
