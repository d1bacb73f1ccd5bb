// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/errors"
	"github.com/paiqi/paiqi/pkg/model"
)

// Kind 排期算法类型。封闭枚举：增删算法必须同时修改
// ParseKind、newStrategy 与 Algorithms，编译期即可发现遗漏。
type Kind int

const (
	KindGreedy Kind = iota
	KindBalanced
	KindBackward
	KindPriorityFirst
	KindEarliestDeadline
	KindRoundRobin
	KindDependencyAware
	KindGenetic
	KindMonteCarlo
)

// String 返回算法标识
func (k Kind) String() string {
	switch k {
	case KindGreedy:
		return "greedy"
	case KindBalanced:
		return "balanced"
	case KindBackward:
		return "backward"
	case KindPriorityFirst:
		return "priority_first"
	case KindEarliestDeadline:
		return "earliest_deadline"
	case KindRoundRobin:
		return "round_robin"
	case KindDependencyAware:
		return "dependency_aware"
	case KindGenetic:
		return "genetic"
	case KindMonteCarlo:
		return "monte_carlo"
	}
	return "unknown"
}

// ParseKind 解析算法标识。未知标识在任何分配开始前立刻报错。
func ParseKind(name string) (Kind, error) {
	switch name {
	case "greedy":
		return KindGreedy, nil
	case "balanced":
		return KindBalanced, nil
	case "backward":
		return KindBackward, nil
	case "priority_first":
		return KindPriorityFirst, nil
	case "earliest_deadline":
		return KindEarliestDeadline, nil
	case "round_robin":
		return KindRoundRobin, nil
	case "dependency_aware":
		return KindDependencyAware, nil
	case "genetic":
		return KindGenetic, nil
	case "monte_carlo":
		return KindMonteCarlo, nil
	}
	return 0, errors.UnknownAlgorithm(name)
}

// AlgorithmInfo 算法元信息（供界面展示）
type AlgorithmInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// Algorithms 返回全部可用算法的静态元信息
func Algorithms() []AlgorithmInfo {
	return []AlgorithmInfo{
		{ID: "greedy", DisplayName: "贪心排期", Description: "从开始日期向后逐日填满容量，任务尽早完成"},
		{ID: "balanced", DisplayName: "均衡排期", Description: "在截止日期前把任务工时均匀摊到各个工作日"},
		{ID: "backward", DisplayName: "倒排排期", Description: "从截止日期向前倒排，任务尽可能晚开始（Just-in-Time）"},
		{ID: "priority_first", DisplayName: "优先级优先", Description: "只按优先级从高到低依次贪心排期，忽略截止日期顺序"},
		{ID: "earliest_deadline", DisplayName: "最早截止优先", Description: "只按截止日期从早到晚依次贪心排期，忽略优先级"},
		{ID: "round_robin", DisplayName: "轮转排期", Description: "多任务轮流领取时间片，交替推进"},
		{ID: "dependency_aware", DisplayName: "依赖感知排期", Description: "按拓扑顺序排期，任务开始不早于其依赖的计划结束"},
		{ID: "genetic", DisplayName: "遗传算法", Description: "对任务顺序做交叉变异搜索，保留适应度最高的方案"},
		{ID: "monte_carlo", DisplayName: "蒙特卡洛", Description: "对任务顺序随机采样若干方案，保留适应度最高的一个"},
	}
}

// Strategy 排期策略。Run 在给定上下文上为任务集合分配工时，
// 返回成功排期的任务副本，失败记入上下文的失败列表。
type Strategy interface {
	// Name 返回策略名称
	Name() string

	// Run 执行排期
	Run(pc *Context, tasks []*model.Task) []*model.Task
}

// newStrategy 按算法类型创建策略实例。穷举所有枚举值。
func newStrategy(kind Kind, startHour, endHour int, cfg SearchConfig) Strategy {
	switch kind {
	case KindGreedy:
		return NewGreedy(startHour, endHour)
	case KindBalanced:
		return NewBalanced(startHour, endHour)
	case KindBackward:
		return NewBackward(startHour, endHour)
	case KindPriorityFirst:
		return NewPriorityFirst(startHour, endHour)
	case KindEarliestDeadline:
		return NewEarliestDeadline(startHour, endHour)
	case KindRoundRobin:
		return NewRoundRobin(startHour, endHour)
	case KindDependencyAware:
		return NewDependencyAware(startHour, endHour)
	case KindGenetic:
		return NewGenetic(startHour, endHour, cfg)
	case KindMonteCarlo:
		return NewMonteCarlo(startHour, endHour, cfg)
	}
	// ParseKind 保证不会出现未知类型
	return NewGreedy(startHour, endHour)
}

// sortFunc 策略专属的任务排序
type sortFunc func(tasks []*model.Task, startDate time.Time) []*model.Task

// allocFunc 策略专属的单任务分配
type allocFunc func(pc *Context, t *model.Task) (*model.Task, error)

// runSequential 模板流程：排序 -> 逐任务分配 -> 失败记录。
// 成功的任务副本同时更新到上下文索引，供后续任务的依赖检查读取。
func runSequential(pc *Context, tasks []*model.Task, sorter sortFunc, alloc allocFunc) []*model.Task {
	sorted := sorter(tasks, pc.StartDate)

	scheduled := make([]*model.Task, 0, len(sorted))
	for _, t := range sorted {
		placed, err := alloc(pc, t)
		if err != nil {
			pc.RecordFailure(t, err.Error())
			continue
		}
		pc.UpdateTask(placed)
		scheduled = append(scheduled, placed)
	}
	return scheduled
}
