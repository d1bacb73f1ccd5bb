package planner

import (
	"testing"

	apperrors "github.com/paiqi/paiqi/pkg/errors"
)

var allKindNames = []string{
	"greedy", "balanced", "backward", "priority_first", "earliest_deadline",
	"round_robin", "dependency_aware", "genetic", "monte_carlo",
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, name := range allKindNames {
		kind, err := ParseKind(name)
		if err != nil {
			t.Errorf("ParseKind(%s) 报错: %v", name, err)
			continue
		}
		if kind.String() != name {
			t.Errorf("Kind.String() = %s, 期望 %s", kind.String(), name)
		}
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, err := ParseKind("quantum")
	if err == nil {
		t.Fatal("未知算法应报错")
	}
	if !apperrors.Is(err, apperrors.CodeUnknownAlgorithm) {
		t.Errorf("错误码 = %v, 期望 UNKNOWN_ALGORITHM", apperrors.GetCode(err))
	}
}

func TestAlgorithms_CoversAllKinds(t *testing.T) {
	infos := Algorithms()
	if len(infos) != len(allKindNames) {
		t.Fatalf("算法元信息 %d 条, 期望 %d", len(infos), len(allKindNames))
	}
	for i, info := range infos {
		if info.ID != allKindNames[i] {
			t.Errorf("第 %d 条 ID = %s, 期望 %s", i, info.ID, allKindNames[i])
		}
		if info.DisplayName == "" || info.Description == "" {
			t.Errorf("算法 %s 缺少展示名或描述", info.ID)
		}
	}
}

func TestNewStrategy_NamesMatch(t *testing.T) {
	cfg := DefaultSearchConfig()
	for _, name := range allKindNames {
		kind, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%s): %v", name, err)
		}
		strat := newStrategy(kind, 9, 18, cfg)
		if strat.Name() != name {
			t.Errorf("策略 %s 的 Name() = %s", name, strat.Name())
		}
	}
}
