package biz

import (
	"testing"

	"supplysight/cmd/insight-service/internal/domain"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSimulation(t *testing.T) *SimulationUsecase {
	t.Helper()
	policy := DefaultPolicy()
	return NewSimulationUsecase(policy, NewScoringUsecase(policy, zap.NewNop()))
}

func baselineTable() domain.Table {
	return domain.Table{
		{Week: 1, PickTime: 15.0, PackTime: 10.0, DispatchDelay: 8.0, ErrorCount: 1},
	}
}

func TestSimulateZeroIncreaseIsNoop(t *testing.T) {
	uc := newTestSimulation(t)

	s, err := uc.Simulate(1, 0, baselineTable())
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.DeliveryDelta)
	assert.Equal(t, "moderate", s.RiskLevel)
	assert.InDelta(t, 65.65, s.DeliveryScore, 0.01)
}

func TestSimulatePackingUnaffectedByLoad(t *testing.T) {
	uc := newTestSimulation(t)

	base, err := uc.Simulate(1, 0, baselineTable())
	require.NoError(t, err)
	loaded, err := uc.Simulate(1, 80, baselineTable())
	require.NoError(t, err)

	assert.Equal(t, base.PackingScore, loaded.PackingScore)
	assert.Less(t, loaded.PickingScore, base.PickingScore)
	assert.Less(t, loaded.DispatchScore, base.DispatchScore)
}

func TestSimulateLoadIsMonotonic(t *testing.T) {
	uc := newTestSimulation(t)

	var prev float64 = 101
	for _, pct := range []float64{0, 25, 50, 100, 200} {
		s, err := uc.Simulate(1, pct, baselineTable())
		require.NoError(t, err)
		assert.Less(t, s.DeliveryScore, prev, "pct %v", pct)
		prev = s.DeliveryScore
	}
}

func TestSimulateDefaultLabel(t *testing.T) {
	uc := newTestSimulation(t)

	s, err := uc.Simulate(1, 50, baselineTable())
	require.NoError(t, err)
	assert.Equal(t, "+50% orders", s.Label)
}

func TestSimulateRangeBreakingPoint(t *testing.T) {
	uc := newTestSimulation(t)

	report, err := uc.SimulateRange(1, []float64{50, 100, 200}, baselineTable())
	require.NoError(t, err)

	require.Len(t, report.Scenarios, 3)
	assert.Equal(t, 1, report.BaseWeek)
	assert.InDelta(t, 65.65, report.BaselineDelivery, 0.01)

	// 场景顺序与输入一致
	assert.Equal(t, 50.0, report.Scenarios[0].OrderIncreasePct)
	assert.Equal(t, 200.0, report.Scenarios[2].OrderIncreasePct)

	// 200% 是首个跌破 40 的增幅
	require.NotNil(t, report.BreakingPointPct)
	assert.Equal(t, 200.0, *report.BreakingPointPct)
}

func TestSimulateRangeNoBreakingPoint(t *testing.T) {
	uc := newTestSimulation(t)

	report, err := uc.SimulateRange(1, []float64{10, 20}, baselineTable())
	require.NoError(t, err)
	assert.Nil(t, report.BreakingPointPct)
}

func TestStressTestIncrementSequence(t *testing.T) {
	uc := newTestSimulation(t)

	report, err := uc.StressTest(1, 50, 100, baselineTable())
	require.NoError(t, err)

	// step, 2*step, ... 直到 max+step
	require.Len(t, report.Scenarios, 3)
	assert.Equal(t, 50.0, report.Scenarios[0].OrderIncreasePct)
	assert.Equal(t, 100.0, report.Scenarios[1].OrderIncreasePct)
	assert.Equal(t, 150.0, report.Scenarios[2].OrderIncreasePct)
}

func TestStressTestRejectsNonPositiveRange(t *testing.T) {
	uc := newTestSimulation(t)

	// step <= 0 会让增幅序列无界，必须在循环前拒绝
	for _, args := range [][2]float64{{0, 100}, {-5, 100}, {10, 0}, {10, -1}} {
		_, err := uc.StressTest(1, args[0], args[1], baselineTable())
		require.Error(t, err, "step=%v max=%v", args[0], args[1])
		assert.Equal(t, domain.ReasonInvalidStressRange, kerrors.Reason(err))
	}
}

func TestSimulateWeekNotFound(t *testing.T) {
	uc := newTestSimulation(t)

	_, err := uc.Simulate(99, 10, baselineTable())
	assert.True(t, domain.IsWeekNotFound(err))
}

func TestRiskLevelBands(t *testing.T) {
	assert.Equal(t, "low", riskLevel(70))
	assert.Equal(t, "moderate", riskLevel(55))
	assert.Equal(t, "high", riskLevel(40))
	assert.Equal(t, "critical", riskLevel(39.9))
}
