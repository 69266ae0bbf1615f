package biz

import (
	"testing"

	"supplysight/cmd/insight-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// degradationTable week 2 全面恶化
func degradationTable() domain.Table {
	return domain.Table{
		{Week: 1, PickTime: 15.0, PackTime: 10.0, DispatchDelay: 8.0, ErrorCount: 1},
		{Week: 2, PickTime: 25.0, PackTime: 22.0, DispatchDelay: 20.0, ErrorCount: 2},
	}
}

func newTestRootCause(t *testing.T) *RootCauseUsecase {
	t.Helper()
	policy := DefaultPolicy()
	return NewRootCauseUsecase(policy, NewScoringUsecase(policy, zap.NewNop()))
}

func TestAnalyzeTotalDropIdentity(t *testing.T) {
	uc := newTestRootCause(t)

	report, err := uc.Analyze(2, 1, degradationTable())
	require.NoError(t, err)

	assert.Equal(t, round2(report.PreviousScore-report.CurrentScore), report.TotalDrop)

	// 加权贡献之和应与综合分变化对账（各分项独立舍入，留容差）
	var impactSum float64
	for _, d := range report.Drivers {
		impactSum += d.WeightedImpact
	}
	assert.InDelta(t, -report.TotalDrop, impactSum, 0.05)
}

func TestAnalyzeMainDriver(t *testing.T) {
	uc := newTestRootCause(t)

	report, err := uc.Analyze(2, 1, degradationTable())
	require.NoError(t, err)

	// 贡献升序，首位即主因
	require.Len(t, report.Drivers, 3)
	assert.Equal(t, report.Drivers[0].Metric, report.MainDriver)
	assert.Equal(t, MetricPickingScore, report.MainDriver)
	for i := 1; i < len(report.Drivers); i++ {
		assert.LessOrEqual(t, report.Drivers[i-1].WeightedImpact, report.Drivers[i].WeightedImpact)
	}
}

func TestAnalyzeVerdictSeverity(t *testing.T) {
	uc := newTestRootCause(t)

	report, err := uc.Analyze(2, 1, degradationTable())
	require.NoError(t, err)
	assert.Greater(t, report.TotalDrop, 15.0)
	assert.Contains(t, report.Verdict, "critically")
	assert.Contains(t, report.Verdict, "Picking")
}

func TestAnalyzeImprovementVerdict(t *testing.T) {
	uc := newTestRootCause(t)

	// 反向对比：week 1 相对 week 2 是改善
	report, err := uc.Analyze(1, 2, degradationTable())
	require.NoError(t, err)
	assert.LessOrEqual(t, report.TotalDrop, 0.0)
	assert.Equal(t, "Performance improved week-over-week. No corrective action required.", report.Verdict)
}

func TestAnalyzeHighErrorRateNote(t *testing.T) {
	uc := newTestRootCause(t)
	table := domain.Table{
		{Week: 1, PickTime: 15.0, PackTime: 10.0, DispatchDelay: 8.0, ErrorCount: 0},
		{Week: 2, PickTime: 25.0, PackTime: 22.0, DispatchDelay: 20.0, ErrorCount: 3},
	}

	report, err := uc.Analyze(2, 1, table)
	require.NoError(t, err)
	assert.Contains(t, report.Verdict, "High error rate")
}

func TestAnalyzeWeekNotFound(t *testing.T) {
	uc := newTestRootCause(t)

	_, err := uc.Analyze(99, 1, degradationTable())
	assert.True(t, domain.IsWeekNotFound(err))

	_, err = uc.Analyze(2, 99, degradationTable())
	assert.True(t, domain.IsWeekNotFound(err))
}

func TestMultiWeekChainsComparisons(t *testing.T) {
	uc := newTestRootCause(t)
	table := append(degradationTable(), domain.Record{
		Week: 3, PickTime: 18.0, PackTime: 13.0, DispatchDelay: 11.0, ErrorCount: 1,
	})

	reports, err := uc.MultiWeek([]int{1, 2, 3}, table)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, 2, reports[0].CurrentWeek)
	assert.Equal(t, 1, reports[0].PreviousWeek)
	assert.Equal(t, 3, reports[1].CurrentWeek)
	assert.Equal(t, 2, reports[1].PreviousWeek)
}
