package service

import (
	"context"
	"testing"
	"time"

	"supplysight/cmd/insight-service/internal/biz"
	"supplysight/cmd/insight-service/internal/domain"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNarrative struct{}

func (stubNarrative) Analyze(ctx context.Context, digest string) (*domain.InsightResult, error) {
	return &domain.InsightResult{Status: "Normal", Summary: "ok"}, nil
}

func newService(t *testing.T, table domain.Table) *InsightService {
	t.Helper()
	logger := zap.NewNop()
	policy := biz.DefaultPolicy()
	scoring := biz.NewScoringUsecase(policy, logger)
	rootCause := biz.NewRootCauseUsecase(policy, scoring)
	anomaly := biz.NewAnomalyUsecase(policy, biz.DefaultDetectorConfig(), logger)
	simulation := biz.NewSimulationUsecase(policy, scoring)
	insight := biz.NewInsightUsecase(scoring, rootCause, anomaly, stubNarrative{}, nil, time.Minute, logger)
	return NewInsightService(table, scoring, rootCause, anomaly, simulation, insight, logger)
}

func twoWeekTable() domain.Table {
	return domain.Table{
		{Week: 1, PickTime: 15.0, PackTime: 10.0, DispatchDelay: 8.0, ErrorCount: 1},
		{Week: 2, PickTime: 18.0, PackTime: 13.0, DispatchDelay: 11.0, ErrorCount: 2},
	}
}

func TestHealthReportsLoadState(t *testing.T) {
	svc := newService(t, twoWeekTable())

	h := svc.Health()
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 2, h.WeeksLoaded)
	assert.Equal(t, 2, h.TotalRecords)
	assert.False(t, h.LoadedAt.IsZero())
}

func TestWeeksSorted(t *testing.T) {
	svc := newService(t, twoWeekTable())

	weeks, err := svc.Weeks()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, weeks)
}

func TestEmptyTableReportsDataNotLoaded(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Weeks()
	require.Error(t, err)
	assert.Equal(t, domain.ReasonDataNotLoaded, kerrors.Reason(err))

	_, err = svc.WeekMetrics(1)
	assert.Equal(t, domain.ReasonDataNotLoaded, kerrors.Reason(err))

	_, err = svc.Anomalies(nil, 0)
	assert.Equal(t, domain.ReasonDataNotLoaded, kerrors.Reason(err))
}

func TestWeekValidationPropagates(t *testing.T) {
	svc := newService(t, twoWeekTable())

	_, err := svc.WeekMetrics(99)
	assert.True(t, domain.IsWeekNotFound(err))

	_, err = svc.Simulate(99, 10)
	assert.True(t, domain.IsWeekNotFound(err))

	_, err = svc.RootCause(99, 1)
	assert.True(t, domain.IsWeekNotFound(err))

	_, err = svc.MultiWeekRootCause([]int{1, 99})
	assert.True(t, domain.IsWeekNotFound(err))
}

func TestRootCauseSameWeek(t *testing.T) {
	svc := newService(t, twoWeekTable())

	_, err := svc.RootCause(1, 1)
	require.Error(t, err)
	assert.Equal(t, domain.ReasonSameWeek, kerrors.Reason(err))

	_, err = svc.Insights(context.Background(), 1, 1)
	assert.Equal(t, domain.ReasonSameWeek, kerrors.Reason(err))
}

func TestInsightsHappyPath(t *testing.T) {
	svc := newService(t, twoWeekTable())

	got, err := svc.Insights(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "Normal", got.Status)
}
