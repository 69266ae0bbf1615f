package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForecaster() *Forecaster {
	return NewForecaster(map[string]bool{
		FeaturePickTime: true,
	})
}

func TestForecastNeedsAtLeastThreePoints(t *testing.T) {
	f := newTestForecaster()

	assert.Nil(t, f.Forecast(nil, FeaturePickTime))
	assert.Nil(t, f.Forecast([]float64{10}, FeaturePickTime))
	assert.Nil(t, f.Forecast([]float64{10, 12}, FeaturePickTime))
	assert.NotNil(t, f.Forecast([]float64{10, 12, 14}, FeaturePickTime))
}

func TestForecastCollinearSeries(t *testing.T) {
	f := newTestForecaster()

	got := f.Forecast([]float64{10, 12, 14}, FeaturePickTime)
	require.NotNil(t, got)

	assert.Equal(t, 16.0, got.NextWeekValue)
	assert.Equal(t, 2.0, got.Slope)
	assert.Equal(t, 1.0, got.RSquared)
	assert.Equal(t, "high", got.Confidence)
	// 耗时上升是恶化
	assert.Equal(t, "degrading", got.Trend)
}

func TestForecastStableWithinSlopeBand(t *testing.T) {
	f := newTestForecaster()

	got := f.Forecast([]float64{10, 10.2, 9.9}, FeaturePickTime)
	require.NotNil(t, got)
	assert.Equal(t, "stable", got.Trend)
}

func TestForecastTrendPolarity(t *testing.T) {
	f := NewForecaster(map[string]bool{
		"duration": true,
		"score":    false,
	})

	rising := []float64{10, 12, 14}
	falling := []float64{14, 12, 10}

	assert.Equal(t, "degrading", f.Forecast(rising, "duration").Trend)
	assert.Equal(t, "improving", f.Forecast(falling, "duration").Trend)
	assert.Equal(t, "improving", f.Forecast(rising, "score").Trend)
	assert.Equal(t, "degrading", f.Forecast(falling, "score").Trend)
}

func TestForecastConstantSeries(t *testing.T) {
	f := newTestForecaster()

	got := f.Forecast([]float64{10, 10, 10}, FeaturePickTime)
	require.NotNil(t, got)
	assert.Equal(t, 10.0, got.NextWeekValue)
	assert.Equal(t, 0.0, got.Slope)
	assert.Equal(t, 0.0, got.RSquared)
	assert.Equal(t, "stable", got.Trend)
	assert.Equal(t, "low", got.Confidence)
}

func TestForecastConfidenceBands(t *testing.T) {
	f := newTestForecaster()

	// 噪声大、趋势弱的序列置信度不应为 high
	got := f.Forecast([]float64{10, 18, 9, 17, 11}, FeaturePickTime)
	require.NotNil(t, got)
	assert.NotEqual(t, "high", got.Confidence)
}
