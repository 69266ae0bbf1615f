package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBenchmarkRaterLowerIsBetter(t *testing.T) {
	r := NewBenchmarkRater(DefaultPolicy().Benchmarks)

	tests := []struct {
		metric string
		value  float64
		rating string
		pct    float64
	}{
		{FeaturePickTime, 12, "excellent", 90},
		{FeaturePickTime, 20, "good", 70},
		{FeaturePickTime, 30, "average", 40},
		{FeaturePickTime, 30.1, "poor", 15},
		{MetricErrorRate, 0.05, "excellent", 90},
		{MetricErrorRate, 0.9, "poor", 15},
	}

	for _, tt := range tests {
		got := r.Rate(tt.metric, tt.value)
		assert.Equal(t, tt.rating, got.Rating, "%s=%v", tt.metric, tt.value)
		assert.Equal(t, tt.pct, got.PercentileEstimate, "%s=%v", tt.metric, tt.value)
	}
}

func TestBenchmarkRaterHigherIsBetter(t *testing.T) {
	r := NewBenchmarkRater(map[string]BenchmarkCutoffs{
		"score": {Excellent: 90, Good: 70, Poor: 40},
	})

	assert.Equal(t, "excellent", r.Rate("score", 95).Rating)
	assert.Equal(t, "good", r.Rate("score", 75).Rating)
	assert.Equal(t, "average", r.Rate("score", 50).Rating)
	assert.Equal(t, "poor", r.Rate("score", 20).Rating)
}

func TestBenchmarkRaterUnknownMetricDefaultsAverage(t *testing.T) {
	r := NewBenchmarkRater(DefaultPolicy().Benchmarks)

	got := r.Rate("unknown_metric", 123)
	assert.Equal(t, "average", got.Rating)
	assert.Equal(t, 40.0, got.PercentileEstimate)
}
