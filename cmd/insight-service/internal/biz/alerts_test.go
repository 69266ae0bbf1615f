package biz

import (
	"testing"

	"supplysight/cmd/insight-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertGeneratorLevels(t *testing.T) {
	g := NewAlertGenerator(DefaultPolicy().AlertThresholds)

	tests := []struct {
		name   string
		values map[string]float64
		metric string
		level  domain.AlertLevel
	}{
		{"delivery critical at boundary", map[string]float64{MetricDeliveryScore: 40}, MetricDeliveryScore, domain.AlertLevelCritical},
		{"delivery warning at boundary", map[string]float64{MetricDeliveryScore: 60}, MetricDeliveryScore, domain.AlertLevelWarning},
		{"error rate warning at boundary", map[string]float64{MetricErrorRate: 0.3}, MetricErrorRate, domain.AlertLevelWarning},
		{"error rate critical at boundary", map[string]float64{MetricErrorRate: 0.5}, MetricErrorRate, domain.AlertLevelCritical},
		{"picking critical", map[string]float64{MetricPickingScore: 30}, MetricPickingScore, domain.AlertLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := g.Generate(tt.values)
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.metric, alerts[0].Metric)
			assert.Equal(t, tt.level, alerts[0].Level)
			assert.NotEmpty(t, alerts[0].Message)
		})
	}
}

func TestAlertGeneratorNoAlertAboveThresholds(t *testing.T) {
	g := NewAlertGenerator(DefaultPolicy().AlertThresholds)

	alerts := g.Generate(map[string]float64{
		MetricDeliveryScore: 80,
		MetricErrorRate:     0.1,
		MetricPickingScore:  70,
		MetricPackingScore:  70,
		MetricDispatchScore: 70,
	})
	assert.Empty(t, alerts)
}

func TestAlertGeneratorOutputOrder(t *testing.T) {
	g := NewAlertGenerator(DefaultPolicy().AlertThresholds)

	alerts := g.Generate(map[string]float64{
		MetricDispatchScore: 20,
		MetricDeliveryScore: 30,
		MetricErrorRate:     0.9,
		MetricPickingScore:  20,
		MetricPackingScore:  20,
	})
	require.Len(t, alerts, 5)

	// 输出顺序跟随阈值声明顺序，与输入 map 无关
	want := []string{
		MetricDeliveryScore,
		MetricErrorRate,
		MetricPickingScore,
		MetricPackingScore,
		MetricDispatchScore,
	}
	for i, metric := range want {
		assert.Equal(t, metric, alerts[i].Metric)
	}
}

func TestAlertGeneratorSkipsMissingMetrics(t *testing.T) {
	g := NewAlertGenerator(DefaultPolicy().AlertThresholds)

	alerts := g.Generate(map[string]float64{MetricDeliveryScore: 30})
	require.Len(t, alerts, 1)
	assert.Equal(t, MetricDeliveryScore, alerts[0].Metric)
}

func TestMetricTitle(t *testing.T) {
	assert.Equal(t, "Delivery Score", metricTitle("delivery_score"))
	assert.Equal(t, "Error Rate", metricTitle("error_rate"))
}
