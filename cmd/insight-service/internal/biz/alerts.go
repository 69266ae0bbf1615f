package biz

import (
	"fmt"
	"strings"

	"supplysight/cmd/insight-service/internal/domain"
)

// AlertGenerator 按静态阈值生成分级告警
type AlertGenerator struct {
	thresholds []AlertThreshold
}

// NewAlertGenerator 创建告警生成器
func NewAlertGenerator(thresholds []AlertThreshold) *AlertGenerator {
	return &AlertGenerator{thresholds: thresholds}
}

// Generate 对输入指标逐一比对阈值，输出顺序与阈值声明顺序一致。
// critical 优先于 warning；输入中缺失的指标直接跳过。
func (g *AlertGenerator) Generate(values map[string]float64) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(g.thresholds))
	for _, t := range g.thresholds {
		value, ok := values[t.Metric]
		if !ok {
			continue
		}

		var level domain.AlertLevel
		if t.LowerIsBetter {
			// error_rate 一类：数值越高越差
			switch {
			case value >= t.Critical:
				level = domain.AlertLevelCritical
			case value >= t.Warning:
				level = domain.AlertLevelWarning
			}
		} else {
			switch {
			case value <= t.Critical:
				level = domain.AlertLevelCritical
			case value <= t.Warning:
				level = domain.AlertLevelWarning
			}
		}
		if level == "" {
			continue
		}

		threshold := t.Warning
		if level == domain.AlertLevelCritical {
			threshold = t.Critical
		}
		direction := "below"
		if t.LowerIsBetter {
			direction = "above"
		}

		alerts = append(alerts, domain.Alert{
			Metric:    t.Metric,
			Level:     level,
			Value:     round2(value),
			Threshold: threshold,
			Message: fmt.Sprintf("%s is %s: %.2f (%s threshold of %v)",
				metricTitle(t.Metric), strings.ToUpper(string(level)), value, direction, threshold),
		})
	}
	return alerts
}

// metricTitle 指标名转标题格式，如 delivery_score -> Delivery Score
func metricTitle(metric string) string {
	words := strings.Split(metric, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
