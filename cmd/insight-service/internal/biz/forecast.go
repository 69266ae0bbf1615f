package biz

import (
	"math"

	"supplysight/cmd/insight-service/internal/domain"
)

// 趋势判定：|slope| 在该带宽内视为稳定
const stableSlopeBand = 0.5

// Forecaster 对按周聚合后的历史序列做一元线性回归预测
type Forecaster struct {
	// lowerIsBetter 记录各指标的好坏方向，趋势标签随之翻转
	lowerIsBetter map[string]bool
}

// NewForecaster 创建预测器
func NewForecaster(lowerIsBetter map[string]bool) *Forecaster {
	return &Forecaster{lowerIsBetter: lowerIsBetter}
}

// Forecast 基于时间顺序序列预测下一周取值。
// 历史点不足 3 个时返回 nil，这是合法的"历史不足"结果而非错误。
func (f *Forecaster) Forecast(series []float64, metric string) *domain.Forecast {
	n := len(series)
	if n < 3 {
		return nil
	}

	// 以 0..n-1 为自变量做最小二乘
	meanX := float64(n-1) / 2
	var meanY float64
	for _, y := range series {
		meanY += y
	}
	meanY /= float64(n)

	var ssXX, ssXY, ssYY float64
	for i, y := range series {
		dx := float64(i) - meanX
		dy := y - meanY
		ssXX += dx * dx
		ssXY += dx * dy
		ssYY += dy * dy
	}

	slope := ssXY / ssXX
	intercept := meanY - slope*meanX
	next := intercept + slope*float64(n)

	rSquared := 0.0
	if ssYY > 0 {
		rSquared = (ssXY * ssXY) / (ssXX * ssYY)
	}

	trend := "stable"
	if math.Abs(slope) > stableSlopeBand {
		improving := slope > 0
		if f.lowerIsBetter[metric] {
			// 耗时类指标上升意味着变慢
			improving = !improving
		}
		if improving {
			trend = "improving"
		} else {
			trend = "degrading"
		}
	}

	confidence := "low"
	switch {
	case rSquared > 0.7:
		confidence = "high"
	case rSquared > 0.4:
		confidence = "medium"
	}

	return &domain.Forecast{
		Metric:        metric,
		NextWeekValue: round2(next),
		Trend:         trend,
		Slope:         round4(slope),
		RSquared:      round4(rSquared),
		Confidence:    confidence,
	}
}
