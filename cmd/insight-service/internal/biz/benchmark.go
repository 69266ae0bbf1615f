package biz

import "supplysight/cmd/insight-service/internal/domain"

// 评级对应的示意分位数，是固定常量而非真实分布统计
const (
	percentileExcellent = 90.0
	percentileGood      = 70.0
	percentileAverage   = 40.0
	percentilePoor      = 15.0
)

// BenchmarkRater 按静态切点对原始指标值做四档评级
type BenchmarkRater struct {
	cutoffs map[string]BenchmarkCutoffs
}

// NewBenchmarkRater 创建基准评级器
func NewBenchmarkRater(cutoffs map[string]BenchmarkCutoffs) *BenchmarkRater {
	return &BenchmarkRater{cutoffs: cutoffs}
}

// Rate 评级。指标方向是指标名的静态属性，由切点配置决定。
func (r *BenchmarkRater) Rate(metric string, value float64) domain.BenchmarkRating {
	rating, pct := "average", percentileAverage
	if c, ok := r.cutoffs[metric]; ok {
		if c.LowerIsBetter {
			switch {
			case value <= c.Excellent:
				rating, pct = "excellent", percentileExcellent
			case value <= c.Good:
				rating, pct = "good", percentileGood
			case value <= c.Poor:
				rating, pct = "average", percentileAverage
			default:
				rating, pct = "poor", percentilePoor
			}
		} else {
			switch {
			case value >= c.Excellent:
				rating, pct = "excellent", percentileExcellent
			case value >= c.Good:
				rating, pct = "good", percentileGood
			case value >= c.Poor:
				rating, pct = "average", percentileAverage
			default:
				rating, pct = "poor", percentilePoor
			}
		}
	}

	return domain.BenchmarkRating{
		Metric:             metric,
		Value:              round2(value),
		Rating:             rating,
		PercentileEstimate: pct,
	}
}
