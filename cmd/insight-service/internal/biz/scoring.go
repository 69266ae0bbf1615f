package biz

import (
	"math"

	"supplysight/cmd/insight-service/internal/domain"

	"go.uber.org/zap"
)

// ScoringUsecase 周指标计算用例，是其余分析组件的共同基础。
// 所有方法都是输入表的纯函数，不保留调用间状态。
type ScoringUsecase struct {
	policy     Policy
	alerts     *AlertGenerator
	rater      *BenchmarkRater
	forecaster *Forecaster
	log        *zap.Logger
}

// NewScoringUsecase 创建评分用例
func NewScoringUsecase(policy Policy, logger *zap.Logger) *ScoringUsecase {
	lowerIsBetter := make(map[string]bool, len(policy.Benchmarks))
	for metric, c := range policy.Benchmarks {
		lowerIsBetter[metric] = c.LowerIsBetter
	}
	return &ScoringUsecase{
		policy:     policy,
		alerts:     NewAlertGenerator(policy.AlertThresholds),
		rater:      NewBenchmarkRater(policy.Benchmarks),
		forecaster: NewForecaster(lowerIsBetter),
		log:        logger,
	}
}

// logisticScore 把原始耗时归一化到 0-100。
// 数值越小（越快）分越高；恰好等于 target 时得 50 分，
// 这是已知的标定特性："达标"对应中位分而非高分。
func (uc *ScoringUsecase) logisticScore(target, value float64) float64 {
	return 100 / (1 + math.Exp(-(target-value)/uc.policy.ScoreScale))
}

// ComputeWeekMetrics 计算指定周的全部指标。周不存在时返回 WEEK_NOT_FOUND。
func (uc *ScoringUsecase) ComputeWeekMetrics(week int, table domain.Table) (*domain.WeekMetrics, error) {
	slice := table.FilterWeek(week)
	if len(slice) == 0 {
		return nil, domain.ErrWeekNotFound(week)
	}

	var pickSum, packSum, dispatchSum float64
	var errorSum int
	for _, r := range slice {
		pickSum += r.PickTime
		packSum += r.PackTime
		dispatchSum += r.DispatchDelay
		errorSum += r.ErrorCount
	}
	n := float64(len(slice))
	pickMean := pickSum / n
	packMean := packSum / n
	dispatchMean := dispatchSum / n
	errorRate := round4(float64(errorSum) / n)

	pickingScore := round2(uc.logisticScore(uc.policy.Targets[FeaturePickTime], pickMean))
	packingScore := round2(uc.logisticScore(uc.policy.Targets[FeaturePackTime], packMean))
	dispatchScore := round2(uc.logisticScore(uc.policy.Targets[FeatureDispatchDelay], dispatchMean))
	deliveryScore := round2(uc.policy.PickingWeight*pickingScore +
		uc.policy.PackingWeight*packingScore +
		uc.policy.DispatchWeight*dispatchScore)

	alerts := uc.alerts.Generate(map[string]float64{
		MetricDeliveryScore: deliveryScore,
		MetricErrorRate:     errorRate,
		MetricPickingScore:  pickingScore,
		MetricPackingScore:  packingScore,
		MetricDispatchScore: dispatchScore,
	})

	benchmarks := []domain.BenchmarkRating{
		uc.rater.Rate(FeaturePickTime, pickMean),
		uc.rater.Rate(FeaturePackTime, packMean),
		uc.rater.Rate(FeatureDispatchDelay, dispatchMean),
		uc.rater.Rate(MetricErrorRate, errorRate),
	}

	// 预测用截至本周（含）的各周均值序列，按周升序
	forecasts := make([]domain.Forecast, 0, 3)
	for _, feature := range []string{FeaturePickTime, FeaturePackTime, FeatureDispatchDelay} {
		series := weeklyMeans(table, feature, week)
		if f := uc.forecaster.Forecast(series, feature); f != nil {
			forecasts = append(forecasts, *f)
		}
	}

	return &domain.WeekMetrics{
		Week:          week,
		PickingScore:  pickingScore,
		PackingScore:  packingScore,
		DispatchScore: dispatchScore,
		DeliveryScore: deliveryScore,
		ErrorRate:     errorRate,
		SampleSize:    len(slice),
		Alerts:        alerts,
		Benchmarks:    benchmarks,
		Forecasts:     forecasts,
	}, nil
}

// weeklyMeans 取 week 及之前各周指定特征的周均值，按周升序排列
func weeklyMeans(table domain.Table, feature string, week int) []float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range table {
		if r.Week > week {
			continue
		}
		var v float64
		switch feature {
		case FeaturePickTime:
			v = r.PickTime
		case FeaturePackTime:
			v = r.PackTime
		case FeatureDispatchDelay:
			v = r.DispatchDelay
		case FeatureErrorCount:
			v = float64(r.ErrorCount)
		}
		sums[r.Week] += v
		counts[r.Week]++
	}

	series := make([]float64, 0, len(sums))
	for _, w := range table.Weeks() {
		if w > week {
			break
		}
		if c := counts[w]; c > 0 {
			series = append(series, sums[w]/float64(c))
		}
	}
	return series
}

// CompareWeeks 计算多周对比表，跳过不存在的周，并附上相邻行的综合分差值
func (uc *ScoringUsecase) CompareWeeks(weeks []int, table domain.Table) []domain.WeekComparison {
	rows := make([]domain.WeekComparison, 0, len(weeks))
	for _, w := range weeks {
		m, err := uc.ComputeWeekMetrics(w, table)
		if err != nil {
			uc.log.Debug("skipping missing week in comparison", zap.Int("week", w))
			continue
		}
		rows = append(rows, domain.WeekComparison{
			Week:           m.Week,
			DeliveryScore:  m.DeliveryScore,
			PickingScore:   m.PickingScore,
			PackingScore:   m.PackingScore,
			DispatchScore:  m.DispatchScore,
			ErrorRate:      m.ErrorRate,
			SampleSize:     m.SampleSize,
			CriticalAlerts: m.CriticalAlertCount(),
			WarningAlerts:  m.WarningAlertCount(),
		})
	}

	if len(rows) > 1 {
		for i := 1; i < len(rows); i++ {
			delta := round2(rows[i].DeliveryScore - rows[i-1].DeliveryScore)
			rows[i].DeliveryScoreDelta = &delta
		}
	}
	return rows
}

// MetricTree 构造 KPI 层级树
func (uc *ScoringUsecase) MetricTree(week int, table domain.Table) (*domain.MetricTreeNode, error) {
	m, err := uc.ComputeWeekMetrics(week, table)
	if err != nil {
		return nil, err
	}

	deliveryAlerts := make([]domain.AlertLevel, 0, len(m.Alerts))
	for _, a := range m.Alerts {
		if a.Metric == MetricDeliveryScore {
			deliveryAlerts = append(deliveryAlerts, a.Level)
		}
	}

	return &domain.MetricTreeNode{
		Name:   "Delivery Timeliness",
		Value:  m.DeliveryScore,
		Status: scoreStatus(m.DeliveryScore),
		Alerts: deliveryAlerts,
		Children: []domain.MetricTreeNode{
			{Name: "Picking Efficiency", Value: m.PickingScore, Weight: uc.policy.PickingWeight, Status: scoreStatus(m.PickingScore)},
			{Name: "Packing Efficiency", Value: m.PackingScore, Weight: uc.policy.PackingWeight, Status: scoreStatus(m.PackingScore)},
			{Name: "Dispatch Performance", Value: m.DispatchScore, Weight: uc.policy.DispatchWeight, Status: scoreStatus(m.DispatchScore)},
		},
	}, nil
}

// scoreStatus 分数段转状态标签
func scoreStatus(score float64) string {
	switch {
	case score >= 75:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "average"
	default:
		return "poor"
	}
}
