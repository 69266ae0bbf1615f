package biz

import (
	"fmt"
	"sort"
	"strings"

	"supplysight/cmd/insight-service/internal/domain"
)

// kpiLabel 综合 KPI 名称
const kpiLabel = "Delivery Timeliness"

// RootCauseUsecase 周环比根因分析：把综合分变化分解为各子指标的加权贡献
type RootCauseUsecase struct {
	policy  Policy
	scoring *ScoringUsecase
}

// NewRootCauseUsecase 创建根因分析用例
func NewRootCauseUsecase(policy Policy, scoring *ScoringUsecase) *RootCauseUsecase {
	return &RootCauseUsecase{policy: policy, scoring: scoring}
}

// Analyze 对比两周并定位主要驱动因素。任一周不存在时返回 WEEK_NOT_FOUND。
func (uc *RootCauseUsecase) Analyze(currentWeek, previousWeek int, table domain.Table) (*domain.RootCauseReport, error) {
	current, err := uc.scoring.ComputeWeekMetrics(currentWeek, table)
	if err != nil {
		return nil, err
	}
	previous, err := uc.scoring.ComputeWeekMetrics(previousWeek, table)
	if err != nil {
		return nil, err
	}

	drivers := []domain.ImpactFactor{
		uc.impact(MetricPickingScore, uc.policy.PickingWeight, previous.PickingScore, current.PickingScore),
		uc.impact(MetricPackingScore, uc.policy.PackingWeight, previous.PackingScore, current.PackingScore),
		uc.impact(MetricDispatchScore, uc.policy.DispatchWeight, previous.DispatchScore, current.DispatchScore),
	}

	// 加权贡献升序：最拖后腿的排最前
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].WeightedImpact < drivers[j].WeightedImpact
	})

	totalDrop := round2(previous.DeliveryScore - current.DeliveryScore)

	return &domain.RootCauseReport{
		KPI:           kpiLabel,
		CurrentWeek:   currentWeek,
		PreviousWeek:  previousWeek,
		PreviousScore: previous.DeliveryScore,
		CurrentScore:  current.DeliveryScore,
		TotalDrop:     totalDrop,
		MainDriver:    drivers[0].Metric,
		Drivers:       drivers,
		Verdict:       verdict(totalDrop, drivers, current.ErrorRate),
	}, nil
}

// MultiWeek 链式对比：weeks[i-1] -> weeks[i]
func (uc *RootCauseUsecase) MultiWeek(weeks []int, table domain.Table) ([]*domain.RootCauseReport, error) {
	reports := make([]*domain.RootCauseReport, 0, len(weeks))
	for i := 1; i < len(weeks); i++ {
		report, err := uc.Analyze(weeks[i], weeks[i-1], table)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (uc *RootCauseUsecase) impact(metric string, weight, previous, current float64) domain.ImpactFactor {
	change := current - previous
	direction := "stable"
	if change > 0 {
		direction = "improving"
	} else if change < 0 {
		direction = "degrading"
	}
	return domain.ImpactFactor{
		Metric:         metric,
		Previous:       previous,
		Current:        current,
		Change:         round2(change),
		Weight:         weight,
		WeightedImpact: round2(weight * change),
		Direction:      direction,
	}
}

// verdict 生成结论语句
func verdict(drop float64, drivers []domain.ImpactFactor, errorRate float64) string {
	if drop <= 0 {
		return "Performance improved week-over-week. No corrective action required."
	}

	worst := drivers[0]
	severity := "moderately"
	switch {
	case drop > 15:
		severity = "critically"
	case drop > 8:
		severity = "significantly"
	}

	label := strings.ReplaceAll(strings.TrimSuffix(worst.Metric, "_score"), "_", " ")
	errorNote := ""
	if errorRate > 0.8 {
		errorNote = fmt.Sprintf(" High error rate (%.2f) may be compounding the issue.", errorRate)
	}

	return fmt.Sprintf(
		"Delivery score dropped %s by %.2f points. %s was the primary driver (impact: %+.2f).%s Investigate %s operations first.",
		severity, drop, metricTitle(label), worst.WeightedImpact, errorNote, label,
	)
}
