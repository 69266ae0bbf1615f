package domain

import (
	"fmt"
	"strings"
)

// ScenarioResult 单个负载场景的推演结果
type ScenarioResult struct {
	Label            string  `json:"label"`
	OrderIncreasePct float64 `json:"order_increase_pct"`
	PickingScore     float64 `json:"picking_score"`
	PackingScore     float64 `json:"packing_score"`
	DispatchScore    float64 `json:"dispatch_score"`
	DeliveryScore    float64 `json:"delivery_score"`
	DeliveryDelta    float64 `json:"delivery_delta"`
	RiskLevel        string  `json:"risk_level"`
}

// LoadSimulationReport 负载推演汇总报告
type LoadSimulationReport struct {
	KPI              string           `json:"kpi"`
	BaseWeek         int              `json:"base_week"`
	BaselineDelivery float64          `json:"baseline_delivery"`
	Scenarios        []ScenarioResult `json:"scenarios"`
	BreakingPointPct *float64         `json:"breaking_point_pct"`
}

// Summary 渲染文本报告
func (r *LoadSimulationReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Load Simulation Report: %s\n", r.KPI)
	fmt.Fprintf(&b, "  Base Week    : %d\n", r.BaseWeek)
	fmt.Fprintf(&b, "  Base Score   : %.2f\n", r.BaselineDelivery)
	if r.BreakingPointPct != nil {
		fmt.Fprintf(&b, "  Breaking Point (score < 40): +%.1f%% order increase\n", *r.BreakingPointPct)
	} else {
		b.WriteString("  Breaking Point (score < 40): not reached\n")
	}
	fmt.Fprintf(&b, "\n  %-20s  %7s  %9s  %8s  Risk\n", "Scenario", "Load", "Delivery", "Delta")
	b.WriteString("  " + strings.Repeat("-", 60) + "\n")
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "  %-20s  +%5.1f%%  delivery=%6.2f  delta=%+7.2f  risk=%s\n",
			s.Label, s.OrderIncreasePct, s.DeliveryScore, s.DeliveryDelta, s.RiskLevel)
	}
	return b.String()
}
