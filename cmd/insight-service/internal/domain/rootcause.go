package domain

import (
	"fmt"
	"math"
	"strings"
)

// ImpactFactor 子指标对总分变化的贡献
type ImpactFactor struct {
	Metric         string  `json:"metric"`
	Previous       float64 `json:"previous"`
	Current        float64 `json:"current"`
	Change         float64 `json:"change"`
	Weight         float64 `json:"weight"`
	WeightedImpact float64 `json:"weighted_impact"`
	Direction      string  `json:"direction"`
}

// RootCauseReport 周环比根因分析报告
type RootCauseReport struct {
	KPI           string         `json:"kpi"`
	CurrentWeek   int            `json:"current_week"`
	PreviousWeek  int            `json:"previous_week"`
	PreviousScore float64        `json:"previous_score"`
	CurrentScore  float64        `json:"current_score"`
	TotalDrop     float64        `json:"total_drop"`
	MainDriver    string         `json:"main_driver"`
	Drivers       []ImpactFactor `json:"drivers"`
	Verdict       string         `json:"verdict"`
}

// Summary 渲染文本报告
func (r *RootCauseReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Root Cause Report: %s\n", r.KPI)
	fmt.Fprintf(&b, "  Week %d -> Week %d\n", r.PreviousWeek, r.CurrentWeek)
	sign := "-"
	if r.TotalDrop < 0 {
		sign = "+"
	}
	fmt.Fprintf(&b, "  Score: %v -> %v  (%s%.2f)\n", r.PreviousScore, r.CurrentScore, sign, math.Abs(r.TotalDrop))
	fmt.Fprintf(&b, "  Main Driver: %s\n", r.MainDriver)
	b.WriteString("\n  Impact Breakdown:\n")
	for _, d := range r.Drivers {
		bar := strings.Repeat("#", int(math.Abs(d.WeightedImpact)/2))
		fmt.Fprintf(&b, "    %-20s  change=%+.2f  impact=%+.2f  %-11s  |%s\n",
			d.Metric, d.Change, d.WeightedImpact, d.Direction, bar)
	}
	fmt.Fprintf(&b, "\n  Verdict: %s\n", r.Verdict)
	return b.String()
}
