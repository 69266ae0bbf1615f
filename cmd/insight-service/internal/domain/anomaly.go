package domain

import (
	"fmt"
	"strings"
)

// Severity 异常严重度
type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Anomaly 单条记录的异常判定结果
type Anomaly struct {
	Week              int                `json:"week"`
	RowIndex          int                `json:"row_index"`
	AnomalyScore      float64            `json:"anomaly_score"`
	Severity          Severity           `json:"severity"`
	TriggeredFeatures []string           `json:"triggered_features"`
	Values            map[string]float64 `json:"values"`
	Explanation       string             `json:"explanation"`
}

// AnomalyReport 异常检测汇总报告
type AnomalyReport struct {
	TotalRecords      int              `json:"total_records"`
	AnomalyCount      int              `json:"anomaly_count"`
	AnomalyRate       float64          `json:"anomaly_rate"`
	SeverityBreakdown map[Severity]int `json:"severity_breakdown"`
	Anomalies         []Anomaly        `json:"anomalies"`
	MostCommonTrigger string           `json:"most_common_trigger"`
}

// Summary 渲染文本报告
func (r *AnomalyReport) Summary() string {
	var b strings.Builder
	b.WriteString("Anomaly Detection Report\n")
	fmt.Fprintf(&b, "  Total Records   : %d\n", r.TotalRecords)
	fmt.Fprintf(&b, "  Anomalies Found : %d (%.1f%%)\n", r.AnomalyCount, r.AnomalyRate*100)
	fmt.Fprintf(&b, "  Most Triggered  : %s\n", r.MostCommonTrigger)
	b.WriteString("\n  Severity Breakdown:\n")
	for _, level := range []Severity{SeverityCritical, SeverityHigh, SeverityModerate} {
		count := r.SeverityBreakdown[level]
		fmt.Fprintf(&b, "    %-10s %3d  |%s\n", level, count, strings.Repeat("#", count))
	}
	fmt.Fprintf(&b, "\n  %-6s %-10s %7s  Triggers  Explanation\n", "Week", "Severity", "Score")
	b.WriteString("  " + strings.Repeat("-", 70) + "\n")
	for _, a := range r.Anomalies {
		triggers := strings.Join(a.TriggeredFeatures, ", ")
		if triggers == "" {
			triggers = "none"
		}
		fmt.Fprintf(&b, "  %-6d %-10s %7.4f  %-30s  %s\n",
			a.Week, a.Severity, a.AnomalyScore, triggers, a.Explanation)
	}
	return b.String()
}
