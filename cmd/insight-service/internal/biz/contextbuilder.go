package biz

import (
	"fmt"
	"strings"

	"supplysight/cmd/insight-service/internal/domain"
)

// ContextBuilder 把各分析结果拼装成叙事模型的输入摘要。
// 输入为强类型结构，边界上不做多键名探测。
type ContextBuilder struct{}

// NewContextBuilder 创建摘要构造器
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// Build 生成分节的可读摘要
func (b *ContextBuilder) Build(
	currentWeek, previousWeek int,
	current, previous *domain.WeekMetrics,
	tree *domain.MetricTreeNode,
	rootCause *domain.RootCauseReport,
	anomalies *domain.AnomalyReport,
) string {
	sections := []string{
		b.kpiSection(currentWeek, previousWeek, current, previous),
		b.treeSection(tree),
		b.rootCauseSection(rootCause),
		b.anomalySection(anomalies),
	}
	return strings.Join(sections, "\n\n")
}

func (b *ContextBuilder) kpiSection(currentWeek, previousWeek int, current, previous *domain.WeekMetrics) string {
	lines := []string{
		fmt.Sprintf("  Current Week  : Week %d", currentWeek),
		fmt.Sprintf("  Previous Week : Week %d", previousWeek),
		"",
	}

	fields := []struct {
		label   string
		current float64
		prev    float64
		suffix  string
	}{
		{"Delivery Score", current.DeliveryScore, previous.DeliveryScore, ""},
		{"Picking Score", current.PickingScore, previous.PickingScore, ""},
		{"Packing Score", current.PackingScore, previous.PackingScore, ""},
		{"Dispatch Score", current.DispatchScore, previous.DispatchScore, ""},
		{"Error Rate", current.ErrorRate, previous.ErrorRate, ""},
	}
	for _, f := range fields {
		diff := f.current - f.prev
		sign := ""
		if diff >= 0 {
			sign = "+"
		}
		lines = append(lines, fmt.Sprintf(
			"  %-25s: Current=%.2f%s  |  Previous=%.2f%s (%s%.1f%s vs previous week)",
			f.label, f.current, f.suffix, f.prev, f.suffix, sign, diff, f.suffix,
		))
	}

	return "=== KPI COMPARISON ===\n" + strings.Join(lines, "\n")
}

func (b *ContextBuilder) treeSection(tree *domain.MetricTreeNode) string {
	if tree == nil {
		return "=== METRIC TREE (Hierarchy) ===\n  No metric tree data available."
	}
	lines := []string{}
	flattenTree(tree, 0, &lines)
	return "=== METRIC TREE (Hierarchy) ===\n" + strings.Join(lines, "\n")
}

func flattenTree(node *domain.MetricTreeNode, depth int, lines *[]string) {
	flag := ""
	switch node.Status {
	case "average", "poor":
		flag = " ⚠"
	}
	*lines = append(*lines, fmt.Sprintf("%s- %s: %.2f%s", strings.Repeat("  ", depth), node.Name, node.Value, flag))
	for i := range node.Children {
		flattenTree(&node.Children[i], depth+1, lines)
	}
}

func (b *ContextBuilder) rootCauseSection(rc *domain.RootCauseReport) string {
	if rc == nil {
		return "=== ROOT CAUSE ANALYSIS ===\n  No root cause data available."
	}
	lines := []string{
		fmt.Sprintf("  Primary Cause     : %s", rc.MainDriver),
		fmt.Sprintf("  Details           : %s", rc.Verdict),
		"  Contributing Factors:",
	}
	for _, d := range rc.Drivers {
		lines = append(lines, fmt.Sprintf("    - %s: change %+.2f, weighted impact %+.2f (%s)",
			d.Metric, d.Change, d.WeightedImpact, d.Direction))
	}
	return "=== ROOT CAUSE ANALYSIS ===\n" + strings.Join(lines, "\n")
}

func (b *ContextBuilder) anomalySection(report *domain.AnomalyReport) string {
	if report == nil || report.AnomalyCount == 0 {
		return "=== DETECTED ANOMALIES ===\n  No anomalies detected."
	}
	lines := []string{}
	for _, a := range report.Anomalies {
		lines = append(lines, fmt.Sprintf("  [%s] week %d: %s",
			strings.ToUpper(string(a.Severity)), a.Week, a.Explanation))
	}
	return "=== DETECTED ANOMALIES ===\n" + strings.Join(lines, "\n")
}
