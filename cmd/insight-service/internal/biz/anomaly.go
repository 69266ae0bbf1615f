package biz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"supplysight/cmd/insight-service/internal/domain"

	"go.uber.org/zap"
)

// 异常严重度切分：决策得分越负越异常
const (
	severityCriticalBelow = -0.15
	severityHighBelow     = -0.05
)

// DetectorConfig 异常检测参数，种子固定以保证可复现
type DetectorConfig struct {
	Contamination float64
	TreeCount     int
	Seed          int64
}

// DefaultDetectorConfig 默认检测参数
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Contamination: 0.15,
		TreeCount:     200,
		Seed:          42,
	}
}

// AnomalyUsecase 无监督多变量离群检测用例
type AnomalyUsecase struct {
	policy Policy
	cfg    DetectorConfig
	log    *zap.Logger
}

// NewAnomalyUsecase 创建异常检测用例
func NewAnomalyUsecase(policy Policy, cfg DetectorConfig, logger *zap.Logger) *AnomalyUsecase {
	return &AnomalyUsecase{policy: policy, cfg: cfg, log: logger}
}

// Detect 对记录表做离群检测。contamination <= 0 时使用配置默认值；
// weekFilter 非空时只检测该周。空作用域返回零计数报告而非错误。
func (uc *AnomalyUsecase) Detect(table domain.Table, contamination float64, weekFilter *int) *domain.AnomalyReport {
	if contamination <= 0 {
		contamination = uc.cfg.Contamination
	}

	// 行号保留全表位置，周过滤后的报告仍可唯一定位记录
	scoped := make(domain.Table, 0, len(table))
	rowIndex := make([]int, 0, len(table))
	for i, r := range table {
		if weekFilter != nil && r.Week != *weekFilter {
			continue
		}
		scoped = append(scoped, r)
		rowIndex = append(rowIndex, i)
	}

	report := &domain.AnomalyReport{
		TotalRecords: len(scoped),
		SeverityBreakdown: map[domain.Severity]int{
			domain.SeverityCritical: 0,
			domain.SeverityHigh:     0,
			domain.SeverityModerate: 0,
		},
		Anomalies:         []domain.Anomaly{},
		MostCommonTrigger: "none",
	}
	// 单条记录没有可比对象，不构成离群
	if len(scoped) < 2 {
		return report
	}

	matrix := standardize(featureMatrix(scoped))

	forest := NewIsolationForest(uc.cfg.TreeCount, uc.cfg.Seed)
	forest.Fit(matrix)
	decisions := forest.DecisionFunction(matrix, contamination)

	for i, r := range scoped {
		if decisions[i] >= 0 {
			continue
		}
		score := round6(decisions[i])
		severity := scoreSeverity(score)
		triggered := uc.triggeredFeatures(r)
		report.Anomalies = append(report.Anomalies, domain.Anomaly{
			Week:              r.Week,
			RowIndex:          rowIndex[i],
			AnomalyScore:      score,
			Severity:          severity,
			TriggeredFeatures: triggered,
			Values: map[string]float64{
				FeaturePickTime:      round2(r.PickTime),
				FeaturePackTime:      round2(r.PackTime),
				FeatureDispatchDelay: round2(r.DispatchDelay),
				FeatureErrorCount:    float64(r.ErrorCount),
			},
			Explanation: explain(triggered, severity),
		})
	}

	sort.SliceStable(report.Anomalies, func(i, j int) bool {
		return report.Anomalies[i].AnomalyScore < report.Anomalies[j].AnomalyScore
	})

	for _, a := range report.Anomalies {
		report.SeverityBreakdown[a.Severity]++
	}
	report.AnomalyCount = len(report.Anomalies)
	report.AnomalyRate = float64(report.AnomalyCount) / float64(report.TotalRecords)
	report.MostCommonTrigger = mostCommonTrigger(report.Anomalies)

	uc.log.Debug("anomaly detection finished",
		zap.Int("total_records", report.TotalRecords),
		zap.Int("anomaly_count", report.AnomalyCount),
	)
	return report
}

// DetectByWeek 逐周检测，键为周号
func (uc *AnomalyUsecase) DetectByWeek(table domain.Table, contamination float64) map[int]*domain.AnomalyReport {
	reports := make(map[int]*domain.AnomalyReport)
	for _, week := range table.Weeks() {
		w := week
		reports[w] = uc.Detect(table, contamination, &w)
	}
	return reports
}

// triggeredFeatures 找出超过 poor 基准的特征；error_count 达到阈值也记为触发
func (uc *AnomalyUsecase) triggeredFeatures(r domain.Record) []string {
	triggered := []string{}
	checks := []struct {
		feature string
		value   float64
	}{
		{FeaturePickTime, r.PickTime},
		{FeaturePackTime, r.PackTime},
		{FeatureDispatchDelay, r.DispatchDelay},
	}
	for _, c := range checks {
		if cutoffs, ok := uc.policy.Benchmarks[c.feature]; ok && c.value > cutoffs.Poor {
			triggered = append(triggered, c.feature)
		}
	}
	if r.ErrorCount >= uc.policy.ErrorCountTrigger {
		triggered = append(triggered, FeatureErrorCount)
	}
	return triggered
}

func scoreSeverity(score float64) domain.Severity {
	switch {
	case score < severityCriticalBelow:
		return domain.SeverityCritical
	case score < severityHighBelow:
		return domain.SeverityHigh
	default:
		return domain.SeverityModerate
	}
}

func explain(triggered []string, severity domain.Severity) string {
	if len(triggered) == 0 {
		return fmt.Sprintf("Unusual multivariate pattern detected (%s severity).", severity)
	}
	labels := make([]string, len(triggered))
	for i, f := range triggered {
		labels[i] = strings.ReplaceAll(f, "_", " ")
	}
	title := strings.ToUpper(string(severity)[:1]) + string(severity)[1:]
	return fmt.Sprintf("%s anomaly driven by: %s.", title, strings.Join(labels, ", "))
}

// mostCommonTrigger 出现最多的触发特征，按首次出现顺序破平
func mostCommonTrigger(anomalies []domain.Anomaly) string {
	counts := make(map[string]int)
	order := []string{}
	for _, a := range anomalies {
		for _, f := range a.TriggeredFeatures {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	best, bestCount := "none", 0
	for _, f := range order {
		if counts[f] > bestCount {
			best, bestCount = f, counts[f]
		}
	}
	return best
}

// featureMatrix 记录表转特征矩阵，列序与 FEATURES 声明一致
func featureMatrix(table domain.Table) [][]float64 {
	matrix := make([][]float64, len(table))
	for i, r := range table {
		matrix[i] = []float64{r.PickTime, r.PackTime, r.DispatchDelay, float64(r.ErrorCount)}
	}
	return matrix
}

// standardize 每列零均值单位方差；零方差列置零
func standardize(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return matrix
	}
	rows := len(matrix)
	cols := len(matrix[0])
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}

	for c := 0; c < cols; c++ {
		var mean float64
		for r := 0; r < rows; r++ {
			mean += matrix[r][c]
		}
		mean /= float64(rows)

		var variance float64
		for r := 0; r < rows; r++ {
			d := matrix[r][c] - mean
			variance += d * d
		}
		variance /= float64(rows)

		if variance == 0 {
			continue
		}
		std := math.Sqrt(variance)
		for r := 0; r < rows; r++ {
			out[r][c] = (matrix[r][c] - mean) / std
		}
	}
	return out
}
