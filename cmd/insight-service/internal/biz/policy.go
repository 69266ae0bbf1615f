package biz

// 指标与特征名
const (
	MetricDeliveryScore = "delivery_score"
	MetricPickingScore  = "picking_score"
	MetricPackingScore  = "packing_score"
	MetricDispatchScore = "dispatch_score"
	MetricErrorRate     = "error_rate"

	FeaturePickTime      = "pick_time"
	FeaturePackTime      = "pack_time"
	FeatureDispatchDelay = "dispatch_delay"
	FeatureErrorCount    = "error_count"
)

// AlertThreshold 单指标的两级告警阈值
type AlertThreshold struct {
	Metric        string
	Warning       float64
	Critical      float64
	LowerIsBetter bool
}

// BenchmarkCutoffs 基准评级三档切点，方向由 LowerIsBetter 决定
type BenchmarkCutoffs struct {
	Excellent     float64
	Good          float64
	Poor          float64
	LowerIsBetter bool
}

// Policy 评分策略常量，显式注入各用例，便于测试替换
type Policy struct {
	// 综合分凸组合权重，三者之和必须为 1
	PickingWeight  float64
	PackingWeight  float64
	DispatchWeight float64

	// logistic 归一化：score = 100 / (1 + exp(-(target-value)/scale))
	ScoreScale float64
	Targets    map[string]float64

	Benchmarks      map[string]BenchmarkCutoffs
	AlertThresholds []AlertThreshold

	// 异常特征触发：error_count 达到该值即记为触发
	ErrorCountTrigger int

	// 负载推演弹性指数
	PickingElasticity  float64
	DispatchElasticity float64
}

// DefaultPolicy 默认策略
func DefaultPolicy() Policy {
	return Policy{
		PickingWeight:  0.4,
		PackingWeight:  0.3,
		DispatchWeight: 0.3,

		ScoreScale: 10,
		Targets: map[string]float64{
			FeaturePickTime:      20,
			FeaturePackTime:      18,
			FeatureDispatchDelay: 15,
		},

		Benchmarks: map[string]BenchmarkCutoffs{
			FeaturePickTime:      {Excellent: 12, Good: 20, Poor: 30, LowerIsBetter: true},
			FeaturePackTime:      {Excellent: 10, Good: 18, Poor: 28, LowerIsBetter: true},
			FeatureDispatchDelay: {Excellent: 8, Good: 15, Poor: 25, LowerIsBetter: true},
			MetricErrorRate:      {Excellent: 0.1, Good: 0.3, Poor: 0.8, LowerIsBetter: true},
		},

		// 顺序即告警输出顺序
		AlertThresholds: []AlertThreshold{
			{Metric: MetricDeliveryScore, Warning: 60, Critical: 40},
			{Metric: MetricErrorRate, Warning: 0.3, Critical: 0.5, LowerIsBetter: true},
			{Metric: MetricPickingScore, Warning: 55, Critical: 35},
			{Metric: MetricPackingScore, Warning: 55, Critical: 35},
			{Metric: MetricDispatchScore, Warning: 55, Critical: 35},
		},

		ErrorCountTrigger: 3,

		PickingElasticity:  1.0,
		DispatchElasticity: 1.2,
	}
}
