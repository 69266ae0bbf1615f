package domain

// AlertLevel 告警级别
type AlertLevel string

const (
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Alert 阈值告警
type Alert struct {
	Metric    string     `json:"metric"`
	Level     AlertLevel `json:"level"`
	Value     float64    `json:"value"`
	Threshold float64    `json:"threshold"`
	Message   string     `json:"message"`
}

// BenchmarkRating 基准评级
type BenchmarkRating struct {
	Metric             string  `json:"metric"`
	Value              float64 `json:"value"`
	Rating             string  `json:"rating"`
	PercentileEstimate float64 `json:"percentile_estimate"`
}

// Forecast 线性趋势预测
type Forecast struct {
	Metric        string  `json:"metric"`
	NextWeekValue float64 `json:"next_week_value"`
	Trend         string  `json:"trend"`
	Slope         float64 `json:"slope"`
	RSquared      float64 `json:"r_squared"`
	Confidence    string  `json:"confidence"`
}

// WeekMetrics 单周指标聚合结果，构造后不再修改
type WeekMetrics struct {
	Week          int               `json:"week"`
	PickingScore  float64           `json:"picking_score"`
	PackingScore  float64           `json:"packing_score"`
	DispatchScore float64           `json:"dispatch_score"`
	DeliveryScore float64           `json:"delivery_score"`
	ErrorRate     float64           `json:"error_rate"`
	SampleSize    int               `json:"sample_size"`
	Alerts        []Alert           `json:"alerts"`
	Benchmarks    []BenchmarkRating `json:"benchmarks"`
	Forecasts     []Forecast        `json:"forecasts"`
}

// CriticalAlertCount 统计 critical 告警数
func (m *WeekMetrics) CriticalAlertCount() int {
	n := 0
	for _, a := range m.Alerts {
		if a.Level == AlertLevelCritical {
			n++
		}
	}
	return n
}

// WarningAlertCount 统计 warning 告警数
func (m *WeekMetrics) WarningAlertCount() int {
	n := 0
	for _, a := range m.Alerts {
		if a.Level == AlertLevelWarning {
			n++
		}
	}
	return n
}

// WeekComparison 多周对比中的一行
type WeekComparison struct {
	Week               int      `json:"week"`
	DeliveryScore      float64  `json:"delivery_score"`
	PickingScore       float64  `json:"picking_score"`
	PackingScore       float64  `json:"packing_score"`
	DispatchScore      float64  `json:"dispatch_score"`
	ErrorRate          float64  `json:"error_rate"`
	SampleSize         int      `json:"sample_size"`
	CriticalAlerts     int      `json:"critical_alerts"`
	WarningAlerts      int      `json:"warning_alerts"`
	DeliveryScoreDelta *float64 `json:"delivery_score_delta,omitempty"`
}

// MetricTreeNode KPI 层级树节点
type MetricTreeNode struct {
	Name     string           `json:"name"`
	Value    float64          `json:"value"`
	Weight   float64          `json:"weight,omitempty"`
	Status   string           `json:"status"`
	Alerts   []AlertLevel     `json:"alerts,omitempty"`
	Children []MetricTreeNode `json:"children,omitempty"`
}
