package domain

// InsightResult 叙事生成结果（外部模型产出，经边界校验）
type InsightResult struct {
	Status          string   `json:"status"`
	Summary         string   `json:"summary"`
	Bottleneck      *string  `json:"bottleneck"`
	RootCause       *string  `json:"root_cause"`
	Recommendations []string `json:"recommendations"`
}

// DegradedInsight 协作方失败时的降级结果
func DegradedInsight(summary string) *InsightResult {
	return &InsightResult{
		Status:          "Error",
		Summary:         summary,
		Bottleneck:      nil,
		RootCause:       nil,
		Recommendations: []string{},
	}
}

// Normalize 填充缺省字段，保证响应结构完整
func (r *InsightResult) Normalize() {
	if r.Status == "" {
		r.Status = "Alert"
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
}
