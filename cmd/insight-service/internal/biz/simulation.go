package biz

import (
	"fmt"
	"math"

	"supplysight/cmd/insight-service/internal/domain"
)

// 负载推演的风险分层与崩溃线
const (
	riskLowAt      = 70.0
	riskModerateAt = 55.0
	riskHighAt     = 40.0
	breakingFloor  = 40.0
)

// SimulationUsecase 负载推演：按弹性曲线推算订单量增加后的得分
type SimulationUsecase struct {
	policy  Policy
	scoring *ScoringUsecase
}

// NewSimulationUsecase 创建负载推演用例
func NewSimulationUsecase(policy Policy, scoring *ScoringUsecase) *SimulationUsecase {
	return &SimulationUsecase{policy: policy, scoring: scoring}
}

// Simulate 用策略默认弹性推演单个场景
func (uc *SimulationUsecase) Simulate(week int, orderIncreasePct float64, table domain.Table) (*domain.ScenarioResult, error) {
	return uc.SimulateScenario(week, orderIncreasePct, "", uc.policy.PickingElasticity, uc.policy.DispatchElasticity, table)
}

// SimulateScenario 推演单个负载场景。打包环节假定不受订单量影响，原样保留。
func (uc *SimulationUsecase) SimulateScenario(
	week int,
	orderIncreasePct float64,
	label string,
	pickingElasticity, dispatchElasticity float64,
	table domain.Table,
) (*domain.ScenarioResult, error) {
	m, err := uc.scoring.ComputeWeekMetrics(week, table)
	if err != nil {
		return nil, err
	}

	increaseFactor := 1 + orderIncreasePct/100
	if label == "" {
		label = fmt.Sprintf("+%.0f%% orders", orderIncreasePct)
	}

	newPicking := applyLoad(m.PickingScore, increaseFactor, pickingElasticity)
	newDispatch := applyLoad(m.DispatchScore, increaseFactor, dispatchElasticity)
	newDelivery := round2(uc.policy.PickingWeight*newPicking +
		uc.policy.PackingWeight*m.PackingScore +
		uc.policy.DispatchWeight*newDispatch)

	return &domain.ScenarioResult{
		Label:            label,
		OrderIncreasePct: orderIncreasePct,
		PickingScore:     newPicking,
		PackingScore:     m.PackingScore,
		DispatchScore:    newDispatch,
		DeliveryScore:    newDelivery,
		DeliveryDelta:    round2(newDelivery - m.DeliveryScore),
		RiskLevel:        riskLevel(newDelivery),
	}, nil
}

// SimulateRange 按输入顺序推演一组增幅；breaking_point 取首个综合分跌破 40 的增幅
func (uc *SimulationUsecase) SimulateRange(week int, increments []float64, table domain.Table) (*domain.LoadSimulationReport, error) {
	base, err := uc.scoring.ComputeWeekMetrics(week, table)
	if err != nil {
		return nil, err
	}

	scenarios := make([]domain.ScenarioResult, 0, len(increments))
	var breakingPoint *float64
	for _, pct := range increments {
		s, err := uc.Simulate(week, pct, table)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, *s)
		if breakingPoint == nil && s.DeliveryScore < breakingFloor {
			p := s.OrderIncreasePct
			breakingPoint = &p
		}
	}

	return &domain.LoadSimulationReport{
		KPI:              kpiLabel,
		BaseWeek:         week,
		BaselineDelivery: base.DeliveryScore,
		Scenarios:        scenarios,
		BreakingPointPct: breakingPoint,
	}, nil
}

// StressTest 生成 step, 2*step, ... <= maxIncrease+step 的增幅序列并推演。
// step 与 maxIncrease 必须为正，否则序列无界。
func (uc *SimulationUsecase) StressTest(week int, step, maxIncrease float64, table domain.Table) (*domain.LoadSimulationReport, error) {
	if step <= 0 || maxIncrease <= 0 {
		return nil, domain.ErrInvalidStressRange()
	}
	increments := []float64{}
	for v := step; v <= maxIncrease+step; v += step {
		increments = append(increments, math.Round(v*10)/10)
	}
	return uc.SimulateRange(week, increments, table)
}

func applyLoad(baseScore, increaseFactor, elasticity float64) float64 {
	return round2(baseScore / math.Pow(increaseFactor, elasticity))
}

func riskLevel(deliveryScore float64) string {
	switch {
	case deliveryScore >= riskLowAt:
		return "low"
	case deliveryScore >= riskModerateAt:
		return "moderate"
	case deliveryScore >= riskHighAt:
		return "high"
	default:
		return "critical"
	}
}
