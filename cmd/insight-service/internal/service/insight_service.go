package service

import (
	"context"
	"time"

	"supplysight/cmd/insight-service/internal/biz"
	"supplysight/cmd/insight-service/internal/domain"

	"go.uber.org/zap"
)

// InsightService 分析服务门面。
// 记录表在启动时一次性加载，之后只读，所有方法可安全并发调用。
type InsightService struct {
	table      domain.Table
	loadedAt   time.Time
	scoring    *biz.ScoringUsecase
	rootCause  *biz.RootCauseUsecase
	anomaly    *biz.AnomalyUsecase
	simulation *biz.SimulationUsecase
	insight    *biz.InsightUsecase
	log        *zap.Logger
}

// NewInsightService 创建分析服务
func NewInsightService(
	table domain.Table,
	scoring *biz.ScoringUsecase,
	rootCause *biz.RootCauseUsecase,
	anomaly *biz.AnomalyUsecase,
	simulation *biz.SimulationUsecase,
	insight *biz.InsightUsecase,
	logger *zap.Logger,
) *InsightService {
	return &InsightService{
		table:      table,
		loadedAt:   time.Now(),
		scoring:    scoring,
		rootCause:  rootCause,
		anomaly:    anomaly,
		simulation: simulation,
		insight:    insight,
		log:        logger,
	}
}

// HealthStatus 健康检查响应
type HealthStatus struct {
	Status       string    `json:"status"`
	WeeksLoaded  int       `json:"weeks_loaded"`
	TotalRecords int       `json:"total_records"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Health 返回服务健康状态
func (s *InsightService) Health() *HealthStatus {
	return &HealthStatus{
		Status:       "ok",
		WeeksLoaded:  len(s.table.Weeks()),
		TotalRecords: len(s.table),
		LoadedAt:     s.loadedAt,
	}
}

// Weeks 返回可用周列表，升序
func (s *InsightService) Weeks() ([]int, error) {
	if len(s.table) == 0 {
		return nil, domain.ErrDataNotLoaded()
	}
	return s.table.Weeks(), nil
}

// validateWeek 校验周存在性
func (s *InsightService) validateWeek(week int) error {
	if len(s.table) == 0 {
		return domain.ErrDataNotLoaded()
	}
	if !s.table.HasWeek(week) {
		return domain.ErrWeekNotFound(week)
	}
	return nil
}

// WeekMetrics 计算单周全量指标
func (s *InsightService) WeekMetrics(week int) (*domain.WeekMetrics, error) {
	if err := s.validateWeek(week); err != nil {
		return nil, err
	}
	return s.scoring.ComputeWeekMetrics(week, s.table)
}

// MetricTree 返回单周 KPI 层级树
func (s *InsightService) MetricTree(week int) (*domain.MetricTreeNode, error) {
	if err := s.validateWeek(week); err != nil {
		return nil, err
	}
	return s.scoring.MetricTree(week, s.table)
}

// CompareWeeks 多周对比，缺失的周静默跳过
func (s *InsightService) CompareWeeks(weeks []int) ([]domain.WeekComparison, error) {
	if len(s.table) == 0 {
		return nil, domain.ErrDataNotLoaded()
	}
	return s.scoring.CompareWeeks(weeks, s.table), nil
}

// RootCause 周环比根因分析
func (s *InsightService) RootCause(currentWeek, previousWeek int) (*domain.RootCauseReport, error) {
	if currentWeek == previousWeek {
		return nil, domain.ErrSameWeek()
	}
	if err := s.validateWeek(currentWeek); err != nil {
		return nil, err
	}
	if err := s.validateWeek(previousWeek); err != nil {
		return nil, err
	}
	return s.rootCause.Analyze(currentWeek, previousWeek, s.table)
}

// MultiWeekRootCause 链式多周根因分析
func (s *InsightService) MultiWeekRootCause(weeks []int) ([]*domain.RootCauseReport, error) {
	for _, w := range weeks {
		if err := s.validateWeek(w); err != nil {
			return nil, err
		}
	}
	return s.rootCause.MultiWeek(weeks, s.table)
}

// Simulate 单场景负载推演
func (s *InsightService) Simulate(week int, orderIncreasePct float64) (*domain.ScenarioResult, error) {
	if err := s.validateWeek(week); err != nil {
		return nil, err
	}
	return s.simulation.Simulate(week, orderIncreasePct, s.table)
}

// SimulateRange 多增幅负载推演
func (s *InsightService) SimulateRange(week int, increments []float64) (*domain.LoadSimulationReport, error) {
	if err := s.validateWeek(week); err != nil {
		return nil, err
	}
	return s.simulation.SimulateRange(week, increments, s.table)
}

// StressTest 步进式压力测试
func (s *InsightService) StressTest(week int, step, maxIncrease float64) (*domain.LoadSimulationReport, error) {
	if err := s.validateWeek(week); err != nil {
		return nil, err
	}
	return s.simulation.StressTest(week, step, maxIncrease, s.table)
}

// Anomalies 全表或单周离群检测。contamination <= 0 时用配置默认值。
func (s *InsightService) Anomalies(weekFilter *int, contamination float64) (*domain.AnomalyReport, error) {
	if len(s.table) == 0 {
		return nil, domain.ErrDataNotLoaded()
	}
	if weekFilter != nil {
		if err := s.validateWeek(*weekFilter); err != nil {
			return nil, err
		}
	}
	return s.anomaly.Detect(s.table, contamination, weekFilter), nil
}

// AnomaliesByWeek 按周分组的离群检测
func (s *InsightService) AnomaliesByWeek(contamination float64) (map[int]*domain.AnomalyReport, error) {
	if len(s.table) == 0 {
		return nil, domain.ErrDataNotLoaded()
	}
	return s.anomaly.DetectByWeek(s.table, contamination), nil
}

// Insights 生成周环比 AI 洞察，叙事失败时降级而非报错
func (s *InsightService) Insights(ctx context.Context, currentWeek, previousWeek int) (*domain.InsightResult, error) {
	if currentWeek == previousWeek {
		return nil, domain.ErrSameWeek()
	}
	if err := s.validateWeek(currentWeek); err != nil {
		return nil, err
	}
	if err := s.validateWeek(previousWeek); err != nil {
		return nil, err
	}
	return s.insight.GenerateInsights(ctx, currentWeek, previousWeek, s.table)
}
