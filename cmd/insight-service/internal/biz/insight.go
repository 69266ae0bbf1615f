package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplysight/cmd/insight-service/internal/domain"
	"supplysight/pkg/observability"

	"go.uber.org/zap"
)

// InsightUsecase 汇总各分析结果、调用叙事模型并处理降级
type InsightUsecase struct {
	scoring    *ScoringUsecase
	rootCause  *RootCauseUsecase
	anomaly    *AnomalyUsecase
	builder    *ContextBuilder
	narrative  NarrativeClient
	cache      Cache
	cacheTTL   time.Duration
	log        *zap.Logger
}

// NewInsightUsecase 创建洞察用例。cache 可为 nil（不启用缓存）。
func NewInsightUsecase(
	scoring *ScoringUsecase,
	rootCause *RootCauseUsecase,
	anomaly *AnomalyUsecase,
	narrative NarrativeClient,
	cache Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *InsightUsecase {
	return &InsightUsecase{
		scoring:   scoring,
		rootCause: rootCause,
		anomaly:   anomaly,
		builder:   NewContextBuilder(),
		narrative: narrative,
		cache:     cache,
		cacheTTL:  cacheTTL,
		log:       logger,
	}
}

// GenerateInsights 生成周环比洞察。
// 周不存在、同周对比属于硬错误；叙事协作方失败一律降级为 status=Error 的结果。
func (uc *InsightUsecase) GenerateInsights(ctx context.Context, currentWeek, previousWeek int, table domain.Table) (*domain.InsightResult, error) {
	if currentWeek == previousWeek {
		return nil, domain.ErrSameWeek()
	}

	current, err := uc.scoring.ComputeWeekMetrics(currentWeek, table)
	if err != nil {
		return nil, err
	}
	previous, err := uc.scoring.ComputeWeekMetrics(previousWeek, table)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("insights:w%d:w%d", currentWeek, previousWeek)
	if cached := uc.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	tree, err := uc.scoring.MetricTree(currentWeek, table)
	if err != nil {
		return nil, err
	}
	rootCause, err := uc.rootCause.Analyze(currentWeek, previousWeek, table)
	if err != nil {
		return nil, err
	}
	anomalies := uc.anomaly.Detect(table, 0, &currentWeek)

	digest := uc.builder.Build(currentWeek, previousWeek, current, previous, tree, rootCause, anomalies)

	spanCtx, span := observability.StartSpan(ctx, "insight.narrative")
	result, err := uc.narrative.Analyze(spanCtx, digest)
	span.End()
	if err != nil {
		uc.log.Error("narrative generation failed, returning degraded result", zap.Error(err))
		return domain.DegradedInsight(fmt.Sprintf("Narrative generation failed: %v", err)), nil
	}

	result.Normalize()
	uc.toCache(ctx, cacheKey, result)
	return result, nil
}

func (uc *InsightUsecase) fromCache(ctx context.Context, key string) *domain.InsightResult {
	if uc.cache == nil {
		return nil
	}
	raw, err := uc.cache.GetBytes(ctx, key)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var result domain.InsightResult
	if err := json.Unmarshal(raw, &result); err != nil {
		uc.log.Warn("dropping malformed cached insight", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &result
}

func (uc *InsightUsecase) toCache(ctx context.Context, key string, result *domain.InsightResult) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := uc.cache.SetBytes(ctx, key, raw, uc.cacheTTL); err != nil {
		uc.log.Warn("failed to cache insight", zap.String("key", key), zap.Error(err))
	}
}
