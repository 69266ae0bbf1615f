package biz

import (
	"context"
	"time"

	"supplysight/cmd/insight-service/internal/domain"
)

// NarrativeClient 叙事生成协作方接口。
// 实现方的任何失败都必须可恢复：调用侧降级而非崩溃。
type NarrativeClient interface {
	// Analyze 对操作数据摘要生成结构化结论
	Analyze(ctx context.Context, digest string) (*domain.InsightResult, error)
}

// Cache 缓存客户端接口
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
