package data

import (
	"context"
	"fmt"

	"supplysight/cmd/insight-service/internal/domain"
)

// ClickHouseSource 从 ClickHouse 加载记录表
type ClickHouseSource struct {
	ch *ClickHouseClient
}

// NewClickHouseSource 创建 ClickHouse 数据源
func NewClickHouseSource(ch *ClickHouseClient) *ClickHouseSource {
	return &ClickHouseSource{ch: ch}
}

// Load 读取全部记录，按周升序
func (s *ClickHouseSource) Load(ctx context.Context) (domain.Table, error) {
	query := `
		SELECT week, pick_time, pack_time, dispatch_delay, error_count
		FROM weekly_records
		ORDER BY week
	`

	rows, err := s.ch.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly_records: %w", err)
	}
	defer rows.Close()

	table := domain.Table{}
	for rows.Next() {
		var (
			week          int64
			pickTime      float64
			packTime      float64
			dispatchDelay float64
			errorCount    int64
		)
		if err := rows.Scan(&week, &pickTime, &packTime, &dispatchDelay, &errorCount); err != nil {
			return nil, fmt.Errorf("failed to scan weekly_records row: %w", err)
		}
		table = append(table, domain.Record{
			Week:          int(week),
			PickTime:      pickTime,
			PackTime:      packTime,
			DispatchDelay: dispatchDelay,
			ErrorCount:    int(errorCount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
