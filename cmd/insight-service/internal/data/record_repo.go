package data

import (
	"context"
	"fmt"

	"supplysight/cmd/insight-service/internal/domain"

	"gorm.io/gorm"
)

// RecordDO 周记录数据对象
type RecordDO struct {
	ID            uint    `gorm:"primaryKey"`
	Week          int     `gorm:"index"`
	PickTime      float64 `gorm:"column:pick_time"`
	PackTime      float64 `gorm:"column:pack_time"`
	DispatchDelay float64 `gorm:"column:dispatch_delay"`
	ErrorCount    int     `gorm:"column:error_count"`
}

// TableName 指定表名
func (RecordDO) TableName() string {
	return "weekly_records"
}

// PostgresSource 从 Postgres 加载记录表
type PostgresSource struct {
	db *gorm.DB
}

// NewPostgresSource 创建 Postgres 数据源
func NewPostgresSource(db *gorm.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load 读取全部记录，按周升序
func (s *PostgresSource) Load(ctx context.Context) (domain.Table, error) {
	var dos []RecordDO
	if err := s.db.WithContext(ctx).Order("week").Find(&dos).Error; err != nil {
		return nil, fmt.Errorf("failed to load weekly_records: %w", err)
	}

	table := make(domain.Table, 0, len(dos))
	for _, do := range dos {
		table = append(table, domain.Record{
			Week:          do.Week,
			PickTime:      do.PickTime,
			PackTime:      do.PackTime,
			DispatchDelay: do.DispatchDelay,
			ErrorCount:    do.ErrorCount,
		})
	}
	return table, nil
}
