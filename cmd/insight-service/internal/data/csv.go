package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"supplysight/cmd/insight-service/internal/domain"
)

// 必需的 CSV 列
var requiredColumns = []string{"week", "pick_time", "pack_time", "dispatch_delay", "error_count"}

// CSVSource 从 CSV 文件加载记录表
type CSVSource struct {
	path string
}

// NewCSVSource 创建 CSV 数据源
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load 读取全部记录。列顺序任意，按表头定位。
func (s *CSVSource) Load(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv %s is empty", s.path)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("csv is missing required column %q", col)
		}
	}

	table := make(domain.Table, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		record, err := parseRow(row, header)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", lineNo+2, err)
		}
		table = append(table, record)
	}
	return table, nil
}

func parseRow(row []string, header map[string]int) (domain.Record, error) {
	week, err := strconv.Atoi(row[header["week"]])
	if err != nil {
		return domain.Record{}, fmt.Errorf("invalid week: %w", err)
	}
	pickTime, err := strconv.ParseFloat(row[header["pick_time"]], 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("invalid pick_time: %w", err)
	}
	packTime, err := strconv.ParseFloat(row[header["pack_time"]], 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("invalid pack_time: %w", err)
	}
	dispatchDelay, err := strconv.ParseFloat(row[header["dispatch_delay"]], 64)
	if err != nil {
		return domain.Record{}, fmt.Errorf("invalid dispatch_delay: %w", err)
	}
	errorCount, err := strconv.Atoi(row[header["error_count"]])
	if err != nil {
		return domain.Record{}, fmt.Errorf("invalid error_count: %w", err)
	}

	return domain.Record{
		Week:          week,
		PickTime:      pickTime,
		PackTime:      packTime,
		DispatchDelay: dispatchDelay,
		ErrorCount:    errorCount,
	}, nil
}
