package domain

import (
	"context"
	"sort"
)

// Record 单条作业记录（一周内可有多条）
type Record struct {
	Week          int     `json:"week"`
	PickTime      float64 `json:"pick_time"`
	PackTime      float64 `json:"pack_time"`
	DispatchDelay float64 `json:"dispatch_delay"`
	ErrorCount    int     `json:"error_count"`
}

// Table 记录表，加载后只读
type Table []Record

// FilterWeek 过滤指定周的记录
func (t Table) FilterWeek(week int) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if r.Week == week {
			out = append(out, r)
		}
	}
	return out
}

// HasWeek 判断周是否存在
func (t Table) HasWeek(week int) bool {
	for _, r := range t {
		if r.Week == week {
			return true
		}
	}
	return false
}

// Weeks 返回按时间顺序排列的去重周列表
func (t Table) Weeks() []int {
	seen := make(map[int]struct{}, len(t))
	weeks := make([]int, 0, len(t))
	for _, r := range t {
		if _, ok := seen[r.Week]; ok {
			continue
		}
		seen[r.Week] = struct{}{}
		weeks = append(weeks, r.Week)
	}
	sort.Ints(weeks)
	return weeks
}

// RecordSource 记录数据源接口
type RecordSource interface {
	// Load 加载全部记录
	Load(ctx context.Context) (Table, error)
}
