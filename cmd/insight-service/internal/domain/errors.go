package domain

import (
	"fmt"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

const (
	// ReasonWeekNotFound 请求的周不存在
	ReasonWeekNotFound = "WEEK_NOT_FOUND"
	// ReasonSameWeek 对比的两周相同
	ReasonSameWeek = "SAME_WEEK"
	// ReasonDataNotLoaded 数据未加载
	ReasonDataNotLoaded = "DATA_NOT_LOADED"
	// ReasonInvalidStressRange 压力测试步长或上限非法
	ReasonInvalidStressRange = "INVALID_STRESS_RANGE"
)

// ErrWeekNotFound 构造周不存在错误
func ErrWeekNotFound(week int) *kerrors.Error {
	return kerrors.NotFound(ReasonWeekNotFound, fmt.Sprintf("no data found for week %d", week))
}

// ErrSameWeek 构造同周对比错误
func ErrSameWeek() *kerrors.Error {
	return kerrors.BadRequest(ReasonSameWeek, "weeks must be different")
}

// ErrDataNotLoaded 构造数据未加载错误
func ErrDataNotLoaded() *kerrors.Error {
	return kerrors.ServiceUnavailable(ReasonDataNotLoaded, "data not loaded")
}

// ErrInvalidStressRange 构造压力测试参数非法错误
func ErrInvalidStressRange() *kerrors.Error {
	return kerrors.BadRequest(ReasonInvalidStressRange, "step and max must be positive")
}

// IsWeekNotFound 判断是否为周不存在错误
func IsWeekNotFound(err error) bool {
	return kerrors.Reason(err) == ReasonWeekNotFound
}
