package api

import (
	"context"
	"geodata-api/internal/geodata"
	"geodata-api/internal/store"
)

// 文档注释：用量统计存储契约
// 背景：由 *store.Store 实现；未启用 PostgreSQL 时传入 nil，统计相关路由降级。
type UsageStore interface {
	IncrStats(ctx context.Context, route string, newVisitor bool) error
	GetTotals(ctx context.Context) (*store.Totals, error)
}

// Reloader：支持热重载的数据源（*geodata.Dynamic）
type Reloader interface {
	Reload() error
}

// 错误返回结构：对外只暴露概要信息，细节写日志
type errorResult struct {
	Error string `json:"error"`
}

// 搜索返回结构
type searchResult struct {
	Query     string             `json:"query"`
	Lang      string             `json:"lang"`
	Count     int                `json:"count"`
	Provinces []geodata.Province `json:"provinces"`
}

// 县记录返回结构：记录保留 CSV 原始列名
type districtsResult struct {
	ProvinceID int              `json:"province_id"`
	Count      int              `json:"count"`
	Districts  []geodata.Record `json:"districts"`
}
