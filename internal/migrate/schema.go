package migrate

import (
	"context"
	"database/sql"
	"geodata-api/internal/logger"
)

// 背景：首次运行自动创建用量统计表；数据集本身只来自文件，不入库
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；重复执行无副作用
var statements = []string{
	`CREATE TABLE IF NOT EXISTS _geo_stats_total (
        id INT PRIMARY KEY,
        total_queries BIGINT NOT NULL DEFAULT 0,
        total_visitors BIGINT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS _geo_stats_daily (
        day DATE PRIMARY KEY,
        queries BIGINT NOT NULL DEFAULT 0,
        visitors BIGINT NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS _geo_stats_route (
        route TEXT PRIMARY KEY,
        queries BIGINT NOT NULL DEFAULT 0,
        last_seen TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`INSERT INTO _geo_stats_total(id, total_queries, total_visitors)
     VALUES(1, 0, 0)
     ON CONFLICT (id) DO NOTHING`,
}

// EnsureSchema：按顺序执行建表语句，任一失败立即返回
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done", "statements", len(statements))
	return nil
}
