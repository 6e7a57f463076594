// 包 store: 用量统计的 PostgreSQL 读写层；只记录查询次数与访客数，不存放地理数据
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"geodata-api/internal/logger"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：递增用量计数
// 背景：一次成功查询递增累计、当日与按路由计数；newVisitor 为 true 时同时递增访客计数。
// 约束：在单个事务内完成，失败整体回滚，不产生半更新。
func (s *Store) IncrStats(ctx context.Context, route string, newVisitor bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	visitors := 0
	if newVisitor {
		visitors = 1
	}
	stmts := []struct {
		q    string
		args []any
	}{
		{"UPDATE _geo_stats_total SET total_queries=total_queries+1, total_visitors=total_visitors+$1 WHERE id=1", []any{visitors}},
		{`INSERT INTO _geo_stats_daily(day, queries, visitors) VALUES(current_date, 1, $1)
          ON CONFLICT (day) DO UPDATE SET queries=_geo_stats_daily.queries+1, visitors=_geo_stats_daily.visitors+EXCLUDED.visitors`, []any{visitors}},
		{`INSERT INTO _geo_stats_route(route, queries) VALUES($1, 1)
          ON CONFLICT (route) DO UPDATE SET queries=_geo_stats_route.queries+1, last_seen=now()`, []any{route}},
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.q, st.args...); err != nil {
			return fmt.Errorf("incr stats: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats tx: %w", err)
	}
	logger.L().Debug("stats_incr", "route", route, "new_visitor", newVisitor)
	return nil
}

// Totals: 用量统计返回结构
type Totals struct {
	Total         int64            `json:"total"`
	Today         int64            `json:"today"`
	Visitors      int64            `json:"visitors"`
	TodayVisitors int64            `json:"today_visitors"`
	Routes        map[string]int64 `json:"routes"`
}

// GetTotals: 读取累计、当日与按路由的查询次数；当日尚无记录时为 0
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	t := Totals{Routes: map[string]int64{}}
	row := s.db.QueryRowContext(ctx, "SELECT total_queries, total_visitors FROM _geo_stats_total WHERE id=1")
	if err := row.Scan(&t.Total, &t.Visitors); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read totals: %w", err)
	}
	row2 := s.db.QueryRowContext(ctx, "SELECT queries, visitors FROM _geo_stats_daily WHERE day=current_date")
	if err := row2.Scan(&t.Today, &t.TodayVisitors); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read daily totals: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT route, queries FROM _geo_stats_route ORDER BY route")
	if err != nil {
		return nil, fmt.Errorf("read route totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var route string
		var n int64
		if err := rows.Scan(&route, &n); err != nil {
			return nil, fmt.Errorf("scan route totals: %w", err)
		}
		t.Routes[route] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read route totals: %w", err)
	}
	logger.L().Debug("stats_totals", "total", t.Total, "today", t.Today, "routes", len(t.Routes))
	return &t, nil
}
