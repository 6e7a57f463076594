// 包 utils：外部依赖（PostgreSQL/Redis/TLS 证书）的环境变量装配
package utils

import (
	"database/sql"
	"geodata-api/internal/logger"
	"net/url"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// BuildPostgresDSNFromEnv：由 PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE 组装 DSN
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432"),
		Path:   "/" + envOr("PG_DB", "geodata"),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(envOr("PG_USER", "postgres"), pass)
	} else {
		u.User = url.User(envOr("PG_USER", "postgres"))
	}
	u.RawQuery = "sslmode=" + envOr("PG_SSLMODE", "disable")
	return u.String()
}

// OpenPostgresFromEnv：打开连接池，PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 可覆盖默认值
// 约束：sql.Open 不建立连接，连通性由调用方 Ping 确认
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	maxOpen := 10
	maxIdle := 5
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_OPEN_CONNS")); e == nil && n > 0 {
		maxOpen = n
	}
	if n, e := strconv.Atoi(os.Getenv("PG_MAX_IDLE_CONNS")); e == nil && n >= 0 {
		maxIdle = n
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	logger.L().Debug("pg_pool", "max_open", maxOpen, "max_idle", maxIdle)
	return db, nil
}
