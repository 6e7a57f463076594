// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"geodata-api/internal/api"
	"geodata-api/internal/geodata"
	"geodata-api/internal/logger"
	"geodata-api/internal/metrics"
	"geodata-api/internal/middleware"
	"geodata-api/internal/migrate"
	"geodata-api/internal/store"
	"geodata-api/internal/utils"
	"geodata-api/internal/version"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 数据源：默认逐次读取文件；GEODATA_SNAPSHOT=true 时常驻快照并支持 /reload
	repo := geodata.NewFromEnv()
	stats, err := repo.Statistics()
	if err != nil {
		l.Error("geodata_open_error", "base", repo.BasePath(), "err", err)
		os.Exit(1)
	}
	l.Info("geodata_ready", "base", repo.BasePath(), "provinces", stats.TotalProvinces, "districts", stats.TotalDistricts, "sub_districts", stats.TotalSubDistricts)
	if os.Getenv("GEODATA_VERIFY_ON_START") != "false" {
		verifyOnStart(l, repo)
	}
	var src geodata.Source = repo
	if os.Getenv("GEODATA_SNAPSHOT") == "true" {
		dyn, err := geodata.NewDynamic(repo)
		if err != nil {
			l.Error("geodata_snapshot_error", "err", err)
			os.Exit(1)
		}
		src = dyn
	}

	// 用量统计：USAGE_STATS_ENABLED=true 时写入 PostgreSQL
	var usage api.UsageStore
	if os.Getenv("USAGE_STATS_ENABLED") == "true" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
			os.Exit(1)
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		usage = store.AttachDB(db)
	} else {
		l.Info("usage_stats_disabled")
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(src, usage, rc, os.Getenv("ADMIN_TOKEN"))
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	ui := os.Getenv("UI_DIST")
	if ui == "" {
		ui = filepath.Join("ui", "dist")
	}
	if fi, err := os.Stat(ui); err == nil && fi.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(ui)))
		l.Debug("config_ui_dir", "dir", ui)
	}
	// 向前端暴露 API 基础路径，避免硬编码
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'\n"))
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "geodata.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}

// verifyOnStart：比对两种编码的标识键，不一致只告警不退出
func verifyOnStart(l *slog.Logger, repo *geodata.Repository) {
	for _, ds := range []geodata.Dataset{geodata.Provinces, geodata.Districts, geodata.SubDistricts} {
		rep, err := repo.VerifyConsistency(ds)
		if err != nil {
			l.Warn("geodata_verify_error", "dataset", ds.String(), "err", err)
			continue
		}
		if !rep.Consistent() {
			l.Warn("geodata_inconsistent", "dataset", ds.String(), "only_json", len(rep.OnlyInJSON), "only_csv", len(rep.OnlyInCSV))
		}
	}
}
