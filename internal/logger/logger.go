// 包 logger：统一初始化与获取日志器；通过环境变量控制日志级别、输出格式与源码位置
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// 默认日志器：在进程级复用；并发读取安全
var defaultLogger atomic.Pointer[slog.Logger]

// Setup：按环境变量初始化默认日志器并输出到标准错误
// LOG_LEVEL=debug|info|warn|error，LOG_FORMAT=json|text，LOG_SOURCE=true 附带源码位置
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter：同 Setup，但输出到 w；CLI 与测试用于重定向
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL")), AddSource: os.Getenv("LOG_SOURCE") == "true"}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l := slog.New(h).With("svc", "geodata")
	defaultLogger.Store(l)
	return l
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；未初始化时回退到 Setup
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return Setup()
}
