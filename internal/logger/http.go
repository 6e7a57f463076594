// 包 logger：http 访问日志中间件，记录方法、路径、状态、耗时、字节数与远端地址
package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// StatusWriter：包装 ResponseWriter 以捕获状态码与写出字节数
type StatusWriter struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	w.Status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.Bytes += n
	return n, err
}

// AccessMiddleware：生成访问日志中间件
// 约束：不读取请求体；远端地址取自 RemoteAddr，代理链路下的真实来源由业务层解析
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := NewStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)
			l.Debug("http_access",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", sw.Status,
				"bytes", sw.Bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", r.RemoteAddr,
			)
		})
	}
}
