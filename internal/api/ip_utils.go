package api

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取访问者 IP（用于访客去重）
// 背景：优先常见反向代理头，最后回退远端地址；仅用作去重键，不参与任何查询。
// 约束：头部可被伪造；部署于未经信任的代理链路时访客数只作参考。
func getVisitorIP(r *http.Request) string {
	h := r.Header
	for _, k := range []string{"x-forwarded-for", "cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if x := h.Get(k); x != "" {
			return strings.TrimSpace(strings.Split(x, ",")[0])
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			return strings.Trim(y, "\" ")
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
