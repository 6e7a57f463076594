// 包 api：集中注册 HTTP API 路由以解耦主入口；所有查询经 geodata.Source 完成
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"geodata-api/internal/geodata"
	"geodata-api/internal/logger"
	"geodata-api/internal/metrics"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type server struct {
	src        geodata.Source
	usage      UsageStore
	rc         *redis.Client
	adminToken string
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀；usage 与 rc 可为 nil，分别关闭用量统计与访客去重。
// 约束：adminToken 为空时 /reload 始终拒绝。
func BuildRoutes(src geodata.Source, usage UsageStore, rc *redis.Client, adminToken string) *http.ServeMux {
	s := &server{src: src, usage: usage, rc: rc, adminToken: adminToken}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /provinces", s.instrument("provinces", true, listHandler(geodata.Provinces, src.LoadProvinces)))
	mux.HandleFunc("GET /provinces/search", s.instrument("provinces_search", true, s.searchProvinces))
	mux.HandleFunc("GET /provinces/{code}", s.instrument("province", true, s.provinceByCode))
	mux.HandleFunc("GET /provinces/{id}/districts", s.instrument("province_districts", true, s.districtsByProvince))
	mux.HandleFunc("GET /provinces/{id}/hierarchy", s.instrument("province_hierarchy", true, s.hierarchy))
	mux.HandleFunc("GET /districts", s.instrument("districts", true, listHandler(geodata.Districts, src.LoadDistricts)))
	mux.HandleFunc("GET /sub_districts", s.instrument("sub_districts", true, listHandler(geodata.SubDistricts, src.LoadSubDistricts)))
	mux.HandleFunc("GET /stats", s.instrument("stats", true, s.statistics))
	mux.HandleFunc("GET /usage", s.instrument("usage", false, s.usageTotals))
	mux.HandleFunc("POST /reload", s.instrument("reload", false, s.reload))
	return mux
}

// instrument：记录路由级指标；record 为 true 且请求成功时累计用量
func (s *server) instrument(route string, record bool, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := logger.NewStatusWriter(w)
		t0 := time.Now()
		h(sw, r)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(sw.Status/100)+"xx").Inc()
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(t0).Milliseconds()))
		if record && sw.Status < http.StatusBadRequest {
			s.recordUsage(r, route)
		}
	}
}

func (s *server) recordUsage(r *http.Request, route string) {
	if s.usage == nil {
		return
	}
	ctx := r.Context()
	newVisitor := false
	if v := getVisitorIP(r); v != "" {
		first, err := bloomCheckAndSet(ctx, s.rc, visitorBloomKey(time.Now()), bloomPositions([]byte(v), visitorBloomBits, visitorBloomHashes), visitorBloomTTL)
		if err != nil {
			metrics.VisitorBloomErrorsTotal.Inc()
			logger.L().Debug("visitor_bloom_error", "err", err)
		}
		newVisitor = first
	}
	if err := s.usage.IncrStats(ctx, route, newVisitor); err != nil {
		metrics.UsageWriteFailTotal.Inc()
		logger.L().Error("usage_write_error", "route", route, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResult{Error: msg})
}

// datasetError：数据文件缺失或损坏属于部署问题，统一 500 并写 error 日志
func datasetError(w http.ResponseWriter, r *http.Request, err error) {
	msg := "dataset unavailable"
	switch {
	case errors.Is(err, geodata.ErrNotFound):
		msg = "dataset file not found"
	case errors.Is(err, geodata.ErrParse):
		msg = "dataset file malformed"
	}
	logger.L().Error("geodata_query_error", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func listHandler[T any](ds geodata.Dataset, load func(geodata.Format) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := geodata.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := load(f)
		if err != nil {
			datasetError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"format":     f.String(),
			"count":      len(items),
			ds.String(): items,
		})
	}
}

func (s *server) provinceByCode(w http.ResponseWriter, r *http.Request) {
	p, ok, err := s.src.ProvinceByCode(r.PathValue("code"))
	if err != nil {
		datasetError(w, r, err)
		return
	}
	if !ok {
		metrics.EmptyResultsTotal.WithLabelValues("province").Inc()
		writeError(w, http.StatusNotFound, "province not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) searchProvinces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang, err := geodata.ParseLanguage(q.Get("lang"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ps, err := s.src.SearchProvincesByName(q.Get("q"), lang)
	if err != nil {
		datasetError(w, r, err)
		return
	}
	if len(ps) == 0 {
		metrics.EmptyResultsTotal.WithLabelValues("provinces_search").Inc()
	}
	writeJSON(w, http.StatusOK, searchResult{Query: q.Get("q"), Lang: lang.String(), Count: len(ps), Provinces: ps})
}

func provinceID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid province id")
		return 0, false
	}
	return id, true
}

func (s *server) districtsByProvince(w http.ResponseWriter, r *http.Request) {
	id, ok := provinceID(w, r)
	if !ok {
		return
	}
	recs, err := s.src.DistrictsByProvinceID(id)
	if err != nil {
		datasetError(w, r, err)
		return
	}
	if len(recs) == 0 {
		metrics.EmptyResultsTotal.WithLabelValues("province_districts").Inc()
	}
	writeJSON(w, http.StatusOK, districtsResult{ProvinceID: id, Count: len(recs), Districts: recs})
}

func (s *server) hierarchy(w http.ResponseWriter, r *http.Request) {
	id, ok := provinceID(w, r)
	if !ok {
		return
	}
	h, found, err := s.src.ProvinceHierarchy(id)
	if err != nil {
		datasetError(w, r, err)
		return
	}
	if !found {
		metrics.EmptyResultsTotal.WithLabelValues("province_hierarchy").Inc()
		writeError(w, http.StatusNotFound, "province not found")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *server) statistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.src.Statistics()
	if err != nil {
		datasetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) usageTotals(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage stats disabled")
		return
	}
	t, err := s.usage.GetTotals(r.Context())
	if err != nil {
		logger.L().Error("usage_read_error", "err", err)
		writeError(w, http.StatusInternalServerError, "usage stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *server) reload(w http.ResponseWriter, r *http.Request) {
	tok := r.Header.Get("x-admin-token")
	if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(tok), []byte(s.adminToken)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rl, ok := s.src.(Reloader)
	if !ok {
		writeError(w, http.StatusNotImplemented, "data source reads files per request")
		return
	}
	if err := rl.Reload(); err != nil {
		datasetError(w, r, err)
		return
	}
	st, err := s.src.Statistics()
	if err != nil {
		datasetError(w, r, err)
		return
	}
	logger.L().Info("geodata_reloaded", "provinces", st.TotalProvinces, "districts", st.TotalDistricts, "sub_districts", st.TotalSubDistricts)
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": true, "statistics": st})
}
