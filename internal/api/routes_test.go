package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"geodata-api/internal/geodata"
	"geodata-api/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureDir = filepath.Join("..", "geodata", "testdata")

type usageCall struct {
	Route      string
	NewVisitor bool
}

type fakeUsage struct {
	mu      sync.Mutex
	calls   []usageCall
	failGet bool
}

func (f *fakeUsage) IncrStats(_ context.Context, route string, newVisitor bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, usageCall{Route: route, NewVisitor: newVisitor})
	return nil
}

func (f *fakeUsage) GetTotals(context.Context) (*store.Totals, error) {
	if f.failGet {
		return nil, errors.New("connection refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &store.Totals{Routes: map[string]int64{}}
	for _, c := range f.calls {
		t.Total++
		t.Routes[c.Route]++
	}
	t.Today = t.Total
	return t, nil
}

func do(t *testing.T, h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func fixtureRoutes(t *testing.T, usage UsageStore) *http.ServeMux {
	t.Helper()
	return BuildRoutes(geodata.New(fixtureDir), usage, nil, "secret")
}

func Test_Provinces_Lists_Same_Data_In_Both_Formats(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)
	type list struct {
		Format    string             `json:"format"`
		Count     int                `json:"count"`
		Provinces []geodata.Province `json:"provinces"`
	}

	js := do(t, mux, http.MethodGet, "/provinces", nil)
	require.Equal(t, http.StatusOK, js.Code)
	assert.Equal(t, "application/json; charset=utf-8", js.Header().Get("content-type"))
	a := decode[list](t, js)

	cs := do(t, mux, http.MethodGet, "/provinces?format=csv", nil)
	require.Equal(t, http.StatusOK, cs.Code)
	b := decode[list](t, cs)

	assert.Equal(t, "json", a.Format)
	assert.Equal(t, "csv", b.Format)
	assert.Equal(t, 5, a.Count)
	if diff := cmp.Diff(a.Provinces, b.Provinces); diff != "" {
		t.Fatalf("json vs csv provinces (-json +csv):\n%s", diff)
	}

	bad := do(t, mux, http.MethodGet, "/provinces?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func Test_Districts_And_SubDistricts_Lists(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)

	d := decode[map[string]json.RawMessage](t, do(t, mux, http.MethodGet, "/districts", nil))
	var ds []geodata.District
	require.NoError(t, json.Unmarshal(d["districts"], &ds))
	assert.Len(t, ds, 7)

	s := decode[map[string]json.RawMessage](t, do(t, mux, http.MethodGet, "/sub_districts?format=csv", nil))
	var sds []geodata.SubDistrict
	require.NoError(t, json.Unmarshal(s["sub_districts"], &sds))
	assert.Len(t, sds, 8)
}

func Test_Province_By_Code(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)

	ok := do(t, mux, http.MethodGet, "/provinces/10", nil)
	require.Equal(t, http.StatusOK, ok.Code)
	p := decode[geodata.Province](t, ok)
	assert.Equal(t, "10", p.Code)
	assert.Equal(t, "Bangkok", p.NameEnglish)
	assert.Equal(t, "กรุงเทพมหานคร", p.NameLocal)

	miss := do(t, mux, http.MethodGet, "/provinces/99", nil)
	assert.Equal(t, http.StatusNotFound, miss.Code)
	assert.Equal(t, "province not found", decode[errorResult](t, miss).Error)
}

func Test_Search_Provinces(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)

	testCases := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "EnglishSubstring", target: "/provinces/search?q=chiang&lang=english", want: []string{"50", "57"}},
		{name: "ThaiSubstring", target: "/provinces/search?q=%E0%B9%80%E0%B8%8A%E0%B8%B5%E0%B8%A2%E0%B8%87", want: []string{"50", "57"}},
		{name: "EmptyQueryReturnsAll", target: "/provinces/search?lang=en", want: []string{"10", "11", "50", "57", "90"}},
		{name: "NoMatch", target: "/provinces/search?q=atlantis&lang=en", want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, mux, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			res := decode[searchResult](t, rec)
			got := []string{}
			for _, p := range res.Provinces {
				got = append(got, p.Code)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.want), res.Count)
		})
	}

	bad := do(t, mux, http.MethodGet, "/provinces/search?q=x&lang=klingon", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func Test_Districts_By_Province_ID_Keeps_Column_Names(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)

	rec := do(t, mux, http.MethodGet, "/provinces/1/districts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[districtsResult](t, rec)
	require.Len(t, res.Districts, 3)
	assert.Equal(t, 1, res.ProvinceID)
	assert.Equal(t, "Khet Phra Nakhon", res.Districts[0]["DISTRICT_ENGLISH"])
	assert.Equal(t, "1", res.Districts[0]["PROVINCE_ID"])

	empty := decode[districtsResult](t, do(t, mux, http.MethodGet, "/provinces/99/districts", nil))
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Districts)

	bad := do(t, mux, http.MethodGet, "/provinces/abc/districts", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func Test_Hierarchy(t *testing.T) {
	t.Parallel()

	mux := fixtureRoutes(t, nil)

	rec := do(t, mux, http.MethodGet, "/provinces/1/hierarchy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[geodata.Hierarchy](t, rec)
	assert.Equal(t, "Bangkok", h.Province.NameEnglish)
	assert.Len(t, h.Districts, 3)
	assert.Equal(t, 3, h.SubDistrictCount)

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/provinces/99/hierarchy", nil).Code)
}

func Test_Stats(t *testing.T) {
	t.Parallel()

	rec := do(t, fixtureRoutes(t, nil), http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, geodata.Statistics{TotalProvinces: 5, TotalDistricts: 7, TotalSubDistricts: 8}, decode[geodata.Statistics](t, rec))
}

func Test_Missing_Dataset_Returns_500(t *testing.T) {
	t.Parallel()

	mux := BuildRoutes(geodata.New(t.TempDir()), nil, nil, "")
	for _, target := range []string{"/provinces", "/provinces/10", "/provinces/1/districts", "/stats"} {
		rec := do(t, mux, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, "dataset file not found", decode[errorResult](t, rec).Error, target)
	}
}

func Test_Usage_Records_Successful_Queries_Only(t *testing.T) {
	t.Parallel()

	usage := &fakeUsage{}
	mux := fixtureRoutes(t, usage)

	do(t, mux, http.MethodGet, "/provinces/10", map[string]string{"x-forwarded-for": "203.0.113.7"})
	do(t, mux, http.MethodGet, "/stats", nil)
	do(t, mux, http.MethodGet, "/provinces/abc/hierarchy", nil)
	do(t, mux, http.MethodGet, "/usage", nil)

	want := []usageCall{{Route: "province", NewVisitor: true}, {Route: "stats", NewVisitor: true}}
	if diff := cmp.Diff(want, usage.calls); diff != "" {
		t.Fatalf("usage calls (-want +got):\n%s", diff)
	}

	rec := do(t, mux, http.MethodGet, "/usage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tot := decode[store.Totals](t, rec)
	assert.EqualValues(t, 2, tot.Total)
	assert.EqualValues(t, 1, tot.Routes["stats"])
}

func Test_Usage_Unavailable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusServiceUnavailable, do(t, fixtureRoutes(t, nil), http.MethodGet, "/usage", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, fixtureRoutes(t, &fakeUsage{failGet: true}), http.MethodGet, "/usage", nil).Code)
}

func Test_Reload(t *testing.T) {
	t.Parallel()

	repo := geodata.New(fixtureDir)
	dyn, err := geodata.NewDynamic(repo)
	require.NoError(t, err)
	before := dyn.Load()

	mux := BuildRoutes(dyn, nil, nil, "secret")

	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodPost, "/reload", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodPost, "/reload", map[string]string{"x-admin-token": "wrong"}).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodGet, "/reload", nil).Code)

	rec := do(t, mux, http.MethodPost, "/reload", map[string]string{"x-admin-token": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotSame(t, before, dyn.Load())

	perCall := fixtureRoutes(t, nil)
	assert.Equal(t, http.StatusNotImplemented, do(t, perCall, http.MethodPost, "/reload", map[string]string{"x-admin-token": "secret"}).Code)

	noToken := BuildRoutes(dyn, nil, nil, "")
	assert.Equal(t, http.StatusUnauthorized, do(t, noToken, http.MethodPost, "/reload", map[string]string{"x-admin-token": ""}).Code)
}
