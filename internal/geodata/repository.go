// 包 geodata：泰国府/县/区静态参考数据的只读访问层；同一数据集有 JSON 与 CSV 两种编码，解码后统一为同一组实体类型
package geodata

import (
	"errors"
	"geodata-api/internal/logger"
	"geodata-api/internal/metrics"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config：数据目录配置
// JSONDir/CSVDir 为相对 BasePath 的子目录，也可为绝对路径
type Config struct {
	BasePath string
	JSONDir  string
	CSVDir   string
}

// 文档注释：数据仓库
// 背景：每次调用都从磁盘读取并解码，调用之间不共享可变状态；需要常驻内存时使用 Snapshot。
// 约束：只读；所有文件句柄在任一返回路径上关闭；并发调用无需额外同步。
type Repository struct {
	basePath string
	jsonPath string
	csvPath  string
}

func New(basePath string) *Repository {
	return NewFromConfig(Config{BasePath: basePath})
}

func NewFromConfig(c Config) *Repository {
	if c.BasePath == "" {
		c.BasePath = "."
	}
	if c.JSONDir == "" {
		c.JSONDir = "json"
	}
	if c.CSVDir == "" {
		c.CSVDir = "csv"
	}
	r := &Repository{basePath: c.BasePath, jsonPath: c.JSONDir, csvPath: c.CSVDir}
	if !filepath.IsAbs(c.JSONDir) {
		r.jsonPath = filepath.Join(c.BasePath, c.JSONDir)
	}
	if !filepath.IsAbs(c.CSVDir) {
		r.csvPath = filepath.Join(c.BasePath, c.CSVDir)
	}
	return r
}

// NewFromEnv：读取 GEODATA_BASE_PATH / GEODATA_JSON_DIR / GEODATA_CSV_DIR
func NewFromEnv() *Repository {
	c := Config{
		BasePath: os.Getenv("GEODATA_BASE_PATH"),
		JSONDir:  os.Getenv("GEODATA_JSON_DIR"),
		CSVDir:   os.Getenv("GEODATA_CSV_DIR"),
	}
	if c.BasePath == "" {
		c.BasePath = filepath.Join("data", "geodata")
	}
	logger.L().Debug("geodata_env", "base", c.BasePath, "json_dir", c.JSONDir, "csv_dir", c.CSVDir)
	return NewFromConfig(c)
}

func (r *Repository) BasePath() string { return r.basePath }
func (r *Repository) JSONPath() string { return r.jsonPath }
func (r *Repository) CSVPath() string  { return r.csvPath }

// Path：数据集在指定编码下的文件路径
func (r *Repository) Path(ds Dataset, f Format) string {
	if f == Tabular {
		return filepath.Join(r.csvPath, ds.String()+".csv")
	}
	return filepath.Join(r.jsonPath, ds.String()+".json")
}

// observeLoad：记录加载耗时与失败类型
func observeLoad(ds Dataset, f Format, t0 time.Time, err error) {
	metrics.DatasetLoadsTotal.WithLabelValues(ds.String(), f.String()).Inc()
	metrics.DatasetLoadDurationMs.WithLabelValues(ds.String(), f.String()).Observe(float64(time.Since(t0).Milliseconds()))
	if err == nil {
		return
	}
	kind := "io"
	switch {
	case errors.Is(err, ErrNotFound):
		kind = "not_found"
	case errors.Is(err, ErrParse):
		kind = "parse"
	}
	metrics.DatasetLoadErrorsTotal.WithLabelValues(ds.String(), f.String(), kind).Inc()
	logger.L().Debug("geodata_load_error", "dataset", ds.String(), "format", f.String(), "kind", kind, "err", err)
}

func loadDocument[T any](path string, ds Dataset) (out []T, err error) {
	t0 := time.Now()
	defer func() { observeLoad(ds, Structured, t0, err) }()
	f, err := openDataFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out, err = decodeDocument[T](path, f, ds)
	if err != nil {
		return nil, err
	}
	logger.L().Debug("geodata_load", "dataset", ds.String(), "format", "json", "count", len(out))
	return out, nil
}

// LoadTable：读取数据集的 CSV 原始表格，保留表头列名与行顺序
func (r *Repository) LoadTable(ds Dataset) (t *Table, err error) {
	path := r.Path(ds, Tabular)
	t0 := time.Now()
	defer func() { observeLoad(ds, Tabular, t0, err) }()
	f, err := openDataFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err = decodeTable(path, f, ds)
	if err != nil {
		return nil, err
	}
	logger.L().Debug("geodata_load", "dataset", ds.String(), "format", "csv", "rows", len(t.Rows))
	return t, nil
}

func (r *Repository) LoadProvinces(f Format) ([]Province, error) {
	if f == Tabular {
		t, err := r.LoadTable(Provinces)
		if err != nil {
			return nil, err
		}
		return provincesFromTable(r.Path(Provinces, Tabular), t)
	}
	return loadDocument[Province](r.Path(Provinces, Structured), Provinces)
}

func (r *Repository) LoadDistricts(f Format) ([]District, error) {
	if f == Tabular {
		t, err := r.LoadTable(Districts)
		if err != nil {
			return nil, err
		}
		return districtsFromTable(r.Path(Districts, Tabular), t)
	}
	return loadDocument[District](r.Path(Districts, Structured), Districts)
}

func (r *Repository) LoadSubDistricts(f Format) ([]SubDistrict, error) {
	if f == Tabular {
		t, err := r.LoadTable(SubDistricts)
		if err != nil {
			return nil, err
		}
		return subDistrictsFromTable(r.Path(SubDistricts, Tabular), t)
	}
	return loadDocument[SubDistrict](r.Path(SubDistricts, Structured), SubDistricts)
}

// 文档注释：按代码查询府（JSON 编码）
// 返回：首个 Code 相等的记录；未命中返回 false 而非错误。
func (r *Repository) ProvinceByCode(code string) (Province, bool, error) {
	ps, err := r.LoadProvinces(Structured)
	if err != nil {
		return Province{}, false, err
	}
	p, ok := findProvinceByCode(ps, code)
	return p, ok, nil
}

// 文档注释：按名称子串搜索府（JSON 编码）
// 约束：大小写不敏感；空查询返回全部；结果保持文件顺序。
func (r *Repository) SearchProvincesByName(query string, lang Language) ([]Province, error) {
	ps, err := r.LoadProvinces(Structured)
	if err != nil {
		return nil, err
	}
	return filterProvinces(ps, query, lang), nil
}

// 文档注释：按 PROVINCE_ID 过滤县（CSV 编码）
// 返回：保留原始列名的记录，文件顺序；无匹配时返回空切片。
func (r *Repository) DistrictsByProvinceID(provinceID int) ([]Record, error) {
	t, err := r.LoadTable(Districts)
	if err != nil {
		return nil, err
	}
	return filterDistrictRecords(r.Path(Districts, Tabular), t, provinceID)
}

// Statistics：三张 CSV 表的行数
func (r *Repository) Statistics() (Statistics, error) {
	var tables [3]*Table
	for _, ds := range []Dataset{Provinces, Districts, SubDistricts} {
		t, err := r.LoadTable(ds)
		if err != nil {
			return Statistics{}, err
		}
		tables[ds] = t
	}
	return statisticsOf(tables), nil
}

// 文档注释：府层级视图（JSON 编码）
// 背景：按 PROVINCE_ID 找到府，聚合其下属县与这些县下的区数量。
// 返回：府不存在时返回 false。
func (r *Repository) ProvinceHierarchy(provinceID int) (Hierarchy, bool, error) {
	ps, err := r.LoadProvinces(Structured)
	if err != nil {
		return Hierarchy{}, false, err
	}
	ds, err := r.LoadDistricts(Structured)
	if err != nil {
		return Hierarchy{}, false, err
	}
	sds, err := r.LoadSubDistricts(Structured)
	if err != nil {
		return Hierarchy{}, false, err
	}
	h, ok := buildHierarchy(ps, ds, sds, provinceID)
	return h, ok, nil
}

// Name：按语言选择名称字段
func (p Province) Name(lang Language) string {
	if lang == English {
		return p.NameEnglish
	}
	return p.NameLocal
}

func (d District) Name(lang Language) string {
	if lang == English {
		return d.NameEnglish
	}
	return d.NameLocal
}

func (s SubDistrict) Name(lang Language) string {
	if lang == English {
		return s.NameEnglish
	}
	return s.NameLocal
}

func findProvinceByCode(ps []Province, code string) (Province, bool) {
	for _, p := range ps {
		if p.Code == code {
			return p, true
		}
	}
	return Province{}, false
}

func filterProvinces(ps []Province, query string, lang Language) []Province {
	q := strings.ToLower(query)
	out := []Province{}
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Name(lang)), q) {
			out = append(out, p)
		}
	}
	return out
}

func filterDistrictRecords(path string, t *Table, provinceID int) ([]Record, error) {
	out := []Record{}
	for i, rec := range t.Rows {
		pid, err := intColumn(path, i+2, rec, "PROVINCE_ID", true)
		if err != nil {
			return nil, err
		}
		if pid == provinceID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func statisticsOf(tables [3]*Table) Statistics {
	return Statistics{
		TotalProvinces:    len(tables[Provinces].Rows),
		TotalDistricts:    len(tables[Districts].Rows),
		TotalSubDistricts: len(tables[SubDistricts].Rows),
	}
}

func buildHierarchy(ps []Province, ds []District, sds []SubDistrict, provinceID int) (Hierarchy, bool) {
	var h Hierarchy
	found := false
	for _, p := range ps {
		if p.ID == provinceID {
			h.Province = p
			found = true
			break
		}
	}
	if !found {
		return Hierarchy{}, false
	}
	h.Districts = []District{}
	ids := make(map[int]struct{})
	for _, d := range ds {
		if d.ProvinceID == provinceID {
			h.Districts = append(h.Districts, d)
			ids[d.ID] = struct{}{}
		}
	}
	for _, s := range sds {
		if _, ok := ids[s.DistrictID]; ok {
			h.SubDistrictCount++
		}
	}
	return h, true
}
