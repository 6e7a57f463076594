package geodata

import (
	"geodata-api/internal/logger"
	"geodata-api/internal/metrics"
	"sync/atomic"
)

// 文档注释：可热替换的快照持有者
// 背景：通过 atomic.Pointer 无锁切换快照；每次查询只读取一次当前快照，因此不会混用新旧两种编码的数据。
// 约束：Reload 失败时保留旧快照继续服务。
type Dynamic struct {
	repo *Repository
	cur  atomic.Pointer[Snapshot]
}

// NewDynamic：构建首个快照；失败直接返回错误
func NewDynamic(repo *Repository) (*Dynamic, error) {
	d := &Dynamic{repo: repo}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load：当前快照
func (d *Dynamic) Load() *Snapshot { return d.cur.Load() }

// Set：直接替换快照（s 不可为 nil）
func (d *Dynamic) Set(s *Snapshot) { d.cur.Store(s) }

// Reload：从仓库重新构建快照并替换
func (d *Dynamic) Reload() error {
	s, err := LoadSnapshot(d.repo)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("fail").Inc()
		logger.L().Error("geodata_snapshot_reload_error", "err", err)
		return err
	}
	d.cur.Store(s)
	metrics.SnapshotReloadsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (d *Dynamic) LoadProvinces(f Format) ([]Province, error) { return d.Load().LoadProvinces(f) }
func (d *Dynamic) LoadDistricts(f Format) ([]District, error) { return d.Load().LoadDistricts(f) }
func (d *Dynamic) LoadSubDistricts(f Format) ([]SubDistrict, error) {
	return d.Load().LoadSubDistricts(f)
}
func (d *Dynamic) ProvinceByCode(code string) (Province, bool, error) {
	return d.Load().ProvinceByCode(code)
}
func (d *Dynamic) SearchProvincesByName(query string, lang Language) ([]Province, error) {
	return d.Load().SearchProvincesByName(query, lang)
}
func (d *Dynamic) DistrictsByProvinceID(provinceID int) ([]Record, error) {
	return d.Load().DistrictsByProvinceID(provinceID)
}
func (d *Dynamic) Statistics() (Statistics, error) { return d.Load().Statistics() }
func (d *Dynamic) ProvinceHierarchy(provinceID int) (Hierarchy, bool, error) {
	return d.Load().ProvinceHierarchy(provinceID)
}
