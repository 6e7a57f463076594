package geodata

import (
	"geodata-api/internal/logger"
	"maps"
	"slices"
	"time"
)

// 文档注释：数据集只读快照
// 背景：一次性读取六个文件并常驻内存，查询期共享；数据集在进程生命周期内不变，因此与逐次读取语义一致。
// 约束：构建后不再修改；对外返回的切片与记录均为副本，调用方修改不影响快照。
type Snapshot struct {
	provinces    [2][]Province
	districts    [2][]District
	subDistricts [2][]SubDistrict
	tables       [3]*Table
	districtsCSV string
	BuiltAt      time.Time
}

// LoadSnapshot：读取并解码全部文件，任一文件失败即返回错误，不产生部分快照
func LoadSnapshot(r *Repository) (*Snapshot, error) {
	t0 := time.Now()
	s := &Snapshot{districtsCSV: r.Path(Districts, Tabular)}
	var err error
	if s.provinces[Structured], err = r.LoadProvinces(Structured); err != nil {
		return nil, err
	}
	if s.districts[Structured], err = r.LoadDistricts(Structured); err != nil {
		return nil, err
	}
	if s.subDistricts[Structured], err = r.LoadSubDistricts(Structured); err != nil {
		return nil, err
	}
	for _, ds := range []Dataset{Provinces, Districts, SubDistricts} {
		if s.tables[ds], err = r.LoadTable(ds); err != nil {
			return nil, err
		}
	}
	if s.provinces[Tabular], err = provincesFromTable(r.Path(Provinces, Tabular), s.tables[Provinces]); err != nil {
		return nil, err
	}
	if s.districts[Tabular], err = districtsFromTable(r.Path(Districts, Tabular), s.tables[Districts]); err != nil {
		return nil, err
	}
	if s.subDistricts[Tabular], err = subDistrictsFromTable(r.Path(SubDistricts, Tabular), s.tables[SubDistricts]); err != nil {
		return nil, err
	}
	s.BuiltAt = time.Now()
	logger.L().Info("geodata_snapshot_built",
		"provinces", len(s.provinces[Structured]),
		"districts", len(s.districts[Structured]),
		"sub_districts", len(s.subDistricts[Structured]),
		"ms", time.Since(t0).Milliseconds(),
	)
	return s, nil
}

func (s *Snapshot) LoadProvinces(f Format) ([]Province, error) {
	return slices.Clone(s.provinces[f.slot()]), nil
}

func (s *Snapshot) LoadDistricts(f Format) ([]District, error) {
	return slices.Clone(s.districts[f.slot()]), nil
}

func (s *Snapshot) LoadSubDistricts(f Format) ([]SubDistrict, error) {
	return slices.Clone(s.subDistricts[f.slot()]), nil
}

func (s *Snapshot) ProvinceByCode(code string) (Province, bool, error) {
	p, ok := findProvinceByCode(s.provinces[Structured], code)
	return p, ok, nil
}

func (s *Snapshot) SearchProvincesByName(query string, lang Language) ([]Province, error) {
	return filterProvinces(s.provinces[Structured], query, lang), nil
}

func (s *Snapshot) DistrictsByProvinceID(provinceID int) ([]Record, error) {
	recs, err := filterDistrictRecords(s.districtsCSV, s.tables[Districts], provinceID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i] = maps.Clone(recs[i])
	}
	return recs, nil
}

func (s *Snapshot) Statistics() (Statistics, error) {
	return statisticsOf(s.tables), nil
}

func (s *Snapshot) ProvinceHierarchy(provinceID int) (Hierarchy, bool, error) {
	h, ok := buildHierarchy(s.provinces[Structured], s.districts[Structured], s.subDistricts[Structured], provinceID)
	return h, ok, nil
}
