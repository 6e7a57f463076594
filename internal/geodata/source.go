package geodata

// Source：查询层依赖的最小契约，由 *Repository、*Snapshot、*Dynamic 实现
type Source interface {
	LoadProvinces(f Format) ([]Province, error)
	LoadDistricts(f Format) ([]District, error)
	LoadSubDistricts(f Format) ([]SubDistrict, error)
	ProvinceByCode(code string) (Province, bool, error)
	SearchProvincesByName(query string, lang Language) ([]Province, error)
	DistrictsByProvinceID(provinceID int) ([]Record, error)
	Statistics() (Statistics, error)
	ProvinceHierarchy(provinceID int) (Hierarchy, bool, error)
}

var (
	_ Source = (*Repository)(nil)
	_ Source = (*Snapshot)(nil)
	_ Source = (*Dynamic)(nil)
)
