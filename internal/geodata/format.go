package geodata

import (
	"fmt"
	"strings"
)

// Format：磁盘编码
type Format int

const (
	// Structured 对应 json/ 目录下的文档
	Structured Format = iota
	// Tabular 对应 csv/ 目录下带表头的表格
	Tabular
)

func (f Format) String() string {
	switch f {
	case Structured:
		return "json"
	case Tabular:
		return "csv"
	}
	return "unknown"
}

// slot：非 Tabular 的取值一律按 Structured 处理，与 Repository 的分支一致
func (f Format) slot() Format {
	if f == Tabular {
		return Tabular
	}
	return Structured
}

// ParseFormat：解析 json|structured|csv|tabular，空串回退为 Structured
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json", "structured":
		return Structured, nil
	case "csv", "tabular":
		return Tabular, nil
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

// Language：名称字段选择
type Language int

const (
	// Local 选择泰文名称列
	Local Language = iota
	// English 选择英文名称列
	English
)

func (l Language) String() string {
	switch l {
	case Local:
		return "thai"
	case English:
		return "english"
	}
	return "unknown"
}

// ParseLanguage：解析 thai|th|local|english|en，空串回退为 Local
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "thai", "th", "local":
		return Local, nil
	case "english", "en":
		return English, nil
	}
	return 0, fmt.Errorf("unknown language %q", s)
}

// Dataset：三类实体文件
type Dataset int

const (
	Provinces Dataset = iota
	Districts
	SubDistricts
)

// String：文件基名，同时也是 JSON 文档的顶层键
func (d Dataset) String() string {
	switch d {
	case Provinces:
		return "provinces"
	case Districts:
		return "districts"
	case SubDistricts:
		return "sub_districts"
	}
	return "unknown"
}

// ParseDataset：按文件基名解析，接受 sub-districts 写法
func ParseDataset(s string) (Dataset, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "provinces":
		return Provinces, nil
	case "districts":
		return Districts, nil
	case "sub_districts", "subdistricts":
		return SubDistricts, nil
	}
	return 0, fmt.Errorf("unknown dataset %q", s)
}

// 各数据集必需列（表格）与必需字段（文档）共用同一组名称
var requiredColumns = map[Dataset][]string{
	Provinces:    {"CODE", "PROVINCE_THAI", "PROVINCE_ENGLISH"},
	Districts:    {"PROVINCE_ID", "DISTRICT_THAI", "DISTRICT_ENGLISH"},
	SubDistricts: {"DISTRICT_ID", "SUB_DISTRICT_THAI", "SUB_DISTRICT_ENGLISH"},
}
