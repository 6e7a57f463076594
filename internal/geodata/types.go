package geodata

import (
	"time"
)

// 文档注释：府（省）记录
// 约束：Code 在集合内唯一；ID 对应 PROVINCE_ID，与 Code 视为不同的键，不做数值等同假设。
type Province struct {
	ID          int    `json:"PROVINCE_ID"`
	Code        string `json:"CODE"`
	NameLocal   string `json:"PROVINCE_THAI"`
	NameEnglish string `json:"PROVINCE_ENGLISH"`
	UpdatedAt   string `json:"UPDATED_AT,omitempty"`
	CreatedAt   string `json:"CREATED_AT,omitempty"`
}

// 文档注释：县（อำเภอ）记录，ProvinceID 指向 Province.ID
type District struct {
	ID          int    `json:"DISTRICT_ID"`
	ProvinceID  int    `json:"PROVINCE_ID"`
	Code        string `json:"CODE"`
	NameLocal   string `json:"DISTRICT_THAI"`
	NameEnglish string `json:"DISTRICT_ENGLISH"`
	UpdatedAt   string `json:"UPDATED_AT,omitempty"`
	CreatedAt   string `json:"CREATED_AT,omitempty"`
}

// 文档注释：区（ตำบล）记录，DistrictID 指向 District.ID
type SubDistrict struct {
	ID          int    `json:"SUB_DISTRICT_ID"`
	DistrictID  int    `json:"DISTRICT_ID"`
	Code        string `json:"CODE"`
	NameLocal   string `json:"SUB_DISTRICT_THAI"`
	NameEnglish string `json:"SUB_DISTRICT_ENGLISH"`
	UpdatedAt   string `json:"UPDATED_AT,omitempty"`
	CreatedAt   string `json:"CREATED_AT,omitempty"`
}

// Record：表格编码的一行，键为表头列名
type Record map[string]string

// Table：表格文件的完整内容，Rows 保持文件顺序
type Table struct {
	Header []string
	Rows   []Record
}

// Statistics：三类实体的行数
type Statistics struct {
	TotalProvinces    int `json:"total_provinces"`
	TotalDistricts    int `json:"total_districts"`
	TotalSubDistricts int `json:"total_sub_districts"`
}

// 文档注释：府的层级视图
// 背景：聚合府本身、下属县以及这些县下的区数量，供浏览与导出使用。
type Hierarchy struct {
	Province         Province   `json:"province"`
	Districts        []District `json:"districts"`
	SubDistrictCount int        `json:"sub_districts_count"`
}

// ConsistencyReport：两种编码的标识键集合差异
type ConsistencyReport struct {
	Dataset    Dataset   `json:"-"`
	JSONCount  int       `json:"json_count"`
	CSVCount   int       `json:"csv_count"`
	OnlyInJSON []string  `json:"only_in_json"`
	OnlyInCSV  []string  `json:"only_in_csv"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Consistent：两侧键集合完全一致
func (c ConsistencyReport) Consistent() bool {
	return len(c.OnlyInJSON) == 0 && len(c.OnlyInCSV) == 0
}
