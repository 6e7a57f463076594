package geodata

import (
	"slices"
	"strconv"
	"time"
)

// 文档注释：校验两种编码的标识键集合
// 背景：JSON 与 CSV 应表示同一份数据；两侧在同一次调用内读取，比较 Code（缺失时退回数值 ID）。
// 返回：差异报告；仅在文件缺失或无法解码时返回错误，键不一致本身不是错误。
func (r *Repository) VerifyConsistency(ds Dataset) (ConsistencyReport, error) {
	var jsonKeys, csvKeys []string
	switch ds {
	case Provinces:
		a, err := r.LoadProvinces(Structured)
		if err != nil {
			return ConsistencyReport{}, err
		}
		b, err := r.LoadProvinces(Tabular)
		if err != nil {
			return ConsistencyReport{}, err
		}
		for _, p := range a {
			jsonKeys = append(jsonKeys, p.Code)
		}
		for _, p := range b {
			csvKeys = append(csvKeys, p.Code)
		}
	case Districts:
		a, err := r.LoadDistricts(Structured)
		if err != nil {
			return ConsistencyReport{}, err
		}
		b, err := r.LoadDistricts(Tabular)
		if err != nil {
			return ConsistencyReport{}, err
		}
		for _, d := range a {
			jsonKeys = append(jsonKeys, identityKey(d.Code, d.ID))
		}
		for _, d := range b {
			csvKeys = append(csvKeys, identityKey(d.Code, d.ID))
		}
	case SubDistricts:
		a, err := r.LoadSubDistricts(Structured)
		if err != nil {
			return ConsistencyReport{}, err
		}
		b, err := r.LoadSubDistricts(Tabular)
		if err != nil {
			return ConsistencyReport{}, err
		}
		for _, s := range a {
			jsonKeys = append(jsonKeys, identityKey(s.Code, s.ID))
		}
		for _, s := range b {
			csvKeys = append(csvKeys, identityKey(s.Code, s.ID))
		}
	}
	rep := ConsistencyReport{
		Dataset:    ds,
		JSONCount:  len(jsonKeys),
		CSVCount:   len(csvKeys),
		OnlyInJSON: difference(jsonKeys, csvKeys),
		OnlyInCSV:  difference(csvKeys, jsonKeys),
		CheckedAt:  time.Now(),
	}
	return rep, nil
}

func identityKey(code string, id int) string {
	if code != "" {
		return code
	}
	return "#" + strconv.Itoa(id)
}

// difference：a 中存在而 b 中不存在的键，去重并排序
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, k := range b {
		in[k] = struct{}{}
	}
	out := []string{}
	for _, k := range a {
		if _, ok := in[k]; !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
