package geodata

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// openDataFile：打开数据文件，缺失时返回 *NotFoundError
func openDataFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("geodata: open %s: %w", path, err)
	}
	return f, nil
}

var utf8BOM = []byte("\ufeff")

// skipBOM：丢弃开头的 UTF-8 BOM，两种编码共用
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// 文档注释：JSON 文档解码
// 背景：文档形如 {"provinces": [...]}，顶层键与数据集基名一致。
// 约束：顶层键缺失、元素缺少必需字段、类型不符、文档之后仍有内容均返回 ParseError；不返回部分填充的记录。
func decodeDocument[T any](path string, r io.Reader, ds Dataset) ([]T, error) {
	dec := json.NewDecoder(skipBOM(r))
	var top map[string]json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, &ParseError{Path: path, Err: errors.New("unexpected data after top-level document")}
	}
	raw, ok := top[ds.String()]
	if !ok {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("missing top-level key %q", ds.String())}
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	for i, it := range items {
		for _, k := range requiredColumns[ds] {
			if v, ok := it[k]; !ok || string(v) == "null" {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("record %d: missing field %s", i, k)}
			}
		}
	}
	out := make([]T, 0, len(items))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return out, nil
}

// 文档注释：CSV 表格解码
// 约束：首行为表头（容忍 UTF-8 BOM，见 skipBOM）；必需列缺失、列数与表头不一致的行均返回 ParseError。
func decodeTable(path string, r io.Reader, ds Dataset) (*Table, error) {
	cr := csv.NewReader(skipBOM(r))
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Path: path, Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvParseError(path, err)
	}
	have := make(map[string]bool, len(header))
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		have[header[i]] = true
	}
	for _, col := range requiredColumns[ds] {
		if !have[col] {
			return nil, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("missing column %s", col)}
		}
	}
	t := &Table{Header: header, Rows: []Record{}}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(path, err)
		}
		row := make(Record, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func csvParseError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Path: path, Line: pe.StartLine, Err: pe.Err}
	}
	return &ParseError{Path: path, Err: err}
}

// intColumn：读取整数列；required 为 false 时缺列或空值记为 0
// line 为数据行在文件中的行号（表头为第 1 行）
func intColumn(path string, line int, rec Record, col string, required bool) (int, error) {
	v, ok := rec[col]
	v = strings.TrimSpace(v)
	if !required && (!ok || v == "") {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Path: path, Line: line, Err: fmt.Errorf("column %s: %w", col, err)}
	}
	return n, nil
}

func provincesFromTable(path string, t *Table) ([]Province, error) {
	out := make([]Province, 0, len(t.Rows))
	for i, rec := range t.Rows {
		id, err := intColumn(path, i+2, rec, "PROVINCE_ID", false)
		if err != nil {
			return nil, err
		}
		out = append(out, Province{
			ID:          id,
			Code:        rec["CODE"],
			NameLocal:   rec["PROVINCE_THAI"],
			NameEnglish: rec["PROVINCE_ENGLISH"],
			UpdatedAt:   rec["UPDATED_AT"],
			CreatedAt:   rec["CREATED_AT"],
		})
	}
	return out, nil
}

func districtsFromTable(path string, t *Table) ([]District, error) {
	out := make([]District, 0, len(t.Rows))
	for i, rec := range t.Rows {
		id, err := intColumn(path, i+2, rec, "DISTRICT_ID", false)
		if err != nil {
			return nil, err
		}
		pid, err := intColumn(path, i+2, rec, "PROVINCE_ID", true)
		if err != nil {
			return nil, err
		}
		out = append(out, District{
			ID:          id,
			ProvinceID:  pid,
			Code:        rec["CODE"],
			NameLocal:   rec["DISTRICT_THAI"],
			NameEnglish: rec["DISTRICT_ENGLISH"],
			UpdatedAt:   rec["UPDATED_AT"],
			CreatedAt:   rec["CREATED_AT"],
		})
	}
	return out, nil
}

func subDistrictsFromTable(path string, t *Table) ([]SubDistrict, error) {
	out := make([]SubDistrict, 0, len(t.Rows))
	for i, rec := range t.Rows {
		id, err := intColumn(path, i+2, rec, "SUB_DISTRICT_ID", false)
		if err != nil {
			return nil, err
		}
		did, err := intColumn(path, i+2, rec, "DISTRICT_ID", true)
		if err != nil {
			return nil, err
		}
		out = append(out, SubDistrict{
			ID:          id,
			DistrictID:  did,
			Code:        rec["CODE"],
			NameLocal:   rec["SUB_DISTRICT_THAI"],
			NameEnglish: rec["SUB_DISTRICT_ENGLISH"],
			UpdatedAt:   rec["UPDATED_AT"],
			CreatedAt:   rec["CREATED_AT"],
		})
	}
	return out, nil
}
