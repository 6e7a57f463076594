package geodata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"geodata-api/internal/logger"
	"io"
	"path/filepath"

	"github.com/natefinch/atomic"
)

var errExportOverwritesSource = errors.New("export target is a dataset file")

// WriteJSON：按数据集顶层键写出文档，格式与 json/ 目录一致
func WriteJSON(w io.Writer, ds Dataset, items any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(map[string]any{ds.String(): items})
}

// WriteCSV：按表头顺序写出表格
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	row := make([]string, len(t.Header))
	for _, rec := range t.Rows {
		for i, h := range t.Header {
			row[i] = rec[h]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// 文档注释：导出数据集到新文件
// 背景：先完整编码到内存，再原子替换目标文件，避免半写文件。
// 约束：目标路径不得指向数据集自身的任何文件。
func (r *Repository) Export(ds Dataset, f Format, dst string) error {
	abs, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	for _, src := range []string{r.Path(ds, Structured), r.Path(ds, Tabular)} {
		if s, e := filepath.Abs(src); e == nil && s == abs {
			return fmt.Errorf("%w: %s", errExportOverwritesSource, dst)
		}
	}
	var buf bytes.Buffer
	if f == Tabular {
		t, err := r.LoadTable(ds)
		if err != nil {
			return err
		}
		if err := WriteCSV(&buf, t); err != nil {
			return err
		}
	} else {
		var items any
		switch ds {
		case Provinces:
			items, err = r.LoadProvinces(Structured)
		case Districts:
			items, err = r.LoadDistricts(Structured)
		default:
			items, err = r.LoadSubDistricts(Structured)
		}
		if err != nil {
			return err
		}
		if err := WriteJSON(&buf, ds, items); err != nil {
			return err
		}
	}
	n := buf.Len()
	if err := atomic.WriteFile(dst, &buf); err != nil {
		return err
	}
	logger.L().Info("geodata_export_done", "dataset", ds.String(), "format", f.String(), "dst", dst, "bytes", n)
	return nil
}
