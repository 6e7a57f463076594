package geodata

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 数据文件不存在，可用 errors.Is 判定
	ErrNotFound = errors.New("geodata file not found")
	// ErrParse 数据文件内容无法解码
	ErrParse = errors.New("geodata file malformed")
)

// NotFoundError：期望路径上的数据文件不存在
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("geodata: %s: not found", e.Path)
}

func (e *NotFoundError) Unwrap() []error { return []error{ErrNotFound, e.Err} }

// ParseError：文件存在但内容不符合期望结构
// Line 为表格文件的行号（从 1 起），文档文件为 0。
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("geodata: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("geodata: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }
