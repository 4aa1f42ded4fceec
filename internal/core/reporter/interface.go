/**
 * 报告输出接口定义
 * @date: 2026.02.10
 * @description: 每个目标一个报告 Sink，Finding 产生后立即写入，解耦 CSV/XLSX/无报告 三种输出。
 */

package reporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"enumdb/internal/core/model"
)

// ErrUnsupportedReport 不支持的报告格式
var ErrUnsupportedReport = errors.New("unsupported report format")

// TabularData 是一个可以被渲染为表格的数据接口
// 任何想要在控制台漂亮打印的结果都应该实现此接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Format 报告格式
type Format string

const (
	FormatNone Format = ""
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 解析报告格式，空字符串表示不输出报告
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatNone, FormatCSV, FormatXLSX:
		return f, nil
	}
	return FormatNone, fmt.Errorf("%w: %s", ErrUnsupportedReport, s)
}

// Sink 单个目标的报告输出
// 同一目标的多个 Finding 按产生顺序写入
type Sink interface {
	// Write 写入一个 Finding，写入后文件内容即完整可读
	Write(f *model.Finding) error
	// Path 报告文件路径，无报告时为空
	Path() string
	// Close 释放资源，可重复调用
	Close() error
}

// NopSink 不输出报告
type NopSink struct{}

func (NopSink) Write(*model.Finding) error { return nil }
func (NopSink) Path() string              { return "" }
func (NopSink) Close() error              { return nil }

// OutputPath 返回目标的报告文件路径 enumdb_<host>.<ext>
func OutputPath(dir string, format Format, host string) string {
	if format == FormatNone {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("enumdb_%s.%s", host, format))
}

// Prepare 删除已存在的同名报告，新一轮扫描从空文件开始
func Prepare(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove existing report %s: %w", path, err)
	}
	return nil
}

// New 为目标创建报告 Sink，并删除已存在的同名文件
func New(format Format, dir string, target model.Target) (Sink, error) {
	path := OutputPath(dir, format, target.Host)

	switch format {
	case FormatNone:
		return NopSink{}, nil
	case FormatCSV:
		if err := Prepare(path); err != nil {
			return nil, err
		}
		return NewCSVSink(path), nil
	case FormatXLSX:
		if err := Prepare(path); err != nil {
			return nil, err
		}
		return NewXLSXSink(path, target), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedReport, format)
}

// Exists 报告文件是否已生成
func Exists(s Sink) bool {
	if s == nil || s.Path() == "" {
		return false
	}
	_, err := os.Stat(s.Path())
	return err == nil
}
