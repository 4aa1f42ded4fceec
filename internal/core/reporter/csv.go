package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"enumdb/internal/core/model"
)

// CSVSink 以追加方式逐条写入的文本报告
//
// 每个 Finding 的格式:
//
//	"[+] Table: T   Database: D   Server: H"
//	"col1","col2",
//	"v1","v2",
//	(空行分隔)
//
// 每次写入都重新以追加模式打开文件，中途被中断时已写入的部分依然完整。
type CSVSink struct {
	path string
	mu   sync.Mutex
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Close() error { return nil }

func (s *CSVSink) Write(f *model.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open csv report: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatCSVBlock(f)); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}
	return nil
}

func formatCSVBlock(f *model.Finding) string {
	var b strings.Builder

	b.WriteString(`"` + f.Title() + `"` + "\n")
	writeCSVLine(&b, f.Columns)
	for _, row := range f.Rows {
		writeCSVLine(&b, row)
	}
	b.WriteString("\n\n\n")

	return b.String()
}

// writeCSVLine 每个单元格加引号并以逗号结尾，单元格内的引号双写
func writeCSVLine(b *strings.Builder, cells []string) {
	for _, c := range cells {
		b.WriteString(`"` + strings.ReplaceAll(c, `"`, `""`) + `",`)
	}
	b.WriteString("\n")
}
