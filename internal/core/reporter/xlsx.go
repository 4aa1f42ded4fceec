package reporter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"enumdb/internal/core/model"

	"github.com/xuri/excelize/v2"
)

const (
	overviewSheet   = "Overview"
	sheetNameLength = 15
	overviewFirst   = 5 // Overview 中第一条 Finding 所在行
)

// XLSXSink 工作簿报告
//
// Overview 页记录目标、数据库类型和所有 Finding 的索引，
// 每个 Finding 另起一页 (以表名命名)。
// 工作簿在第一个 Finding 到来时才创建，每次写入后立即落盘。
type XLSXSink struct {
	path   string
	target model.Target

	mu          sync.Mutex
	file        *excelize.File
	overviewRow int
	sheets      map[string]struct{} // 已使用的页名 (小写)
}

func NewXLSXSink(path string, target model.Target) *XLSXSink {
	return &XLSXSink{
		path:   path,
		target: target,
	}
}

func (s *XLSXSink) Path() string { return s.path }

func (s *XLSXSink) Write(f *model.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		if err := s.createWorkbook(); err != nil {
			return err
		}
	}

	if err := s.addToOverview(f); err != nil {
		return err
	}
	if err := s.addSheet(f); err != nil {
		return err
	}

	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save xlsx report: %w", err)
	}
	return nil
}

func (s *XLSXSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *XLSXSink) createWorkbook() error {
	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), overviewSheet); err != nil {
		return fmt.Errorf("failed to create overview sheet: %w", err)
	}

	cells := []struct {
		axis  string
		value string
	}{
		{"A1", "Target(s):"},
		{"B1", s.target.Host},
		{"A2", "DB Type:"},
		{"B2", string(s.target.DBType)},
		{"A4", "Database"},
		{"B4", "Table"},
		{"C4", "Server"},
	}
	for _, c := range cells {
		if err := file.SetCellValue(overviewSheet, c.axis, c.value); err != nil {
			return fmt.Errorf("failed to write overview: %w", err)
		}
	}

	s.file = file
	s.overviewRow = overviewFirst
	s.sheets = map[string]struct{}{strings.ToLower(overviewSheet): {}}
	return nil
}

func (s *XLSXSink) addToOverview(f *model.Finding) error {
	row := []string{f.Database, f.Table, f.Host}
	if err := s.file.SetSheetRow(overviewSheet, "A"+strconv.Itoa(s.overviewRow), &row); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}
	s.overviewRow++
	return nil
}

func (s *XLSXSink) addSheet(f *model.Finding) error {
	name := s.uniqueSheetName(f.Table)
	if _, err := s.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	s.sheets[strings.ToLower(name)] = struct{}{}

	if err := s.file.SetCellValue(name, "A1", f.Title()); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", name, err)
	}

	columns := f.Columns
	if err := s.file.SetSheetRow(name, "A2", &columns); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", name, err)
	}

	for i, r := range f.Rows {
		row := r
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := s.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", name, err)
		}
	}
	return nil
}

// uniqueSheetName 表名截断为 15 个字符，去除页名非法字符，重名时追加序号
func (s *XLSXSink) uniqueSheetName(table string) string {
	base := SheetName(table)
	name := base
	for i := 2; ; i++ {
		if _, used := s.sheets[strings.ToLower(name)]; !used {
			return name
		}
		name = base + "_" + strconv.Itoa(i)
	}
}

// SheetName 将表名转换为合法的页名
func SheetName(table string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, table)
	if runes := []rune(name); len(runes) > sheetNameLength {
		name = string(runes[:sheetNameLength])
	}
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	return name
}
