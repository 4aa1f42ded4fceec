package reporter

import (
	"fmt"
	"io"
	"os"
	"sync"

	"enumdb/internal/core/model"

	"github.com/pterm/pterm" // 引入 pterm 库用于控制台输出
)

// ConsolePrinter 控制台输出
// 多个目标 goroutine 共享，每条提示整行输出
type ConsolePrinter struct {
	verbose bool
	mu      sync.Mutex
	writer  io.Writer

	success marker // [+] 绿色
	status  marker // [*] 蓝色
	failure marker // [-] 红色
	empty   marker // [-] 黄色
	closing marker // [*] 白色
}

// marker 行首标记
type marker struct {
	text  string
	style *pterm.Style
}

// NewConsolePrinter 创建控制台输出，w 为 nil 时输出到 stdout
func NewConsolePrinter(w io.Writer, verbose bool) *ConsolePrinter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsolePrinter{
		verbose: verbose,
		writer:  w,
		success: marker{"[+]", pterm.NewStyle(pterm.FgLightGreen, pterm.Bold)},
		status:  marker{"[*]", pterm.NewStyle(pterm.FgLightBlue, pterm.Bold)},
		failure: marker{"[-]", pterm.NewStyle(pterm.FgLightRed, pterm.Bold)},
		empty:   marker{"[-]", pterm.NewStyle(pterm.FgLightYellow, pterm.Bold)},
		closing: marker{"[*]", pterm.NewStyle(pterm.FgLightWhite, pterm.Bold)},
	}
}

func (p *ConsolePrinter) println(m marker, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pterm.Fprintln(p.writer, m.style.Sprint(m.text)+" "+msg)
}

// Starting 启动提示，不受日志级别影响
func (p *ConsolePrinter) Starting(msg string) {
	p.println(p.closing, msg)
}

// LoginSuccess 凭据验证成功
func (p *ConsolePrinter) LoginSuccess(target model.Target, cred model.Credential) {
	p.println(p.success, fmt.Sprintf("Connection established %s:%s@%s", cred.Username, cred.Password, target.Host))
}

// LoginFailure 凭据验证失败，verbose 模式附带驱动错误
func (p *ConsolePrinter) LoginFailure(target model.Target, cred model.Credential, err error) {
	msg := fmt.Sprintf("Login failed %s:%s@%s", cred.Username, cred.Password, target.Host)
	if p.verbose && err != nil {
		msg += fmt.Sprintf("\t(%v)", err)
	}
	p.println(p.failure, msg)
}

// Match 实现 enum.Notifier
func (p *ConsolePrinter) Match(f *model.Finding) {
	var msg string
	if f.Kind == model.MatchColumn {
		msg = fmt.Sprintf("Column: %-18s Table: %-42s DB: %-23s SRV: %s (%s)", f.Match, f.Table, f.Database, f.Host, f.DBType)
	} else {
		msg = fmt.Sprintf("Keyword match: %-11s Table: %-42s DB: %-23s SRV: %s (%s)", f.Match, f.Table, f.Database, f.Host, f.DBType)
	}
	p.println(p.status, msg)
}

// Empty 实现 enum.Notifier
func (p *ConsolePrinter) Empty(target model.Target, database, table string) {
	p.println(p.empty, fmt.Sprintf("%-26s Table: %-42s DB: %-23s SRV: %s (%s)", "Empty data set", table, database, target.Host, target.DBType))
}

// Closing 报告文件已生成
func (p *ConsolePrinter) Closing(path string) {
	p.println(p.closing, "Output file created: "+path)
}

// PrintSummary 打印所有成功凭据的汇总表
func (p *ConsolePrinter) PrintSummary(data TabularData) error {
	rows := data.Rows()
	if len(rows) == 0 {
		return nil
	}

	// 使用 pterm 渲染表格
	tableData := pterm.TableData{data.Headers()}
	tableData = append(tableData, rows...)

	p.mu.Lock()
	defer p.mu.Unlock()

	err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		WithWriter(p.writer).
		Render()

	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
