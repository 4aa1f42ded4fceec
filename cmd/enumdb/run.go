/*
 * @date: 2026.02.10
 * @description: run 子命令，爆破 + 枚举
 */

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"enumdb/internal/core/dbdriver"
	"enumdb/internal/core/model"
	"enumdb/internal/core/options"
	"enumdb/internal/core/reporter"
	"enumdb/internal/core/runner"
	"enumdb/internal/core/scanner/brute"
	"enumdb/internal/core/scanner/enum"
	"enumdb/internal/pkg/logger"
	"enumdb/internal/pkg/version"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newRunCmd 创建 run 子命令
func newRunCmd() *cobra.Command {
	opts := options.NewEnumOptions()

	cmd := &cobra.Command{
		Use:   "run [flags] <target>...",
		Short: "爆破数据库登录并枚举敏感表",
		Long: `依次尝试所有 用户名 x 密码 组合，每组成功的凭据都会枚举一次全部 schema。
目标支持 IP、主机名、CIDR、IP 范围 (10.0.0.1-50)、逗号分隔列表或目标文件。

** 用户名或密码包含特殊字符时请使用 '' 包裹 **`,
		Example: `  # 单个凭据 + 枚举
  enumdb run -u root -p Password1 -t mysql 10.11.1.30

  # 只爆破，不枚举
  enumdb run -u root -p '' -t mysql --brute 10.0.0.0-50

  # 按列名匹配并输出 xlsx 报告
  enumdb run -U users.txt -P pass.txt -t mssql -c -r xlsx 192.168.1.7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Targets = args
			if !cmd.Flags().Changed("threads") {
				opts.MaxThreads = appConfig.Scan.MaxThreads
			}
			return runEnum(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.Users, "user", "u", nil, "用户名 (可重复)")
	flags.StringVarP(&opts.UserFile, "user-file", "U", "", "用户名文件 (每行一个)")
	flags.StringArrayVarP(&opts.Passwords, "pass", "p", nil, "密码 (可重复，未提供时交互输入)")
	flags.StringVarP(&opts.PassFile, "pass-file", "P", "", "密码文件 (每行一个)")
	flags.StringVarP(&opts.DBType, "dbtype", "t", "", "数据库类型: mysql, mssql")
	flags.IntVar(&opts.Port, "port", 0, "非标准端口 (默认: mysql 3306, mssql 1433)")
	flags.StringVarP(&opts.Report, "report", "r", "", "报告格式: csv, xlsx (默认: 不输出)")
	flags.BoolVarP(&opts.ColumnSearch, "columns", "c", false, "按列名匹配关键字 (默认: 表名)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "显示登录失败原因和空数据集")
	flags.BoolVar(&opts.CredsOnly, "brute", false, "只爆破，不枚举")
	flags.IntVar(&opts.MaxThreads, "threads", 3, "同时扫描的目标数上限")

	cmd.MarkFlagRequired("dbtype")
	cmd.MarkFlagsMutuallyExclusive("user", "user-file")
	cmd.MarkFlagsOneRequired("user", "user-file")
	cmd.MarkFlagsMutuallyExclusive("pass", "pass-file")

	return cmd
}

func runEnum(opts *options.EnumOptions) error {
	// 1. 参数校验
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("Input Error: %w", err)
	}

	// 从密码输入开始即捕获中断
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.NeedPasswordPrompt() {
		password, err := promptPassword(ctx, "Enter password, or continue with null-value: ")
		if errors.Is(err, context.Canceled) {
			keyEventExit()
		}
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		opts.Passwords = []string{password}
	}

	targets, err := opts.ResolveTargets()
	if err != nil {
		return fmt.Errorf("Input Error: %w", err)
	}
	creds, err := opts.ResolveCredentials()
	if err != nil {
		return fmt.Errorf("Input Error: %w", err)
	}

	// 2. 组装组件
	dbType := targets[0].DBType
	driver, err := dbdriver.New(dbType, dbdriver.Timeouts{
		Connect: appConfig.Timeout.Connect,
		Query:   appConfig.Timeout.Query,
	})
	if err != nil {
		return err
	}

	printer := reporter.NewConsolePrinter(os.Stdout, opts.Verbose)
	engine := enum.NewEngine(driver, enum.PolicyFromConfig(appConfig.Policy), enum.Options{
		SampleLimit:  appConfig.Scan.SampleLimit,
		ColumnSearch: opts.ColumnSearch,
		Verbose:      opts.Verbose,
	}, printer)
	trial := brute.NewTrial(driver, engine, creds, brute.Options{
		CredsOnly: opts.CredsOnly,
		Report:    opts.ReportFormat(),
		OutputDir: appConfig.Scan.OutputDir,
	}, printer)

	// 3. 执行
	printer.Starting(fmt.Sprintf("Starting enumdb v%s: %d target(s), %d credential(s), %s",
		version.GetVersion(), len(targets), len(creds), dbType))
	startTime := time.Now()

	scheduler := runner.NewScheduler(opts.MaxThreads)
	results, err := scheduler.Run(ctx, targets, trial.Run)
	if errors.Is(err, context.Canceled) {
		keyEventExit()
	}

	logRunSummary(driver, results, scheduler.Peak(), time.Since(startTime))

	// 4. 输出汇总
	return printer.PrintSummary(results)
}

// logRunSummary 记录本次运行的统计信息
func logRunSummary(driver dbdriver.Driver, results model.TrialResults, peak int, elapsed time.Duration) {
	fields := logrus.Fields{
		"type":     logger.ScanLog,
		"targets":  len(results),
		"valid":    len(results.Rows()),
		"peak":     peak,
		"duration": elapsed.Milliseconds(),
	}
	if counter, ok := driver.(interface{ QueryErrors() int64 }); ok {
		fields["query_errors"] = counter.QueryErrors()
	}
	logger.WithFields(fields).Info("Run finished")
}

// keyEventExit 用户中断，打印提示后正常退出
func keyEventExit() {
	fmt.Print("\n[!] Key Event Detected...\n\n")
	os.Exit(0)
}

// promptPassword 读取密码，终端下不回显
// context 取消时立即返回 context 错误，并恢复终端回显
func promptPassword(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(ctx, os.Stdin)
	}

	state, err := term.GetState(fd)
	if err != nil {
		return "", err
	}

	ch := make(chan lineResult, 1)
	go func() {
		b, err := term.ReadPassword(fd)
		ch <- lineResult{line: string(b), err: err}
	}()

	select {
	case r := <-ch:
		fmt.Println()
		return r.line, r.err
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		return "", ctx.Err()
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine 从非终端输入读取一行，EOF 视为空密码
func readLine(ctx context.Context, r io.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		ch <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
	}()

	select {
	case res := <-ch:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
