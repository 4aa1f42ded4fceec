package options

import (
	"errors"
	"fmt"
	"os"

	"enumdb/internal/core/dbdriver"
	"enumdb/internal/core/model"
	"enumdb/internal/core/pipeline"
	"enumdb/internal/core/reporter"
	"enumdb/internal/core/scanner/brute"
)

// EnumOptions run 命令参数
type EnumOptions struct {
	Targets      []string
	Users        []string
	UserFile     string
	Passwords    []string
	PassFile     string
	DBType       string
	Port         int
	Report       string
	ColumnSearch bool
	Verbose      bool
	CredsOnly    bool
	MaxThreads   int
}

func NewEnumOptions() *EnumOptions {
	return &EnumOptions{
		MaxThreads: 3,
	}
}

func (o *EnumOptions) Validate() error {
	if len(o.Targets) == 0 {
		return fmt.Errorf("target is required")
	}
	if _, ok := model.ParseDBType(o.DBType); !ok {
		return fmt.Errorf("%w: %q (supported: mysql, mssql)", dbdriver.ErrUnsupportedDBType, o.DBType)
	}

	switch {
	case len(o.Users) == 0 && o.UserFile == "":
		return fmt.Errorf("one of --user or --user-file is required")
	case len(o.Users) > 0 && o.UserFile != "":
		return fmt.Errorf("--user and --user-file are mutually exclusive")
	}
	if len(o.Passwords) > 0 && o.PassFile != "" {
		return fmt.Errorf("--pass and --pass-file are mutually exclusive")
	}

	for _, path := range []string{o.UserFile, o.PassFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", brute.ErrInputFileNotFound, path)
		}
	}

	if _, err := reporter.ParseFormat(o.Report); err != nil {
		return err
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port: %d", o.Port)
	}
	if o.MaxThreads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", o.MaxThreads)
	}
	return nil
}

// NeedPasswordPrompt 未提供任何密码时需要交互输入
func (o *EnumOptions) NeedPasswordPrompt() bool {
	return len(o.Passwords) == 0 && o.PassFile == ""
}

// ReportFormat 报告格式 (Validate 之后调用)
func (o *EnumOptions) ReportFormat() reporter.Format {
	f, _ := reporter.ParseFormat(o.Report)
	return f
}

// ResolveTargets 展开目标输入并补全端口
func (o *EnumOptions) ResolveTargets() ([]model.Target, error) {
	dbType, ok := model.ParseDBType(o.DBType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dbdriver.ErrUnsupportedDBType, o.DBType)
	}

	port := o.Port
	if port == 0 {
		p, err := dbdriver.DefaultPort(dbType)
		if err != nil {
			return nil, err
		}
		port = p
	}

	hosts := pipeline.ExpandTargets(o.Targets)
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no valid target in %v", o.Targets)
	}

	targets := make([]model.Target, 0, len(hosts))
	for _, h := range hosts {
		targets = append(targets, model.Target{Host: h, Port: port, DBType: dbType})
	}
	return targets, nil
}

// ResolveCredentials 读取用户名/密码 (文件或命令行) 并生成凭据列表
func (o *EnumOptions) ResolveCredentials() ([]model.Credential, error) {
	users := o.Users
	if o.UserFile != "" {
		list, err := brute.LoadFile(o.UserFile)
		if err != nil {
			return nil, err
		}
		users = list
	}

	passwords := o.Passwords
	if o.PassFile != "" {
		list, err := brute.LoadFile(o.PassFile)
		if err != nil {
			return nil, err
		}
		passwords = list
	}

	return brute.Credentials(users, passwords), nil
}
