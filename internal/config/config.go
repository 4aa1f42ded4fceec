/**
 * enumdb 配置管理
 * @date: 2026.02.10
 * @description: 日志、扫描、关键字策略与超时配置。启动时加载，运行期只读。
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// 内置默认值 (全部小写)
var (
	// DefaultTableKeywords 表名关键字
	DefaultTableKeywords = []string{
		"user", "login", "logon", "config", "hr", "finance", "account", "password",
		"passwd", "hash", "ssn", "credit", "social", "401k", "benefits", "pwd",
	}

	// DefaultColumnKeywords 列名关键字
	DefaultColumnKeywords = []string{"login", "account", "pass", "ssn", "credit", "social", "pwd"}
)

const (
	DefaultSampleLimit    = 100
	DefaultMaxThreads     = 3
	DefaultConnectTimeout = 3 * time.Second
	DefaultQueryTimeout   = 15 * time.Second
)

// Config enumdb 配置
type Config struct {
	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 扫描配置
	Scan *ScanConfig `yaml:"scan" mapstructure:"scan"`

	// 关键字策略
	Policy *PolicyConfig `yaml:"policy" mapstructure:"policy"`

	// 超时配置
	Timeout *TimeoutConfig `yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error/fatal)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 最大文件大小（MB）
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 最大备份数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 最大保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// ScanConfig 扫描配置
type ScanConfig struct {
	MaxThreads  int    `yaml:"max_threads" mapstructure:"max_threads"`   // 同时扫描的目标数上限
	SampleLimit int    `yaml:"sample_limit" mapstructure:"sample_limit"` // 每张表最多采样行数
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`     // 报告输出目录
}

// PolicyConfig 关键字策略配置
type PolicyConfig struct {
	TableKeywords  []string `yaml:"table_keywords" mapstructure:"table_keywords"`
	ColumnKeywords []string `yaml:"column_keywords" mapstructure:"column_keywords"`
	DBBlacklist    []string `yaml:"db_blacklist" mapstructure:"db_blacklist"`
	TableBlacklist []string `yaml:"table_blacklist" mapstructure:"table_blacklist"`
}

// TimeoutConfig 超时配置
type TimeoutConfig struct {
	Connect time.Duration `yaml:"connect" mapstructure:"connect"` // 建连超时
	Query   time.Duration `yaml:"query" mapstructure:"query"`     // 单条查询超时
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Log: &LogConfig{
			Level:      "fatal",
			Format:     "text",
			Output:     "stdout",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Scan: &ScanConfig{
			MaxThreads:  DefaultMaxThreads,
			SampleLimit: DefaultSampleLimit,
			OutputDir:   ".",
		},
		Policy: &PolicyConfig{
			TableKeywords:  append([]string(nil), DefaultTableKeywords...),
			ColumnKeywords: append([]string(nil), DefaultColumnKeywords...),
			DBBlacklist:    []string{},
			TableBlacklist: []string{},
		},
		Timeout: &TimeoutConfig{
			Connect: DefaultConnectTimeout,
			Query:   DefaultQueryTimeout,
		},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Log == nil || c.Scan == nil || c.Policy == nil || c.Timeout == nil {
		return fmt.Errorf("incomplete config")
	}
	if c.Scan.MaxThreads < 1 {
		return fmt.Errorf("scan.max_threads must be >= 1, got %d", c.Scan.MaxThreads)
	}
	if c.Scan.SampleLimit < 1 || c.Scan.SampleLimit > DefaultSampleLimit {
		return fmt.Errorf("scan.sample_limit must be between 1 and %d, got %d", DefaultSampleLimit, c.Scan.SampleLimit)
	}
	if c.Timeout.Connect <= 0 || c.Timeout.Query <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// WriteSample 将默认配置写入 YAML 文件
func WriteSample(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
