package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
// configPath 为空时只使用默认值与环境变量
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "ENUMDB"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	cl.viper.SetConfigType("yaml")

	// 环境变量 ENUMDB_SCAN_MAX_THREADS -> scan.max_threads
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cl.viper.AutomaticEnv()

	cl.setDefaults()

	if cl.configPath != "" {
		cl.viper.SetConfigFile(cl.configPath)
		if err := cl.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	var cfg Config
	if err := cl.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed 返回实际使用的配置文件
func (cl *ConfigLoader) ConfigFileUsed() string {
	return cl.viper.ConfigFileUsed()
}

// setDefaults 设置默认值
// 必须覆盖所有字段，AutomaticEnv 只对已知 key 生效
func (cl *ConfigLoader) setDefaults() {
	d := Default()

	cl.viper.SetDefault("log.level", d.Log.Level)
	cl.viper.SetDefault("log.format", d.Log.Format)
	cl.viper.SetDefault("log.output", d.Log.Output)
	cl.viper.SetDefault("log.file_path", d.Log.FilePath)
	cl.viper.SetDefault("log.max_size", d.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", d.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", d.Log.MaxAge)
	cl.viper.SetDefault("log.compress", d.Log.Compress)
	cl.viper.SetDefault("log.caller", d.Log.Caller)

	cl.viper.SetDefault("scan.max_threads", d.Scan.MaxThreads)
	cl.viper.SetDefault("scan.sample_limit", d.Scan.SampleLimit)
	cl.viper.SetDefault("scan.output_dir", d.Scan.OutputDir)

	cl.viper.SetDefault("policy.table_keywords", d.Policy.TableKeywords)
	cl.viper.SetDefault("policy.column_keywords", d.Policy.ColumnKeywords)
	cl.viper.SetDefault("policy.db_blacklist", d.Policy.DBBlacklist)
	cl.viper.SetDefault("policy.table_blacklist", d.Policy.TableBlacklist)

	cl.viper.SetDefault("timeout.connect", d.Timeout.Connect)
	cl.viper.SetDefault("timeout.query", d.Timeout.Query)
}
