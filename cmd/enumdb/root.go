/*
 * @date: 2026.02.10
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"os"

	"enumdb/internal/config"
	"enumdb/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	logFile  string

	// appConfig 在 PersistentPreRunE 中加载，子命令只读
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enumdb",
	Short: "MySQL/MSSQL 弱口令爆破与敏感数据枚举",
	Long: `enumdb 对 MySQL 或 MSSQL 服务执行凭据爆破。
获得有效凭据后，枚举所有数据库与表，查找可能包含敏感信息的表 (用户、密码、ssn 等)，
并将采样数据写入每个目标各自的报告。

示例:
  enumdb run -u root -p Password1 -t mysql 10.11.1.30
  enumdb run -u root -p '' -t mysql --brute 10.0.0.0-50
  enumdb run -u 'domain\user1' -P pass.txt -t mssql -r xlsx 192.168.1.7
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE: 全局初始化逻辑，确保所有子命令都能使用配置和日志
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader, err := initConfig()
		if err != nil {
			return err
		}
		initCLILogger(cmd)
		if used := loader.ConfigFileUsed(); used != "" {
			logger.Infof("Using config file: %s", used)
		}
		return nil
	},
}

func Execute() {
	// 全局 Panic Recovery
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] enumdb crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	// 全局 Flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志文件路径 (按大小轮转)")

	// 注册子命令
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(versionCmd)
}

// initConfig 读取 .env、配置文件和环境变量
func initConfig() (*config.ConfigLoader, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}

	loader := config.NewConfigLoader(cfgFile, "ENUMDB")
	cfg, err := loader.LoadConfig()
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return loader, nil
}

// initCLILogger 初始化 CLI 模式下的日志
// 默认只输出 Fatal，--log-level 优先于配置文件
func initCLILogger(cmd *cobra.Command) {
	logConfig := *appConfig.Log

	flag := cmd.Flags().Lookup("log-level")
	if flag != nil && flag.Changed {
		logConfig.Level = flag.Value.String()
	}
	if logFile != "" {
		logConfig.Output = "file"
		logConfig.FilePath = logFile
	}

	// 初始化日志
	if _, err := logger.InitLogger(&logConfig); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
	}
}
