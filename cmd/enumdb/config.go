package main

import (
	"enumdb/internal/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "生成带默认值的配置文件",
		Args:  cobra.MaximumNArgs(1),
		// 生成配置文件时不读取已有配置
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "enumdb.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			pterm.Success.Printfln("Config written to %s", path)
			return nil
		},
	})

	return cmd
}
