package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/config"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/logging"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/server"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:     "hammadde",
	Short:   "门店原料用量对账工具",
	Long:    "根据配方 (Reçete)、HAVI 供货与 AktifPOS 销售数据，按门店计算原料供货与理论用量的差异。",
	Version: server.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认可执行文件目录下的 config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (覆盖配置文件)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "禁用彩色输出")
}

// loadConfig 加载配置；文件缺失时使用默认配置
func loadConfig() (*config.AppConfig, config.LoadConfigInfo, error) {
	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, info, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, info, fmt.Errorf("加载配置失败: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, info, nil
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}
