package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/config"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
)

var tablesFile string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "查找表维护",
}

var tablesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "校验查找表，列出冲突、重复与被遮蔽的模式",
	RunE:  runTablesCheck,
}

func init() {
	tablesCheckCmd.Flags().StringVarP(&tablesFile, "file", "f", "", "查找表 YAML 文件 (默认检查配置的表或内置表)")
	tablesCmd.AddCommand(tablesCheckCmd)
	rootCmd.AddCommand(tablesCmd)
}

func runTablesCheck(cmd *cobra.Command, args []string) error {
	source, data, err := tablesSource()
	if err != nil {
		return err
	}
	tables, err := normalize.DecodeTables(data)
	if err != nil {
		return err
	}

	infof("%s: %d resources, %d products, %d overrides", source, len(tables.Resources), len(tables.Products), len(tables.ProductOverrides))

	errorsFound := 0
	issues := tables.Validate()
	for _, issue := range issues {
		if issue.Level == normalize.IssueError {
			errorsFound++
			errorf("%s", issue)
			continue
		}
		warnf("%s", issue)
	}

	if errorsFound > 0 {
		return fmt.Errorf("查找表有 %d 个错误", errorsFound)
	}
	successf("查找表可用 (%d 个警告)", len(issues))
	return nil
}

// tablesSource 依次使用 --file、配置的外部表、内置表
func tablesSource() (string, []byte, error) {
	path := tablesFile
	if path == "" {
		cfg, _, err := loadConfig()
		if err != nil {
			return "", nil, err
		}
		path = cfg.Analysis.TablesPath
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(config.ResolveDataDir(cfg), path)
		}
	}
	if path == "" {
		return "builtin", normalize.DefaultTablesYAML(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("读取查找表失败: %w", err)
	}
	return path, data, nil
}
