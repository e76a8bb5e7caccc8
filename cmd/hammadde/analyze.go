package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/exporter"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/importer"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/server"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
)

var (
	analyzeRecipe   string
	analyzeSupply   string
	analyzeSales    string
	analyzeOut      string
	analyzeJSON     bool
	analyzeXLSX     bool
	analyzeProvince string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short:   "离线对账并导出 CSV",
	Example: "  hammadde analyze --recipe recete.xlsx --supply havi.xlsx --sales aktifpos.xls --out ./rapor",
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRecipe, "recipe", "", "配方文件")
	analyzeCmd.Flags().StringVar(&analyzeSupply, "supply", "", "HAVI 供货文件")
	analyzeCmd.Flags().StringVar(&analyzeSales, "sales", "", "AktifPOS 销售文件")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", ".", "导出目录")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "以 JSON 输出分析结果，不写文件")
	analyzeCmd.Flags().BoolVar(&analyzeXLSX, "xlsx", false, "同时导出工作簿")
	analyzeCmd.Flags().StringVar(&analyzeProvince, "province", "", "只输出指定省份")
	_ = analyzeCmd.MarkFlagRequired("recipe")
	_ = analyzeCmd.MarkFlagRequired("supply")
	_ = analyzeCmd.MarkFlagRequired("sales")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	if analyzeJSON {
		// JSON 输出占用 stdout，日志只保留错误
		log = log.Level(zerolog.ErrorLevel)
	}

	tables, err := server.LoadTables(cfg)
	if err != nil {
		return err
	}
	coord := server.NewCoordinator(cfg, tables, log)
	engine := server.NewEngine(cfg, tables, log)

	project := model.NewProject("", time.Now())
	inputs := []struct {
		kind model.SourceKind
		path string
	}{
		{model.SourceRecipe, analyzeRecipe},
		{model.SourceSupply, analyzeSupply},
		{model.SourceSales, analyzeSales},
	}
	for _, in := range inputs {
		report, err := importFile(coord, in.kind, in.path)
		if err != nil {
			if !analyzeJSON {
				errorf("%s: %v", in.kind.Label(), err)
			}
			return err
		}
		project.SetDataset(report.Dataset)
		if !analyzeJSON {
			successf("%s: %s (%d 行 -> %d 条)", in.kind.Label(), filepath.Base(in.path), report.Stats.RowsRead, report.Stats.RowsEmitted)
		}
	}

	analysis, err := engine.Analyze(project)
	if err != nil {
		return err
	}
	filter := reconcile.Filter{Province: analyzeProvince}
	results := filter.Apply(analysis.Results)
	summaries := reconcile.FilterSummaries(analysis.Summaries, analyzeProvince)

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"nearMatchPercent": engine.NearMatchPercent(),
			"results":          results,
			"summaries":        summaries,
		})
	}

	if err := os.MkdirAll(analyzeOut, 0755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}
	if err := writeFile(filepath.Join(analyzeOut, exporter.DetailedFileName), func(f *os.File) error {
		return exporter.WriteDetailedCSV(f, results)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(analyzeOut, exporter.SummaryFileName), func(f *os.File) error {
		return exporter.WriteSummaryCSV(f, summaries)
	}); err != nil {
		return err
	}
	if analyzeXLSX {
		data := exporter.WorkbookData{
			Results:   results,
			Summaries: summaries,
			Totals:    engine.IngredientTotals(project.Recipes, project.Sales),
		}
		content, err := exporter.WorkbookBytes(data, exporter.WorkbookOptions{})
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(analyzeOut, exporter.WorkbookFileName), content, 0644); err != nil {
			return fmt.Errorf("写入工作簿失败: %w", err)
		}
	}

	fmt.Println()
	printSummaries(cmd.OutOrStdout(), summaries)
	fmt.Println()
	successf("%d 条结果, %d 家门店 -> %s", len(results), len(summaries), analyzeOut)
	return nil
}

func importFile(coord *importer.Coordinator, kind model.SourceKind, path string) (*importer.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return coord.Import(importer.ImportOptions{Kind: kind, FileName: filepath.Base(path), Data: data})
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
