package server

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/config"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/importer"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/normalize"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
	memstore "github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/store"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

// LoadTables 查找表：配置了外部文件时加载该文件，否则使用内置表
func LoadTables(cfg *config.AppConfig) (*normalize.Tables, error) {
	if cfg.Analysis.TablesPath == "" {
		return normalize.DefaultTables()
	}
	path := cfg.Analysis.TablesPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.ResolveDataDir(cfg), path)
	}
	return normalize.LoadTablesFile(path)
}

// NewCoordinator 按配置创建导入协调器
func NewCoordinator(cfg *config.AppConfig, tables *normalize.Tables, log zerolog.Logger) *importer.Coordinator {
	inf := parser.NewInferencer(parser.InferOptions{
		BranchRepeatRatio:    cfg.Analysis.BranchRepeatRatio,
		ProductDistinctRatio: cfg.Analysis.ProductDistinctRatio,
		SampleSize:           cfg.Analysis.SampleSize,
	})
	return importer.NewCoordinator(importer.Options{
		Normalizer: normalize.New(tables),
		Inferencer: inf,
		Logger:     log,
	})
}

// NewEngine 按配置创建对账引擎
func NewEngine(cfg *config.AppConfig, tables *normalize.Tables, log zerolog.Logger) *reconcile.Engine {
	return reconcile.NewEngine(reconcile.Options{
		NearMatchPercent: cfg.Analysis.NearMatchPercent,
		Normalizer:       normalize.New(tables),
		Logger:           log,
	})
}

// OpenStore 按配置的驱动打开项目存储
func OpenStore(cfg *config.AppConfig) (store.ProjectStore, error) {
	switch cfg.Data.Store {
	case config.StoreMemory:
		return memstore.NewMemoryStore(), nil
	case config.StoreSQLite, "":
		st, err := store.New(config.DBPath(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Data.Store)
	}
}
