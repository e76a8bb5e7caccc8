package project

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/importer"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

// ErrUnknownKind 上传时指定了未知的数据源类型
var ErrUnknownKind = errors.New("unknown source kind")

// Manager 项目管理器：上传 -> 处理 -> 持久化 -> 分析
type Manager struct {
	dataDir string

	store    store.ProjectStore
	importer *importer.Coordinator
	engine   *reconcile.Engine
	log      zerolog.Logger

	// 同一时间只处理一个上传
	mu sync.Mutex
}

// NewManager 创建项目管理器
func NewManager(dataDir string, st store.ProjectStore, coord *importer.Coordinator, engine *reconcile.Engine, log zerolog.Logger) (*Manager, error) {
	if err := requireNonEmptyString(dataDir, "dataDir is required"); err != nil {
		return nil, err
	}
	if st == nil || coord == nil || engine == nil {
		return nil, errors.New("store, importer and engine are required")
	}
	if err := ensureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Manager{
		dataDir:  dataDir,
		store:    st,
		importer: coord,
		engine:   engine,
		log:      log,
	}, nil
}

// Engine 对账引擎
func (m *Manager) Engine() *reconcile.Engine {
	return m.engine
}

func (m *Manager) projectDir(projectID string) string {
	return filepath.Join(m.dataDir, projectID)
}

func (m *Manager) uploadsDir(projectID string) string {
	return filepath.Join(m.projectDir(projectID), "uploads")
}

func (m *Manager) manifestPath(projectID string) string {
	return filepath.Join(m.uploadsDir(projectID), "manifest.json")
}

// CreateProject 创建项目
func (m *Manager) CreateProject(name string) (model.ProjectSummary, error) {
	p, err := m.store.Create(name)
	if err != nil {
		return model.ProjectSummary{}, err
	}
	m.log.Info().Str("project", p.ID).Str("name", p.Name).Msg("创建项目")
	return p.Summary(), nil
}

// ListProjects 项目列表
func (m *Manager) ListProjects() ([]model.ProjectSummary, error) {
	return m.store.List()
}

// GetProject 获取完整项目
func (m *Manager) GetProject(projectID string) (*model.Project, error) {
	return m.store.Get(projectID)
}

// GetProjectDetail 项目详情
func (m *Manager) GetProjectDetail(projectID string) (*ProjectDetail, error) {
	p, err := m.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	history, err := m.store.ImportHistory(projectID, historyLimit)
	if err != nil {
		return nil, err
	}
	missing := p.Missing()
	if missing == nil {
		missing = []model.SourceKind{}
	}
	return &ProjectDetail{Project: p.Summary(), Missing: missing, History: history}, nil
}

// DeleteProject 删除项目及其上传目录
func (m *Manager) DeleteProject(projectID string) error {
	if err := requireNonEmptyString(projectID, "projectId is required"); err != nil {
		return err
	}
	if err := m.store.Delete(projectID); err != nil {
		return err
	}
	if err := os.RemoveAll(m.projectDir(projectID)); err != nil {
		m.log.Warn().Err(err).Str("project", projectID).Msg("删除项目目录失败")
	}
	m.log.Info().Str("project", projectID).Msg("删除项目")
	return nil
}

// SetStep 设置步骤完成标记
func (m *Manager) SetStep(projectID string, index int, done bool) (model.ProjectSummary, error) {
	p, err := m.store.UpdateStep(projectID, index, done)
	if err != nil {
		return model.ProjectSummary{}, err
	}
	return p.Summary(), nil
}

// Import 上传一类数据源的文件
// 读取或列识别失败时不覆盖已有数据，记录失败的导入后返回错误
func (m *Manager) Import(projectID string, kind model.SourceKind, fileName string, data []byte) (*ImportOutcome, error) {
	if kind.StepIndex() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Get(projectID); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	rec := model.ImportRecord{
		ProjectID:  projectID,
		Kind:       kind,
		FileName:   fileName,
		FileSize:   int64(len(data)),
		FileHash:   hex.EncodeToString(sum[:]),
		ImportedAt: time.Now().UTC(),
	}

	report, err := m.importer.Import(importer.ImportOptions{Kind: kind, FileName: fileName, Data: data})
	if report != nil {
		rec.SheetName = report.SheetName
		rec.RowsRead = report.Stats.RowsRead
		rec.RowsEmitted = report.Stats.RowsEmitted
	}
	if err != nil {
		rec.Status = model.ImportStatusFailed
		rec.Message = err.Error()
		m.recordImport(rec)
		return nil, err
	}

	path, err := m.archiveUpload(projectID, kind, fileName, data)
	if err != nil {
		m.log.Warn().Err(err).Str("project", projectID).Str("file", fileName).Msg("保存上传文件失败")
	}
	rec.FilePath = path

	p, err := m.store.UpdateDataset(projectID, report.Dataset)
	if err != nil {
		return nil, err
	}
	rec.Status = model.ImportStatusOK
	m.recordImport(rec)

	m.log.Info().
		Str("project", projectID).
		Str("kind", string(kind)).
		Str("file", fileName).
		Int("rows", report.Stats.RowsRead).
		Int("entities", report.Dataset.Len()).
		Dur("duration", report.Duration).
		Msg("导入完成")
	return &ImportOutcome{Project: p.Summary(), Report: report}, nil
}

func (m *Manager) recordImport(rec model.ImportRecord) {
	if err := m.store.RecordImport(rec); err != nil {
		m.log.Warn().Err(err).Str("project", rec.ProjectID).Msg("写入导入记录失败")
	}
}

// UploadedFile 保存的最近一次上传
type UploadedFile struct {
	Kind       model.SourceKind `json:"kind"`
	FileName   string           `json:"fileName"`
	Path       string           `json:"path"`
	Size       int64            `json:"size"`
	UploadedAt time.Time        `json:"uploadedAt"`
}

// archiveUpload 每类数据源只保留最近一次上传的原文件
func (m *Manager) archiveUpload(projectID string, kind model.SourceKind, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(m.uploadsDir(projectID), string(kind)+ext)

	manifest, err := m.UploadedFiles(projectID)
	if err != nil {
		return "", err
	}
	if prev, ok := manifest[kind]; ok && prev.Path != path {
		_ = os.Remove(prev.Path)
	}
	if err := writeBytesAtomic(path, data); err != nil {
		return "", err
	}
	manifest[kind] = UploadedFile{
		Kind:       kind,
		FileName:   fileName,
		Path:       path,
		Size:       int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}
	if err := writeJSONAtomic(m.manifestPath(projectID), manifest); err != nil {
		return "", err
	}
	return path, nil
}

// UploadedFiles 项目已保存的上传文件（按数据源类型）
func (m *Manager) UploadedFiles(projectID string) (map[model.SourceKind]UploadedFile, error) {
	manifest := map[model.SourceKind]UploadedFile{}
	path := m.manifestPath(projectID)
	if !fileExists(path) {
		return manifest, nil
	}
	if err := readJSON(path, &manifest); err != nil {
		return nil, fmt.Errorf("failed to read upload manifest: %w", err)
	}
	return manifest, nil
}

// Analyze 对项目做对账，并按查询条件筛选排序
func (m *Manager) Analyze(projectID string, q AnalysisQuery) (*AnalysisView, error) {
	p, err := m.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	analysis, err := m.engine.Analyze(p)
	if err != nil {
		return nil, err
	}

	results := q.Filter.Apply(analysis.Results)
	if q.SortBy != "" {
		reconcile.Sort(results, q.SortBy, q.Desc)
	}
	summaries := reconcile.FilterSummaries(analysis.Summaries, q.Filter.Province)
	if q.SummarySort != "" {
		reconcile.SortSummaries(summaries, q.SummarySort, q.SummaryDesc)
	}

	return &AnalysisView{
		ProjectID:        projectID,
		NearMatchPercent: m.engine.NearMatchPercent(),
		Results:          results,
		Summaries:        summaries,
		Branches:         analysis.Branches,
		Resources:        analysis.Resources,
		Provinces:        analysis.Provinces,
		TotalResults:     len(analysis.Results),
	}, nil
}

// IngredientTotals 所有门店合计的原料理论用量
func (m *Manager) IngredientTotals(projectID string) (*IngredientTotalsView, error) {
	p, err := m.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	var missing []model.SourceKind
	if len(p.Recipes) == 0 {
		missing = append(missing, model.SourceRecipe)
	}
	if len(p.Sales) == 0 {
		missing = append(missing, model.SourceSales)
	}
	if len(missing) > 0 {
		return nil, &reconcile.MissingDataError{Missing: missing}
	}
	return &IngredientTotalsView{
		ProjectID:           projectID,
		ProductsWithRecipes: m.engine.ProductsWithRecipes(p.Recipes),
		SalesRows:           len(p.Sales),
		Totals:              m.engine.IngredientTotals(p.Recipes, p.Sales),
	}, nil
}
