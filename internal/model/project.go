package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectNameLayout 默认项目名中的时间格式（DD.MM.YYYY HH:MM）
const ProjectNameLayout = "02.01.2006 15:04"

// NewProjectID 生成项目 ID
func NewProjectID() string {
	return fmt.Sprintf("p_%s", uuid.New().String()[:8])
}

// DefaultProjectName 未命名项目的默认名称
func DefaultProjectName(now time.Time) string {
	return "Analiz " + now.Format(ProjectNameLayout)
}

// NewProject 创建空项目：数据集为空，所有步骤未完成
func NewProject(name string, now time.Time) *Project {
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultProjectName(now)
	}
	return &Project{
		ID:        NewProjectID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Recipes:   []RecipeItem{},
		Supply:    []SupplyEntry{},
		Sales:     []SalesEntry{},
	}
}

// Project 一次分析（会话）：三类数据源与完成步骤
type Project struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Recipes        []RecipeItem    `json:"recipeData"`
	Supply         []SupplyEntry   `json:"haviData"`
	Sales          []SalesEntry    `json:"aktifPosData"`
	CompletedSteps [StepCount]bool `json:"completedSteps"`
}

// ProjectSummary 项目列表项
type ProjectSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	RecipeCount    int             `json:"recipeCount"`
	SupplyCount    int             `json:"supplyCount"`
	SalesCount     int             `json:"salesCount"`
	CompletedSteps [StepCount]bool `json:"completedSteps"`
}

// Summary 项目概要
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:             p.ID,
		Name:           p.Name,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		RecipeCount:    len(p.Recipes),
		SupplyCount:    len(p.Supply),
		SalesCount:     len(p.Sales),
		CompletedSteps: p.CompletedSteps,
	}
}

// SetDataset 写入某类数据集并同步对应步骤的完成标记
func (p *Project) SetDataset(ds Dataset) {
	switch v := ds.(type) {
	case RecipeSet:
		p.Recipes = []RecipeItem(v)
	case SupplySet:
		p.Supply = []SupplyEntry(v)
	case SalesSet:
		p.Sales = []SalesEntry(v)
	default:
		return
	}
	p.CompletedSteps[ds.Kind().StepIndex()] = ds.Len() > 0
}

// Dataset 读取某类数据集
func (p *Project) Dataset(kind SourceKind) Dataset {
	switch kind {
	case SourceRecipe:
		return RecipeSet(p.Recipes)
	case SourceSupply:
		return SupplySet(p.Supply)
	default:
		return SalesSet(p.Sales)
	}
}

// Missing 尚未导入的数据源
func (p *Project) Missing() []SourceKind {
	var missing []SourceKind
	if len(p.Recipes) == 0 {
		missing = append(missing, SourceRecipe)
	}
	if len(p.Supply) == 0 {
		missing = append(missing, SourceSupply)
	}
	if len(p.Sales) == 0 {
		missing = append(missing, SourceSales)
	}
	return missing
}

// Clone 深拷贝，存储层返回副本避免外部修改
func (p *Project) Clone() *Project {
	c := *p
	c.Recipes = cloneSlice(p.Recipes)
	c.Supply = cloneSlice(p.Supply)
	c.Sales = cloneSlice(p.Sales)
	return &c
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// ValidStep 步骤序号是否合法
func ValidStep(index int) bool {
	return index >= 0 && index < StepCount
}

// ImportRecord 一次上传导入的记录
type ImportRecord struct {
	ProjectID   string     `json:"projectId"`
	Kind        SourceKind `json:"kind"`
	FileName    string     `json:"fileName"`
	SheetName   string     `json:"sheetName,omitempty"`
	FilePath    string     `json:"filePath,omitempty"`
	FileSize    int64      `json:"fileSize"`
	FileHash    string     `json:"fileHash,omitempty"`
	RowsRead    int        `json:"rowsRead"`
	RowsEmitted int        `json:"rowsEmitted"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	ImportedAt  time.Time  `json:"importedAt"`
}

// 导入状态
const (
	ImportStatusOK     = "ok"
	ImportStatusFailed = "failed"
)
