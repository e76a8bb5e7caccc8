package project

import (
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/importer"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
)

// historyLimit 项目详情中展示的导入记录条数
const historyLimit = 20

// ProjectDetail 项目详情：概要、导入记录与缺少的数据源
type ProjectDetail struct {
	Project model.ProjectSummary `json:"project"`
	Missing []model.SourceKind   `json:"missing"`
	History []model.ImportRecord `json:"history"`
}

// ImportOutcome 上传导入的结果
type ImportOutcome struct {
	Project model.ProjectSummary `json:"project"`
	Report  *importer.Report     `json:"report"`
}

// AnalysisQuery 分析结果的筛选与排序
type AnalysisQuery struct {
	Filter      reconcile.Filter
	SortBy      reconcile.SortField // 为空时保持默认排序
	Desc        bool
	SummarySort reconcile.SummaryField
	SummaryDesc bool
}

// AnalysisView 按查询条件整理后的分析结果
type AnalysisView struct {
	ProjectID        string                `json:"projectId"`
	NearMatchPercent float64               `json:"nearMatchPercent"`
	Results          []model.BranchResult  `json:"results"`
	Summaries        []model.BranchSummary `json:"summaries"`
	Branches         []string              `json:"branches"`
	Resources        []string              `json:"resources"`
	Provinces        []string              `json:"provinces"`
	TotalResults     int                   `json:"totalResults"`
}

// IngredientTotalsView 原料总用量
type IngredientTotalsView struct {
	ProjectID           string                  `json:"projectId"`
	ProductsWithRecipes int                     `json:"productsWithRecipes"`
	SalesRows           int                     `json:"salesRows"`
	Totals              []model.IngredientTotal `json:"totals"`
}
