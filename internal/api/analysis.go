package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/project"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
)

// analysisParams 分析查询参数
type analysisParams struct {
	reconcile.Filter
	SortBy         string `form:"sortBy"`
	SortDir        string `form:"sortDir"`
	SummarySortBy  string `form:"summarySortBy"`
	SummarySortDir string `form:"summarySortDir"`
}

func (p analysisParams) query() project.AnalysisQuery {
	q := project.AnalysisQuery{Filter: p.Filter}
	if p.SortBy != "" {
		q.SortBy = reconcile.ParseSortField(p.SortBy)
		q.Desc = !strings.EqualFold(p.SortDir, "asc")
	}
	if p.SummarySortBy != "" {
		q.SummarySort = reconcile.ParseSummaryField(p.SummarySortBy)
		q.SummaryDesc = strings.EqualFold(p.SummarySortDir, "desc")
	}
	return q
}

func bindAnalysisQuery(c *gin.Context) (project.AnalysisQuery, error) {
	var params analysisParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return project.AnalysisQuery{}, err
	}
	return params.query(), nil
}

// GetAnalysis 对账分析结果
// GET /api/projects/:id/analysis?province=&branch=&resource=&sortBy=&sortDir=
func (h *Handler) GetAnalysis(c *gin.Context) {
	q, err := bindAnalysisQuery(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "请求参数错误: "+err.Error())
		return
	}
	view, err := h.projects.Analyze(c.Param("id"), q)
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, view)
}

// GetIngredientTotals 原料理论总用量
// GET /api/projects/:id/ingredient-totals
func (h *Handler) GetIngredientTotals(c *gin.Context) {
	view, err := h.projects.IngredientTotals(c.Param("id"))
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, view)
}
