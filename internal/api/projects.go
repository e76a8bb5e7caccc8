package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// UpdateStepRequest 步骤标记请求
type UpdateStepRequest struct {
	Done *bool `json:"done"`
}

// ListProjects 项目列表（按创建时间倒序）
// GET /api/projects
func (h *Handler) ListProjects(c *gin.Context) {
	items, err := h.projects.ListProjects()
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// CreateProject 创建项目，名称为空时使用默认名称
// POST /api/projects
func (h *Handler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, CodeBadRequest, "请求参数错误: "+err.Error())
			return
		}
	}
	summary, err := h.projects.CreateProject(req.Name)
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, summary)
}

// GetProject 项目详情
// GET /api/projects/:id
func (h *Handler) GetProject(c *gin.Context) {
	detail, err := h.projects.GetProjectDetail(c.Param("id"))
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, detail)
}

// DeleteProject 删除项目
// DELETE /api/projects/:id
func (h *Handler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.projects.DeleteProject(id); err != nil {
		h.failWith(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// UpdateStep 设置步骤完成标记
// PATCH /api/projects/:id/steps/:index
func (h *Handler) UpdateStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidStep, "无效的步骤序号")
		return
	}
	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Done == nil {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "请求参数错误: 需要 done 字段")
		return
	}
	summary, err := h.projects.SetStep(c.Param("id"), index, *req.Done)
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, summary)
}
