package api

import (
	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Version          string  `json:"version"`
	Store            string  `json:"store"`
	Projects         int     `json:"projects"`
	ReadyProjects    int     `json:"readyProjects"` // 三类数据都已导入
	NearMatchPercent float64 `json:"nearMatchPercent"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	items, err := h.projects.ListProjects()
	if err != nil {
		h.failWith(c, err)
		return
	}

	ready := 0
	for _, p := range items {
		if p.RecipeCount > 0 && p.SupplyCount > 0 && p.SalesCount > 0 {
			ready++
		}
	}

	success(c, StatusResponse{
		Version:          h.opts.Version,
		Store:            h.opts.StoreDriver,
		Projects:         len(items),
		ReadyProjects:    ready,
		NearMatchPercent: h.projects.Engine().NearMatchPercent(),
	})
}
