package api

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/project"
)

// defaultMaxUploadBytes 单个上传文件的默认大小上限
const defaultMaxUploadBytes = 32 << 20

// Options 处理器参数
type Options struct {
	ExportDir      string // 流式导出的临时文件目录，为空时使用系统临时目录
	MaxUploadBytes int64
	StoreDriver    string
	Version        string
	Logger         zerolog.Logger
}

// Handler API 处理器
type Handler struct {
	projects  *project.Manager
	downloads *exportDownloadStore
	opts      Options
	log       zerolog.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(projects *project.Manager, opts Options) *Handler {
	if opts.ExportDir == "" {
		opts.ExportDir = os.TempDir()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		projects:  projects,
		downloads: newExportDownloadStore(),
		opts:      opts,
		log:       opts.Logger,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 项目
	router.GET("/projects", h.ListProjects)
	router.POST("/projects", h.CreateProject)
	router.GET("/projects/:id", h.GetProject)
	router.DELETE("/projects/:id", h.DeleteProject)
	router.PATCH("/projects/:id/steps/:index", h.UpdateStep)

	// 数据上传
	router.POST("/projects/:id/datasets/:kind", h.UploadDataset)
	router.GET("/projects/:id/datasets/:kind", h.GetDataset)

	// 分析
	router.GET("/projects/:id/analysis", h.GetAnalysis)
	router.GET("/projects/:id/ingredient-totals", h.GetIngredientTotals)

	// 导出
	router.GET("/projects/:id/export/:report", h.ExportCSV)
	router.GET("/projects/:id/export.xlsx", h.ExportXLSX)
	router.POST("/projects/:id/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)
}
