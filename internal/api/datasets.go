package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/project"
)

// UploadDataset 上传并处理一类数据源文件
// POST /api/projects/:id/datasets/:kind (multipart, 字段 file)
func (h *Handler) UploadDataset(c *gin.Context) {
	kind, ok := model.ParseSourceKind(c.Param("kind"))
	if !ok {
		h.failWith(c, fmt.Errorf("%w: %q", project.ErrUnknownKind, c.Param("kind")))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "未找到上传文件")
		return
	}
	if header.Size > h.opts.MaxUploadBytes {
		errorResponse(c, http.StatusRequestEntityTooLarge, CodeBadRequest, "上传文件过大")
		return
	}

	f, err := header.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeUnreadableFile, "读取上传文件失败")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeUnreadableFile, "读取上传文件失败")
		return
	}

	outcome, err := h.projects.Import(c.Param("id"), kind, header.Filename, data)
	if err != nil {
		h.failWith(c, err)
		return
	}
	success(c, outcome)
}

// GetDataset 某类数据源已导入的实体
// GET /api/projects/:id/datasets/:kind
func (h *Handler) GetDataset(c *gin.Context) {
	kind, ok := model.ParseSourceKind(c.Param("kind"))
	if !ok {
		h.failWith(c, fmt.Errorf("%w: %q", project.ErrUnknownKind, c.Param("kind")))
		return
	}
	p, err := h.projects.GetProject(c.Param("id"))
	if err != nil {
		h.failWith(c, err)
		return
	}

	dataset := p.Dataset(kind)
	uploads, err := h.projects.UploadedFiles(p.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("project", p.ID).Msg("读取上传记录失败")
	}
	resp := gin.H{
		"kind":     kind,
		"count":    dataset.Len(),
		"items":    dataset,
		"entities": dataset.Entities(),
	}
	if up, ok := uploads[kind]; ok {
		resp["file"] = gin.H{
			"fileName":   up.FileName,
			"size":       up.Size,
			"uploadedAt": up.UploadedAt,
		}
	}
	success(c, resp)
}
