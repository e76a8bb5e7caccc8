package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/exporter"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type exportProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ExportCSV 导出明细或门店汇总 CSV，支持与分析接口相同的筛选排序参数
// GET /api/projects/:id/export/:report (detailed.csv | summary.csv)
func (h *Handler) ExportCSV(c *gin.Context) {
	report, ok := exporter.ParseReport(strings.TrimSuffix(c.Param("report"), ".csv"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "未知的报表类型")
		return
	}
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

	var data []byte
	if report == exporter.ReportSummary {
		data, err = exporter.SummaryCSV(view.Summaries)
	} else {
		data, err = exporter.DetailedCSV(view.Results)
	}
	if err != nil {
		h.failWith(c, err)
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(report.FileName()))
	c.Data(http.StatusOK, csvContentType, data)
}

// ExportXLSX 导出分析工作簿
// GET /api/projects/:id/export.xlsx
func (h *Handler) ExportXLSX(c *gin.Context) {
	data, err := h.workbookData(c)
	if err != nil {
		h.failWith(c, err)
		return
	}
	content, err := exporter.WorkbookBytes(data, exporter.WorkbookOptions{})
	if err != nil {
		h.failWith(c, err)
		return
	}
	c.Header("Content-Disposition", buildContentDisposition(exporter.WorkbookFileName))
	c.Data(http.StatusOK, xlsxContentType, content)
}

// workbookData 工作簿数据；原料合计缺数据时省略该表
func (h *Handler) workbookData(c *gin.Context) (exporter.WorkbookData, error) {
	q, err := bindAnalysisQuery(c)
	if err != nil {
		return exporter.WorkbookData{}, err
	}
	id := c.Param("id")
	view, err := h.projects.Analyze(id, q)
	if err != nil {
		return exporter.WorkbookData{}, err
	}
	data := exporter.WorkbookData{Results: view.Results, Summaries: view.Summaries}
	if totals, err := h.projects.IngredientTotals(id); err == nil {
		data.Totals = totals.Totals
	}
	return data, nil
}

// ExportStream 导出工作簿（SSE 进度 + 完成后提供下载地址）
// POST /api/projects/:id/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	id := c.Param("id")
	data, err := h.workbookData(c)
	if err != nil {
		h.failWith(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "不支持流式响应")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:      "start",
		Message:   "开始导出",
		Data:      map[string]any{"projectId": id, "results": len(data.Results)},
		Timestamp: time.Now(),
	})

	progressFn := func(p exporter.ProgressEvent) {
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      p,
			Timestamp: time.Now(),
		})
	}

	sendError := func(msg string) {
		send(exportProgressEvent{
			Type:      "error",
			Message:   msg,
			Data:      map[string]any{},
			Timestamp: time.Now(),
		})
	}

	file, err := exporter.Workbook(data, exporter.WorkbookOptions{Progress: progressFn})
	if err != nil {
		sendError("导出失败: " + err.Error())
		return
	}
	defer file.Close()

	tempPath := filepath.Join(h.opts.ExportDir, fmt.Sprintf("hammadde_export_%s_%d.xlsx", id, time.Now().UnixNano()))
	if err := file.SaveAs(tempPath); err != nil {
		sendError("写入导出文件失败: " + err.Error())
		_ = os.Remove(tempPath)
		return
	}

	token := h.downloads.put(exportDownload{
		filePath:  tempPath,
		fileName:  exporter.WorkbookFileName,
		projectID: id,
	}, exportTTL)

	send(exportProgressEvent{
		Type:    "done",
		Message: "导出完成",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": "/api/export/download/" + token,
		},
		Timestamp: time.Now(),
	})
}

// DownloadExport 下载流式导出生成的文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "缺少 token")
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		errorResponse(c, http.StatusNotFound, CodeNotFound, "下载链接已失效")
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		errorResponse(c, http.StatusNotFound, CodeNotFound, "导出文件不存在")
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(item.fileName))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}

// buildContentDisposition ASCII 回退名 + RFC 5987 编码的原始文件名
func buildContentDisposition(fileName string) string {
	fallback := asciiFileName(fileName)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, url.PathEscape(fileName))
}

func asciiFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x80 && r != '"' && r != '\\':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
