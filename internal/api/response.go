package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/importer"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/parser"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/project"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/reconcile"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

// 业务错误码
const (
	CodeOK              = 0
	CodeBadRequest      = 1001
	CodeUnknownKind     = 1002
	CodeInvalidStep     = 1003
	CodeUnreadableFile  = 2001
	CodeColumnsNotFound = 2002
	CodeMissingData     = 3001
	CodeAnalysisFailed  = 3002
	CodeNotFound        = 4004
	CodeInternal        = 5001
)

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorDetail 可定位的错误附加信息
type ErrorDetail struct {
	Kind    model.SourceKind   `json:"kind,omitempty"`
	Columns []string           `json:"columns,omitempty"` // 未识别到的列角色
	Missing []model.SourceKind `json:"missing,omitempty"` // 缺少的数据源
	Labels  []string           `json:"labels,omitempty"`
}

// failWith 按错误类型选择 HTTP 状态与业务码
func (h *Handler) failWith(c *gin.Context, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("请求处理失败")
	}
	resp := Response{Code: code, Message: err.Error()}
	if detail := errorDetail(err); detail != nil {
		resp.Data = detail
	}
	c.JSON(status, resp)
}

func errorDetail(err error) *ErrorDetail {
	var colErr *importer.ColumnsError
	if errors.As(err, &colErr) {
		cols := make([]string, len(colErr.Missing))
		for i, r := range colErr.Missing {
			cols[i] = string(r)
		}
		return &ErrorDetail{Kind: colErr.Kind, Columns: cols}
	}
	var missErr *reconcile.MissingDataError
	if errors.As(err, &missErr) {
		labels := make([]string, len(missErr.Missing))
		for i, k := range missErr.Missing {
			labels[i] = k.Label()
		}
		return &ErrorDetail{Missing: missErr.Missing, Labels: labels}
	}
	return nil
}

func classifyError(err error) (int, int) {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, store.ErrInvalidStep):
		return http.StatusBadRequest, CodeInvalidStep
	case errors.Is(err, project.ErrUnknownKind):
		return http.StatusBadRequest, CodeUnknownKind
	case errors.Is(err, importer.ErrColumnsNotFound):
		return http.StatusUnprocessableEntity, CodeColumnsNotFound
	case errors.Is(err, parser.ErrEmptyInput),
		errors.Is(err, parser.ErrNoSheet),
		errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusBadRequest, CodeUnreadableFile
	case errors.Is(err, reconcile.ErrMissingData):
		return http.StatusConflict, CodeMissingData
	case errors.Is(err, reconcile.ErrAnalysisFailed):
		return http.StatusInternalServerError, CodeAnalysisFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
