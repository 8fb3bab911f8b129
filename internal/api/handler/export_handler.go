package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/internal/dto"
	"github.com/chsky1600/qicas/internal/service"
	"github.com/chsky1600/qicas/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出工作排课
// GET /api/v1/export/schedule?faculty_id=&year=&format=xlsx|ics
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var (
		buf         *bytes.Buffer
		filename    string
		contentType string
		err         error
	)

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		buf, filename, err = h.exportSvc.ExportWorkingXLSX(c.Request.Context(), req.FacultyID, req.Year)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "ics":
		buf, filename, err = h.exportSvc.ExportWorkingICS(c.Request.Context(), req.FacultyID, req.Year)
		contentType = "text/calendar; charset=utf-8"
	default:
		response.BadRequest(c, 10001, "format 仅支持 xlsx 或 ics")
		return
	}
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeAttachment(c, buf.Bytes(), filename, contentType)
}

// writeAttachment 设置下载响应头并写出文件内容
// 文件名含中文，需 RFC 5987 编码
func writeAttachment(c *gin.Context, data []byte, filename, contentType string) {
	encoded := url.PathEscape(filename)
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encoded))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoWorking):
		response.NotFound(c, 18001, "该院系学年尚无工作排课")
	case errors.Is(err, service.ErrExportNoAssigns):
		response.NotFound(c, 18002, "工作排课中无分配项")
	default:
		response.InternalError(c)
	}
}
