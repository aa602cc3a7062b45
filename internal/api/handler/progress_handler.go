package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/service"
	pkgerrors "lessonflow/backend/pkg/errors"
	"lessonflow/backend/pkg/response"
)

// ProgressHandler 学习进度模块 HTTP 处理器
type ProgressHandler struct {
	progressSvc   service.ProgressService
	expirySvc     service.ExpiryService
	assessmentSvc service.AssessmentService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService, expirySvc service.ExpiryService, assessmentSvc service.AssessmentService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc, expirySvc: expirySvc, assessmentSvc: assessmentSvc}
}

// ListMine 学生查看自己某周的进度
// GET /api/v1/progress/me?week=3
func (h *ProgressHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	week, ok := MustGetWeekQuery(c, "week")
	if !ok {
		return
	}

	records, err := h.progressSvc.ListMine(c.Request.Context(), userID, week)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, records)
}

// ListMissedMine 学生查看自己的全部判缺进度
// GET /api/v1/progress/expired
func (h *ProgressHandler) ListMissedMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	records, err := h.progressSvc.ListMissedMine(c.Request.Context(), userID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, records)
}

// MarkComplete 学生手动标记完成
// POST /api/v1/progress/:id/complete
func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.progressSvc.MarkComplete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, record)
}

// UnmarkComplete 学生取消手动标记
// DELETE /api/v1/progress/:id/complete
func (h *ProgressHandler) UnmarkComplete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.progressSvc.UnmarkComplete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, record)
}

// SubmissionCallback 答题系统提交回调（服务间凭据）
// POST /api/v1/submissions/callback
func (h *ProgressHandler) SubmissionCallback(c *gin.Context) {
	var req dto.SubmissionCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err.Error())
		return
	}

	record, err := h.progressSvc.SubmissionCallback(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoAccessibleProgress):
			response.NotFound(c, 24004, err.Error())
		case errors.Is(err, service.ErrSubmissionTooLate):
			response.Error(c, http.StatusUnprocessableEntity, 24005, err.Error())
		default:
			h.handleProgressError(c, err)
		}
		return
	}
	response.OK(c, record)
}

// Expire 管理员手动判缺
// POST /api/v1/admin/progress/:id/expire
func (h *ProgressHandler) Expire(c *gin.Context) {
	var req dto.ExpireProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err.Error())
		return
	}

	record, err := h.expirySvc.ExpireManually(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgressNotFound):
			response.NotFound(c, 24001, err.Error())
		case errors.Is(err, service.ErrExpireCompleted):
			response.Error(c, http.StatusConflict, 24006, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, record)
}

// ExpiredCount 某周判缺总数（管理员看板）
// GET /api/v1/admin/progress/expired/count?week=3
func (h *ProgressHandler) ExpiredCount(c *gin.Context) {
	week, ok := MustGetWeekQuery(c, "week")
	if !ok {
		return
	}

	count, err := h.expirySvc.CountMissed(c.Request.Context(), week)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	response.OK(c, count)
}

// ListWaitingCustom 等待教师编制评估的后续节次（教师）
// GET /api/v1/progress/custom-pending
func (h *ProgressHandler) ListWaitingCustom(c *gin.Context) {
	items, err := h.assessmentSvc.ListWaitingCustom(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, items)
}

func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, err.Error())
	case errors.Is(err, service.ErrProgressNotFound):
		response.NotFound(c, 24001, err.Error())
	case errors.Is(err, service.ErrProgressNotMine):
		response.Forbidden(c, 24002, err.Error())
	case errors.Is(err, service.ErrProgressAlreadyDone),
		errors.Is(err, service.ErrProgressHasSubmission),
		errors.Is(err, service.ErrProgressMissed):
		response.Error(c, http.StatusConflict, 24003, err.Error())
	case errors.Is(err, pkgerrors.ErrNoActiveTerm):
		response.NotFound(c, 20006, err.Error())
	case errors.Is(err, pkgerrors.ErrWeekOutOfRange):
		response.BadRequest(c, 20007, "周次超出学期范围")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/progress_handler.go
