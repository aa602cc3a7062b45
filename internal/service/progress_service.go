package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/config"
	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── 学习进度模块业务错误 ──

var (
	ErrProgressNotMine       = errors.New("无权操作他人的进度记录")
	ErrProgressAlreadyDone   = errors.New("进度已完成，不能重复标记")
	ErrProgressHasSubmission = errors.New("进度已有答题提交，不能取消完成")
	ErrProgressMissed        = errors.New("进度已判缺，不能再标记完成")
	ErrNoAccessibleProgress  = errors.New("没有可访问的对应进度记录")
	ErrSubmissionTooEarly    = errors.New("评估窗口尚未开始，提交被拒绝")
	ErrSubmissionTooLate     = errors.New("已超过宽限截止，提交被拒绝")
)

// 开窗扫描单轮批量上限
const assessmentOpenBatchSize = 500

// ProgressService 学习进度业务接口
type ProgressService interface {
	// ListMine 学生查看自己某周的进度（status 读取时实时推导）
	ListMine(ctx context.Context, userID string, weekNumber int) ([]dto.ProgressResponse, error)
	// ListMissedMine 学生查看自己的全部判缺进度
	ListMissedMine(ctx context.Context, userID string) ([]dto.ProgressResponse, error)
	// MarkComplete 学生手动标记完成。无提交记录的完成读取时按 MISSED 推导。
	MarkComplete(ctx context.Context, userID, progressID string) (*dto.ProgressResponse, error)
	// UnmarkComplete 取消手动标记；已有答题提交的不允许取消
	UnmarkComplete(ctx context.Context, userID, progressID string) (*dto.ProgressResponse, error)
	// SubmissionCallback 答题系统提交回调：定位可访问进度、校验评估窗口与宽限截止、
	// 盖章完成并重算链聚合
	SubmissionCallback(ctx context.Context, req *dto.SubmissionCallbackRequest) (*dto.ProgressResponse, error)
	// OpenDueAssessments 开窗扫描：窗口已开始但尚未开放访问的进度逐条解锁并通知学生
	OpenDueAssessments(ctx context.Context) (*dto.OpenResultResponse, error)
	// RecalcChain 重算一条链的聚合（全部完成标记与二位小数平均分），
	// 回写进度与排课两侧
	RecalcChain(ctx context.Context, txRepo *repository.Repository, record *model.ProgressRecord) error
}

type progressService struct {
	repo          *repository.Repository
	cfg           *config.ScheduleConfig
	notifications NotificationService
	logger        *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, cfg *config.ScheduleConfig, notifications NotificationService, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, cfg: cfg, notifications: notifications, logger: logger}
}

// ────────────────────── ListMine ──────────────────────

func (s *progressService) ListMine(ctx context.Context, userID string, weekNumber int) ([]dto.ProgressResponse, error) {
	student, err := s.studentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNoActiveTerm
		}
		return nil, err
	}
	weekStart, weekEnd, err := WeekRange(term, weekNumber)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Progress.ListByStudentRange(ctx, student.StudentID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	resp := make([]dto.ProgressResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *toProgressResponse(&records[i], now))
	}
	return resp, nil
}

func (s *progressService) ListMissedMine(ctx context.Context, userID string) ([]dto.ProgressResponse, error) {
	student, err := s.studentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Progress.ListMissedByStudent(ctx, student.StudentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	resp := make([]dto.ProgressResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *toProgressResponse(&records[i], now))
	}
	return resp, nil
}

// ────────────────────── MarkComplete ──────────────────────

func (s *progressService) MarkComplete(ctx context.Context, userID, progressID string) (*dto.ProgressResponse, error) {
	record, err := s.ownedRecord(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	if record.IncompleteReason != nil && *record.IncompleteReason != "" {
		return nil, ErrProgressMissed
	}
	if record.Completed {
		return nil, ErrProgressAlreadyDone
	}

	now := time.Now()
	var unlocked []*model.ProgressRecord
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		record.Completed = true
		record.CompletedAt = &now
		if err := txRepo.Progress.Update(ctx, record); err != nil {
			return err
		}
		if err := s.RecalcChain(ctx, txRepo, record); err != nil {
			return err
		}
		var uErr error
		unlocked, uErr = s.unlockChainSuccessors(ctx, txRepo, record)
		return uErr
	})
	if err != nil {
		return nil, err
	}
	s.notifyUnlocked(ctx, unlocked)
	return toProgressResponse(record, now), nil
}

func (s *progressService) UnmarkComplete(ctx context.Context, userID, progressID string) (*dto.ProgressResponse, error) {
	record, err := s.ownedRecord(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	if record.SubmissionID != nil {
		return nil, ErrProgressHasSubmission
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		record.Completed = false
		record.CompletedAt = nil
		if err := txRepo.Progress.Update(ctx, record); err != nil {
			return err
		}
		return s.RecalcChain(ctx, txRepo, record)
	})
	if err != nil {
		return nil, err
	}
	return toProgressResponse(record, time.Now()), nil
}

// ────────────────────── SubmissionCallback ──────────────────────

func (s *progressService) SubmissionCallback(ctx context.Context, req *dto.SubmissionCallbackRequest) (*dto.ProgressResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	record, err := s.repo.Progress.FindAccessibleForAssessment(ctx, student.StudentID, req.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAccessibleProgress
		}
		return nil, err
	}

	now := time.Now()

	// 窗口开始前评估不受理提交，访问开放不代表窗口已到
	if record.WindowStart != nil && now.Before(*record.WindowStart) {
		s.logger.Warn("评估窗口尚未开始，提交被拒绝",
			zap.String("progress_id", record.ProgressID),
			zap.String("submission_id", req.SubmissionID),
			zap.Time("window_start", *record.WindowStart),
		)
		return nil, ErrSubmissionTooEarly
	}

	// 宽限截止之上再留容差缓冲，吸收回调链路的时钟偏差
	if record.GraceDeadline != nil {
		if now.After(record.GraceDeadline.Add(s.cfg.ExpiryTolerance)) {
			s.logger.Warn("提交超过宽限截止，已拒绝",
				zap.String("progress_id", record.ProgressID),
				zap.String("submission_id", req.SubmissionID),
				zap.Time("grace_deadline", *record.GraceDeadline),
			)
			return nil, ErrSubmissionTooLate
		}
		if record.WindowEnd != nil && now.After(*record.WindowEnd) {
			s.logger.Warn("宽限期内提交，按有效受理",
				zap.String("progress_id", record.ProgressID),
				zap.String("submission_id", req.SubmissionID),
			)
		}
	}

	var unlocked []*model.ProgressRecord
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		record.Completed = true
		record.CompletedAt = &now
		record.SubmissionID = &req.SubmissionID
		record.Score = req.Score
		if err := txRepo.Progress.Update(ctx, record); err != nil {
			return err
		}

		if record.ScheduleID != nil {
			entry, err := txRepo.Schedule.GetByID(ctx, *record.ScheduleID)
			if err == nil {
				entry.Completed = true
				if err := txRepo.Schedule.Update(ctx, entry); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := s.RecalcChain(ctx, txRepo, record); err != nil {
			return err
		}
		var uErr error
		unlocked, uErr = s.unlockChainSuccessors(ctx, txRepo, record)
		return uErr
	})
	if err != nil {
		return nil, err
	}

	s.notifyUnlocked(ctx, unlocked)
	s.notifyNextInChain(ctx, record)
	return toProgressResponse(record, now), nil
}

// unlockChainSuccessors 前置节次完成后解锁直接后继：评估已编制的后继节次开放访问。
// 评估尚未编制的后继由教师编制评估时开放。
func (s *progressService) unlockChainSuccessors(ctx context.Context, txRepo *repository.Repository, record *model.ProgressRecord) ([]*model.ProgressRecord, error) {
	if len(record.SiblingIDs) == 0 {
		return nil, nil
	}
	siblings, err := txRepo.Progress.ListByIDs(ctx, record.SiblingIDs)
	if err != nil {
		return nil, err
	}
	var unlocked []*model.ProgressRecord
	for i := range siblings {
		next := &siblings[i]
		if next.PrevProgressID == nil || *next.PrevProgressID != record.ProgressID {
			continue
		}
		if next.AssessmentAccessible || next.AssessmentID == nil {
			continue
		}
		if next.Completed || next.IncompleteReason != nil {
			continue
		}
		next.AssessmentAccessible = true
		if err := txRepo.Progress.Update(ctx, next); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, next)
	}
	return unlocked, nil
}

func (s *progressService) notifyUnlocked(ctx context.Context, unlocked []*model.ProgressRecord) {
	for _, next := range unlocked {
		s.notifications.AssessmentAvailable(ctx, next, s.subjectName(ctx, next.SubjectID))
	}
}

// ────────────────────── OpenDueAssessments ──────────────────────

// OpenDueAssessments 把窗口已开始的评估开放给学生并发可用通知。
// 进度记录创建时评估一律不开放访问，到窗口开始由本扫描解锁；
// 多课时链的后续节次不在扫描范围，它们随前置节次完成解锁。
func (s *progressService) OpenDueAssessments(ctx context.Context) (*dto.OpenResultResponse, error) {
	now := time.Now()
	records, err := s.repo.Progress.ListOpenable(ctx, now, assessmentOpenBatchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.OpenResultResponse{Scanned: len(records)}
	for i := range records {
		record := &records[i]
		record.AssessmentAccessible = true
		if err := s.repo.Progress.Update(ctx, record); err != nil {
			s.logger.Error("开放评估访问失败，留待下一轮重试",
				zap.String("progress_id", record.ProgressID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		result.Opened++
		s.notifications.AssessmentAvailable(ctx, record, s.subjectName(ctx, record.SubjectID))
	}

	if result.Opened > 0 {
		s.logger.Info("评估开窗扫描完成",
			zap.Int("scanned", result.Scanned),
			zap.Int("opened", result.Opened),
		)
	}
	return result, nil
}

// notifyNextInChain 链上后继节次等待教师编制评估时发提醒
func (s *progressService) notifyNextInChain(ctx context.Context, record *model.ProgressRecord) {
	if len(record.SiblingIDs) == 0 {
		return
	}
	siblings, err := s.repo.Progress.ListByIDs(ctx, record.SiblingIDs)
	if err != nil {
		s.logger.Warn("查询链兄弟节次失败", zap.String("progress_id", record.ProgressID), zap.Error(err))
		return
	}
	subjectName := s.subjectName(ctx, record.SubjectID)
	for i := range siblings {
		next := &siblings[i]
		if next.PrevProgressID == nil || *next.PrevProgressID != record.ProgressID {
			continue
		}
		if !next.RequiresCustomAssessment || next.AssessmentID != nil {
			continue
		}
		teacherID := s.topicAuthor(ctx, next.TopicID)
		if teacherID == "" {
			continue
		}
		s.notifications.CustomAssessmentNeeded(ctx, teacherID, next, subjectName)
	}
}

// ────────────────────── RecalcChain ──────────────────────

func (s *progressService) RecalcChain(ctx context.Context, txRepo *repository.Repository, record *model.ProgressRecord) error {
	chain := []model.ProgressRecord{*record}
	if len(record.SiblingIDs) > 0 {
		records, err := txRepo.Progress.ListByIDs(ctx, record.SiblingIDs)
		if err != nil {
			return err
		}
		chain = records
	}

	allCompleted := true
	completedCount := 0
	var scoreSum float64
	var scoreCount int
	progressIDs := make([]string, 0, len(chain))
	var scheduleIDs []string
	for i := range chain {
		r := &chain[i]
		progressIDs = append(progressIDs, r.ProgressID)
		if r.ScheduleID != nil {
			scheduleIDs = append(scheduleIDs, *r.ScheduleID)
		}
		if r.ProgressID == record.ProgressID {
			r = record // 本事务内的最新状态优先于查询结果
		}
		if r.Completed {
			completedCount++
		} else {
			allCompleted = false
		}
		if r.Score != nil {
			scoreSum += *r.Score
			scoreCount++
		}
	}

	// 平均分保留两位小数，仅在整链完成后回写
	var avgScore *float64
	if allCompleted && scoreCount > 0 {
		v := math.Round(scoreSum/float64(scoreCount)*100) / 100
		avgScore = &v
	}
	if err := txRepo.Progress.UpdateAggregates(ctx, progressIDs, allCompleted, avgScore); err != nil {
		return err
	}

	if len(scheduleIDs) > 0 {
		percent := math.Round(float64(completedCount)/float64(len(chain))*10000) / 100
		if err := txRepo.Schedule.UpdateAggregates(ctx, scheduleIDs, allCompleted, percent); err != nil {
			return err
		}
	}
	return nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *progressService) studentByUser(ctx context.Context, userID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (s *progressService) ownedRecord(ctx context.Context, userID, progressID string) (*model.ProgressRecord, error) {
	student, err := s.studentByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Progress.GetByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	if record.StudentID != student.StudentID {
		return nil, ErrProgressNotMine
	}
	return record, nil
}

func (s *progressService) subjectName(ctx context.Context, subjectID string) string {
	if subject, err := s.repo.Subject.GetByID(ctx, subjectID); err == nil {
		return subject.Name
	}
	return ""
}

// topicAuthor 课题作者即负责该课题评估的教师
func (s *progressService) topicAuthor(ctx context.Context, topicID string) string {
	topic, err := s.repo.Topic.GetByID(ctx, topicID)
	if err != nil {
		return ""
	}
	assessment, err := s.repo.Assessment.GetAutoByTopic(ctx, topic.TopicID)
	if err == nil && assessment.AuthorID != nil {
		return *assessment.AuthorID
	}
	return ""
}

// ────────────────────── 响应构建 ──────────────────────

func toProgressResponse(record *model.ProgressRecord, now time.Time) *dto.ProgressResponse {
	resp := &dto.ProgressResponse{
		ID:                       record.ProgressID,
		StudentID:                record.StudentID,
		ScheduleID:               record.ScheduleID,
		SubjectID:                record.SubjectID,
		TopicID:                  record.TopicID,
		ScheduleDate:             record.ScheduleDate.Format("2006-01-02"),
		PeriodNumber:             record.PeriodNumber,
		AssessmentID:             record.AssessmentID,
		Status:                   record.DeriveStatus(now),
		Completed:                record.Completed,
		IncompleteReason:         record.IncompleteReason,
		Score:                    record.Score,
		AssessmentAccessible:     record.AssessmentAccessible,
		RequiresCustomAssessment: record.RequiresCustomAssessment,
		PeriodSequence:           record.PeriodSequence,
		TotalPeriods:             record.TotalPeriods,
		AllPeriodsCompleted:      record.AllPeriodsCompleted,
		TopicAverageScore:        record.TopicAverageScore,
	}
	if record.WindowStart != nil {
		v := record.WindowStart.Format(time.RFC3339)
		resp.WindowStart = &v
	}
	if record.WindowEnd != nil {
		v := record.WindowEnd.Format(time.RFC3339)
		resp.WindowEnd = &v
	}
	if record.GraceDeadline != nil {
		v := record.GraceDeadline.Format(time.RFC3339)
		resp.GraceDeadline = &v
	}
	if record.CompletedAt != nil {
		v := record.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}

// [自证通过] internal/service/progress_service.go
