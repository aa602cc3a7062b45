package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lessonflow/backend/config"
	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestGenerationService() (GenerationService, *testRepos) {
	repos := newTestRepos()
	logger := zap.NewNop()
	cfg := &config.ScheduleConfig{
		GracePeriodMinutes: 15,
		ExpiryTolerance:    5 * time.Minute,
		ArchiveEnabled:     true,
	}
	notifications := NewNotificationService(repos.Repo, "http://localhost:8080", logger)
	holidays := NewHolidayService(repos.Repo, logger)
	assessments := NewAssessmentService(repos.Repo, notifications, logger)
	archive := NewArchiveService(repos.Repo, logger)
	svc := NewGenerationService(repos.Repo, cfg, holidays, assessments, archive, notifications, logger)
	return svc, repos
}

// seedGenerationFixture 基础夹具：激活学期、个人排课学生、数学+英语课表（周一/周三）、
// 第1周课题与充足题库
func seedGenerationFixture(repos *testRepos) {
	term := testTerm()
	repos.Term.terms[term.TermID] = term

	repos.Student.students["stu-001"] = &model.Student{
		StudentID:    "stu-001",
		UserID:       "user-001",
		Name:         "测试学生",
		ScheduleType: model.ScheduleTypeIndividual,
		Enabled:      true,
	}

	repos.Subject.subjects["subj-math"] = &model.Subject{SubjectID: "subj-math", Name: "数学", Code: "MATH"}
	repos.Subject.subjects["subj-eng"] = &model.Subject{SubjectID: "subj-eng", Name: "英语", Code: "ENG"}

	repos.Timetable.timetables["tt-001"] = &model.StudentTimetable{
		TimetableID: "tt-001",
		StudentID:   "stu-001",
		Status:      model.TimetableStatusCompleted,
		UploadedAt:  time.Now(),
		Entries: model.TimetableEntries{
			{DayOfWeek: "MONDAY", PeriodNumber: 1, StartTime: "08:00", EndTime: "09:00", SubjectID: "subj-math", Confidence: 0.95},
			{DayOfWeek: "MONDAY", PeriodNumber: 2, StartTime: "09:00", EndTime: "10:00", SubjectID: "subj-eng", Confidence: 0.92},
			{DayOfWeek: "WEDNESDAY", PeriodNumber: 1, StartTime: "08:00", EndTime: "09:00", SubjectID: "subj-math", Confidence: 0.95},
			{DayOfWeek: "WEDNESDAY", PeriodNumber: 2, StartTime: "09:00", EndTime: "10:00", SubjectID: "subj-eng", Confidence: 0.92},
		},
	}

	teacherID := "teacher-001"
	repos.Topic.topics["topic-math-1"] = &model.LessonTopic{
		TopicID: "topic-math-1", SubjectID: "subj-math", TermID: "term-001", WeekNumber: 1, Title: "一元二次方程",
	}
	repos.Topic.topics["topic-eng-1"] = &model.LessonTopic{
		TopicID: "topic-eng-1", SubjectID: "subj-eng", TermID: "term-001", WeekNumber: 1, Title: "现在完成时",
	}
	for i := 0; i < 5; i++ {
		repos.Assessment.questions = append(repos.Assessment.questions,
			model.Question{QuestionID: questionID("math", i), SubjectID: "subj-math", AuthorID: teacherID, Active: true},
			model.Question{QuestionID: questionID("eng", i), SubjectID: "subj-eng", AuthorID: teacherID, Active: true},
		)
	}
}

func questionID(subject string, i int) string {
	return "q-" + subject + "-" + string(rune('a'+i))
}

// seedSaturdayHoliday 第1周周六设为停课假期
func seedSaturdayHoliday(repos *testRepos) {
	repos.Holiday.holidays["hol-001"] = &model.PublicHoliday{
		HolidayID:      "hol-001",
		HolidayDate:    time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		Name:           "校庆日",
		IsSchoolClosed: true,
	}
}

// ── GenerateWeek 测试 ──

func TestGenerationService_GenerateWeek_ChainLinking(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)

	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}
	if !result.Success {
		t.Fatalf("期望生成成功，失败学生: %v", result.FailedStudents)
	}
	if result.StudentsProcessed != 1 {
		t.Errorf("期望处理1名学生，实际=%d", result.StudentsProcessed)
	}
	// 周一2节 + 周三2节，周六假期跳过
	if result.SchedulesCreated != 4 {
		t.Errorf("期望创建4条排课，实际=%d", result.SchedulesCreated)
	}
	if !result.SaturdayHoliday {
		t.Error("结果应标记周六假期")
	}

	// 数学在周一/周三各 1 节，构成 1/2 与 2/2 的链
	var first, second *model.ScheduleEntry
	for _, e := range repos.Schedule.entries {
		if e.SubjectID != "subj-math" {
			continue
		}
		switch e.PeriodSequence {
		case 1:
			first = e
		case 2:
			second = e
		}
	}
	if first == nil || second == nil {
		t.Fatal("数学应链接为2节的多课时链")
	}
	if first.TotalPeriods != 2 || second.TotalPeriods != 2 {
		t.Errorf("链总节次期望2，实际=%d/%d", first.TotalPeriods, second.TotalPeriods)
	}
	if len(first.SiblingIDs) != 2 || !first.SiblingIDs.Contains(second.ScheduleID) {
		t.Error("链兄弟ID应包含两侧排课")
	}
	if first.AssessmentID == nil {
		t.Error("第1节应保留自动评估")
	}
	if second.AssessmentID != nil {
		t.Error("第2节不应挂自动评估")
	}
	if second.ScheduleDate.Before(first.ScheduleDate) {
		t.Error("链序应按日期升序")
	}

	// 进度侧：第2节等待教师编制并链接到第1节
	firstRec, err := repos.Progress.GetBySchedule(context.Background(), first.ScheduleID)
	if err != nil {
		t.Fatalf("第1节应有进度记录: %v", err)
	}
	secondRec, err := repos.Progress.GetBySchedule(context.Background(), second.ScheduleID)
	if err != nil {
		t.Fatalf("第2节应有进度记录: %v", err)
	}
	if firstRec.AssessmentID == nil {
		t.Error("第1节进度应保留自动评估")
	}
	if firstRec.AssessmentAccessible {
		t.Error("第1节评估创建时不应开放访问，应到窗口开始再解锁")
	}
	if secondRec.AssessmentAccessible {
		t.Error("第2节评估不应可访问")
	}
	if !secondRec.RequiresCustomAssessment {
		t.Error("第2节应标记等待编制自定义评估")
	}
	if secondRec.PrevProgressID == nil || *secondRec.PrevProgressID != firstRec.ProgressID {
		t.Error("第2节应链接到第1节的进度记录")
	}
}

func TestGenerationService_GenerateWeek_WindowStamping(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}

	for _, e := range repos.Schedule.entries {
		if e.PeriodNumber != 1 {
			continue
		}
		if e.StartTime != "16:00" || e.EndTime != "17:00" {
			t.Errorf("工作日第1节期望16:00-17:00，实际=%s-%s", e.StartTime, e.EndTime)
		}
		if e.WindowStart == nil || e.GraceDeadline == nil {
			t.Fatal("排课创建时应盖章评估窗口与宽限截止")
		}
		if !e.GraceDeadline.Equal(e.WindowEnd.Add(15 * time.Minute)) {
			t.Error("宽限截止应为窗口结束+15分钟")
		}
	}
}

func TestGenerationService_GenerateWeek_SaturdayFallback(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	// 不设假期：周六按整张课表科目回绕分配3节

	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}
	if result.SaturdayHoliday {
		t.Error("未设假期时不应标记周六假期")
	}

	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	var satEntries []*model.ScheduleEntry
	for _, e := range repos.Schedule.entries {
		if sameDate(e.ScheduleDate, saturday) {
			satEntries = append(satEntries, e)
		}
	}
	if len(satEntries) != 3 {
		t.Fatalf("周六期望3节排课，实际=%d", len(satEntries))
	}
	for _, e := range satEntries {
		// 课表科目集合为 [数学, 英语]，第3节回绕到数学
		if e.SubjectID != "subj-math" && e.SubjectID != "subj-eng" {
			t.Errorf("周六科目应来自课表集合，实际=%s", e.SubjectID)
		}
		if e.PeriodNumber == 1 && e.StartTime != "12:00" {
			t.Errorf("周六第1节期望12:00开始，实际=%s", e.StartTime)
		}
	}
}

func TestGenerationService_GenerateWeek_MissingTopic(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)
	// 删除英语课题：英语排课应保留但等待人工指定
	delete(repos.Topic.topics, "topic-eng-1")

	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}
	if result.MissingTopics != 2 {
		t.Errorf("期望2条缺课题排课，实际=%d", result.MissingTopics)
	}

	for _, e := range repos.Schedule.entries {
		if e.SubjectID != "subj-eng" {
			continue
		}
		if e.Status != model.ScheduleStatusMissingTopic {
			t.Errorf("缺课题排课状态期望MISSING_TOPIC，实际=%s", e.Status)
		}
		if e.AssignMethod != model.AssignMethodPendingManual {
			t.Errorf("缺课题排课期望PENDING_MANUAL，实际=%s", e.AssignMethod)
		}
		// 缺课题的排课不建进度
		if _, err := repos.Progress.GetBySchedule(context.Background(), e.ScheduleID); err == nil {
			t.Error("缺课题排课不应有进度记录")
		}
	}
}

func TestGenerationService_GenerateWeek_InsufficientQuestions(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)
	// 英语题库只剩1题：课题照常分配，评估留空
	var kept []model.Question
	for _, q := range repos.Assessment.questions {
		if q.SubjectID != "subj-eng" || q.QuestionID == questionID("eng", 0) {
			kept = append(kept, q)
		}
	}
	repos.Assessment.questions = kept

	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}
	if !result.Success {
		t.Fatal("题目不足应按软失败处理，整周生成仍成功")
	}

	for _, e := range repos.Schedule.entries {
		if e.SubjectID != "subj-eng" || e.PeriodSequence != 1 {
			continue
		}
		if e.Status != model.ScheduleStatusReady {
			t.Errorf("课题已分配的排课状态期望READY，实际=%s", e.Status)
		}
		if e.TopicID == nil {
			t.Error("课题应照常分配")
		}
		if e.AssessmentID != nil {
			t.Error("题目不足时评估应留空")
		}
		record, err := repos.Progress.GetBySchedule(context.Background(), e.ScheduleID)
		if err != nil {
			t.Fatalf("应有进度记录: %v", err)
		}
		if record.AssessmentAccessible {
			t.Error("无评估时访问性应为false")
		}
	}
}

func TestGenerationService_GenerateWeek_PreservesSubmitted(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("首次生成应成功: %v", err)
	}

	// 给数学第1节盖章提交记录
	var submitted *model.ProgressRecord
	for _, r := range repos.Progress.records {
		if r.SubjectID == "subj-math" && r.PeriodSequence == 1 {
			submitted = r
			break
		}
	}
	if submitted == nil {
		t.Fatal("夹具中应存在数学第1节进度")
	}
	subID := "sub-001"
	score := 92.5
	submitted.Completed = true
	submitted.SubmissionID = &subID
	submitted.Score = &score

	// 重新生成：带提交的进度保留并解挂，其余删除重建
	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("重新生成应成功: %v", err)
	}
	if result.ProgressDetached != 1 {
		t.Errorf("期望解挂1条带提交进度，实际=%d", result.ProgressDetached)
	}

	preserved, err := repos.Progress.GetByID(context.Background(), submitted.ProgressID)
	if err != nil {
		t.Fatalf("带提交的进度不应被删除: %v", err)
	}
	if preserved.ScheduleID != nil {
		t.Error("解挂后进度不应再关联排课")
	}
	if preserved.SubmissionID == nil || *preserved.SubmissionID != "sub-001" {
		t.Error("提交记录应原样保留")
	}
	if result.SchedulesCreated != 4 {
		t.Errorf("重新生成应重建4条排课，实际=%d", result.SchedulesCreated)
	}
}

func TestGenerationService_GenerateWeek_ArchivesOldData(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("首次生成应成功: %v", err)
	}
	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("重新生成应成功: %v", err)
	}
	if result.SchedulesArchived != 4 {
		t.Errorf("重新生成前应归档4条旧排课，实际=%d", result.SchedulesArchived)
	}
	if len(repos.Archive.schedules) != 4 {
		t.Errorf("归档表期望4条快照，实际=%d", len(repos.Archive.schedules))
	}
}

func TestGenerationService_GenerateWeek_SkipsStudentWithoutTimetable(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	// 课表退回解析中状态：学生跳过，不计失败
	repos.Timetable.timetables["tt-001"].Status = model.TimetableStatusProcessing

	result, err := svc.GenerateWeek(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeek 应成功: %v", err)
	}
	if !result.Success {
		t.Error("无课表学生跳过后整周仍应成功")
	}
	if result.StudentsProcessed != 0 {
		t.Errorf("期望处理0名学生，实际=%d", result.StudentsProcessed)
	}
	if len(result.FailedStudents) != 0 {
		t.Errorf("无课表不应计入失败，实际: %v", result.FailedStudents)
	}
}

func TestGenerationService_GenerateWeek_NoActiveTerm(t *testing.T) {
	svc, _ := setupTestGenerationService()

	_, err := svc.GenerateWeek(context.Background(), 1)
	if err == nil {
		t.Fatal("无激活学期应报错")
	}
}

// ── GenerateForStudent 测试 ──

func TestGenerationService_GenerateForStudent_NotIndividual(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	repos.Student.students["stu-001"].ScheduleType = model.ScheduleTypeClass

	_, err := svc.GenerateForStudent(context.Background(), "stu-001", 1)
	if !errors.Is(err, ErrStudentNotIndividual) {
		t.Errorf("期望 ErrStudentNotIndividual，实际: %v", err)
	}
}

func TestGenerationService_GenerateForStudent_NotFound(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)

	_, err := svc.GenerateForStudent(context.Background(), "missing", 1)
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

// ── 人工课题指定测试 ──

func TestGenerationService_AssignTopic(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)
	delete(repos.Topic.topics, "topic-eng-1")

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	missing, err := svc.ListMissingTopics(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListMissingTopics 应成功: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("期望2条缺课题排课，实际=%d", len(missing))
	}

	// 补建英语课题后人工指定
	repos.Topic.topics["topic-eng-1"] = &model.LessonTopic{
		TopicID: "topic-eng-1", SubjectID: "subj-eng", TermID: "term-001", WeekNumber: 1, Title: "现在完成时",
	}

	resp, err := svc.AssignTopic(context.Background(), missing[0].ScheduleID, &dto.AssignTopicRequest{TopicID: "topic-eng-1"}, "admin-001")
	if err != nil {
		t.Fatalf("AssignTopic 应成功: %v", err)
	}
	if resp.Status != model.ScheduleStatusReady {
		t.Errorf("指定课题后状态期望READY，实际=%s", resp.Status)
	}

	entry := repos.Schedule.entries[missing[0].ScheduleID]
	if entry.AssignMethod != model.AssignMethodManual {
		t.Errorf("指定方式期望MANUAL，实际=%s", entry.AssignMethod)
	}
	if entry.AssignedBy == nil || *entry.AssignedBy != "admin-001" {
		t.Error("应记录操作者")
	}
	if _, err := repos.Progress.GetBySchedule(context.Background(), entry.ScheduleID); err != nil {
		t.Errorf("指定课题后应补建进度记录: %v", err)
	}

	// 重复指定被拒绝
	_, err = svc.AssignTopic(context.Background(), missing[0].ScheduleID, &dto.AssignTopicRequest{TopicID: "topic-eng-1"}, "admin-001")
	if !errors.Is(err, ErrTopicAlreadyAssigned) {
		t.Errorf("期望 ErrTopicAlreadyAssigned，实际: %v", err)
	}
}

func TestGenerationService_AssignTopic_SubjectMismatch(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)
	delete(repos.Topic.topics, "topic-eng-1")

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("生成应成功: %v", err)
	}
	missing, _ := svc.ListMissingTopics(context.Background(), 1)
	if len(missing) == 0 {
		t.Fatal("应存在缺课题排课")
	}

	// 用数学课题指定英语排课
	_, err := svc.AssignTopic(context.Background(), missing[0].ScheduleID, &dto.AssignTopicRequest{TopicID: "topic-math-1"}, "admin-001")
	if !errors.Is(err, ErrTopicSubjectMismatch) {
		t.Errorf("期望 ErrTopicSubjectMismatch，实际: %v", err)
	}
}

func TestGenerationService_BulkAssignTopic(t *testing.T) {
	svc, repos := setupTestGenerationService()
	seedGenerationFixture(repos)
	seedSaturdayHoliday(repos)
	delete(repos.Topic.topics, "topic-eng-1")

	if _, err := svc.GenerateWeek(context.Background(), 1); err != nil {
		t.Fatalf("生成应成功: %v", err)
	}
	repos.Topic.topics["topic-eng-1"] = &model.LessonTopic{
		TopicID: "topic-eng-1", SubjectID: "subj-eng", TermID: "term-001", WeekNumber: 1, Title: "现在完成时",
	}

	resp, err := svc.BulkAssignTopic(context.Background(), &dto.BulkAssignTopicRequest{
		SubjectID:  "subj-eng",
		WeekNumber: 1,
		TopicID:    "topic-eng-1",
	}, "admin-001")
	if err != nil {
		t.Fatalf("BulkAssignTopic 应成功: %v", err)
	}
	if resp.Assigned != 2 {
		t.Errorf("期望批量指定2条，实际=%d", resp.Assigned)
	}
	if resp.Skipped != 0 {
		t.Errorf("不应有跳过，实际=%d", resp.Skipped)
	}
}

// [自证通过] internal/service/generation_service_test.go
