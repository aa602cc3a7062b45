package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── Mock TermRepository ──

type mockTermRepo struct {
	terms map[string]*model.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		term.TermID = fmt.Sprintf("term-%03d", len(m.terms)+1)
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) ClearActive(_ context.Context) error {
	for _, t := range m.terms {
		t.IsActive = false
	}
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects map[string]*model.Subject
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListByIDs(_ context.Context, ids []string) ([]model.Subject, error) {
	var result []model.Subject
	for _, id := range ids {
		if s, ok := m.subjects[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListIndividualEnabled(_ context.Context) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.ScheduleType == model.ScheduleTypeIndividual && s.Enabled {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	timetables map[string]*model.StudentTimetable
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[string]*model.StudentTimetable)}
}

func (m *mockTimetableRepo) Create(_ context.Context, timetable *model.StudentTimetable) error {
	if timetable.TimetableID == "" {
		timetable.TimetableID = fmt.Sprintf("tt-%03d", len(m.timetables)+1)
	}
	m.timetables[timetable.TimetableID] = timetable
	return nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.StudentTimetable, error) {
	if t, ok := m.timetables[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) GetLatestCompleted(_ context.Context, studentID string) (*model.StudentTimetable, error) {
	var latest *model.StudentTimetable
	for _, t := range m.timetables {
		if t.StudentID != studentID || t.Status != model.TimetableStatusCompleted {
			continue
		}
		if latest == nil || t.UploadedAt.After(latest.UploadedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockTimetableRepo) UpdateEntries(_ context.Context, id string, entries model.TimetableEntries, status string) error {
	t, ok := m.timetables[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Entries = entries
	t.Status = status
	return nil
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	holidays map[string]*model.PublicHoliday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.PublicHoliday)}
}

func (m *mockHolidayRepo) Create(_ context.Context, holiday *model.PublicHoliday) error {
	if holiday.HolidayID == "" {
		holiday.HolidayID = fmt.Sprintf("hol-%03d", len(m.holidays)+1)
	}
	m.holidays[holiday.HolidayID] = holiday
	return nil
}

func (m *mockHolidayRepo) GetByID(_ context.Context, id string) (*model.PublicHoliday, error) {
	if h, ok := m.holidays[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) GetByDate(_ context.Context, date time.Time) (*model.PublicHoliday, error) {
	for _, h := range m.holidays {
		if sameDate(h.HolidayDate, date) {
			return h, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) ListByRange(_ context.Context, start, end time.Time) ([]model.PublicHoliday, error) {
	var result []model.PublicHoliday
	for _, h := range m.holidays {
		if dateInRange(h.HolidayDate, start, end) {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].HolidayDate.Before(result[j].HolidayDate) })
	return result, nil
}

func (m *mockHolidayRepo) Update(_ context.Context, holiday *model.PublicHoliday) error {
	m.holidays[holiday.HolidayID] = holiday
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id string) error {
	delete(m.holidays, id)
	return nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	topics map[string]*model.LessonTopic
}

func newMockTopicRepo() *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*model.LessonTopic)}
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.LessonTopic) error {
	if topic.TopicID == "" {
		topic.TopicID = fmt.Sprintf("topic-%03d", len(m.topics)+1)
	}
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.LessonTopic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) GetBySubjectWeek(_ context.Context, subjectID, termID string, weekNumber int) (*model.LessonTopic, error) {
	for _, t := range m.topics {
		if t.SubjectID == subjectID && t.TermID == termID && t.WeekNumber == weekNumber {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) ListByTermWeek(_ context.Context, termID string, weekNumber int) ([]model.LessonTopic, error) {
	var result []model.LessonTopic
	for _, t := range m.topics {
		if t.TermID == termID && t.WeekNumber == weekNumber {
			result = append(result, *t)
		}
	}
	return result, nil
}

// ── Mock AssessmentRepository ──

type mockAssessmentRepo struct {
	assessments map[string]*model.Assessment
	questions   []model.Question
	submissions map[string]*model.AssessmentSubmission
}

func newMockAssessmentRepo() *mockAssessmentRepo {
	return &mockAssessmentRepo{
		assessments: make(map[string]*model.Assessment),
		submissions: make(map[string]*model.AssessmentSubmission),
	}
}

func (m *mockAssessmentRepo) Create(_ context.Context, assessment *model.Assessment) error {
	if assessment.AssessmentID == "" {
		assessment.AssessmentID = fmt.Sprintf("assess-%03d", len(m.assessments)+1)
	}
	m.assessments[assessment.AssessmentID] = assessment
	return nil
}

func (m *mockAssessmentRepo) GetByID(_ context.Context, id string) (*model.Assessment, error) {
	if a, ok := m.assessments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) GetAutoByTopic(_ context.Context, topicID string) (*model.Assessment, error) {
	for _, a := range m.assessments {
		if a.TopicID == topicID && a.Kind == model.AssessmentKindAuto {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssessmentRepo) ListActiveQuestions(_ context.Context, subjectID string, topicID *string) ([]model.Question, error) {
	var result []model.Question
	for _, q := range m.questions {
		if !q.Active || q.SubjectID != subjectID {
			continue
		}
		if topicID != nil && q.TopicID != nil && *q.TopicID != *topicID {
			continue
		}
		result = append(result, q)
	}
	return result, nil
}

func (m *mockAssessmentRepo) GetSubmission(_ context.Context, submissionID string) (*model.AssessmentSubmission, error) {
	if s, ok := m.submissions[submissionID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ScheduleEntryRepository ──

type mockScheduleRepo struct {
	entries map[string]*model.ScheduleEntry
	seq     int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{entries: make(map[string]*model.ScheduleEntry)}
}

func (m *mockScheduleRepo) Create(_ context.Context, entry *model.ScheduleEntry) error {
	for _, e := range m.entries {
		if e.StudentID == entry.StudentID && sameDate(e.ScheduleDate, entry.ScheduleDate) && e.PeriodNumber == entry.PeriodNumber {
			return pkgerrors.ErrDuplicateEntry
		}
	}
	if entry.ScheduleID == "" {
		m.seq++
		entry.ScheduleID = fmt.Sprintf("sch-%03d", m.seq)
	}
	m.entries[entry.ScheduleID] = entry
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.ScheduleEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ExistsForSlot(_ context.Context, studentID string, date time.Time, period int) (bool, error) {
	for _, e := range m.entries {
		if e.StudentID == studentID && sameDate(e.ScheduleDate, date) && e.PeriodNumber == period {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockScheduleRepo) ListByStudentRange(_ context.Context, studentID string, start, end time.Time) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.StudentID == studentID && dateInRange(e.ScheduleDate, start, end) {
			result = append(result, *e)
		}
	}
	sortScheduleEntries(result)
	return result, nil
}

func (m *mockScheduleRepo) ListByRange(_ context.Context, start, end time.Time, studentID *string) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if !dateInRange(e.ScheduleDate, start, end) {
			continue
		}
		if studentID != nil && e.StudentID != *studentID {
			continue
		}
		result = append(result, *e)
	}
	sortScheduleEntries(result)
	return result, nil
}

func (m *mockScheduleRepo) ListMissingTopic(_ context.Context, start, end time.Time, subjectID *string) ([]model.ScheduleEntry, error) {
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.Status != model.ScheduleStatusMissingTopic || !dateInRange(e.ScheduleDate, start, end) {
			continue
		}
		if subjectID != nil && e.SubjectID != *subjectID {
			continue
		}
		result = append(result, *e)
	}
	sortScheduleEntries(result)
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, entry *model.ScheduleEntry) error {
	m.entries[entry.ScheduleID] = entry
	return nil
}

func (m *mockScheduleRepo) UpdateAggregates(_ context.Context, ids []string, allCompleted bool, percent float64) error {
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			e.AllCompleted = allCompleted
			e.CompletionPercent = percent
		}
	}
	return nil
}

func (m *mockScheduleRepo) Lock(_ context.Context, id string) error {
	e, ok := m.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Locked = true
	return nil
}

func (m *mockScheduleRepo) DeleteByRange(_ context.Context, start, end time.Time, studentID *string) (int64, error) {
	var deleted int64
	for id, e := range m.entries {
		if !dateInRange(e.ScheduleDate, start, end) {
			continue
		}
		if studentID != nil && e.StudentID != *studentID {
			continue
		}
		delete(m.entries, id)
		deleted++
	}
	return deleted, nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	records map[string]*model.ProgressRecord
	seq     int
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{records: make(map[string]*model.ProgressRecord)}
}

func (m *mockProgressRepo) Create(_ context.Context, record *model.ProgressRecord) error {
	for _, r := range m.records {
		if r.StudentID == record.StudentID && r.TopicID == record.TopicID &&
			sameDate(r.ScheduleDate, record.ScheduleDate) && r.PeriodNumber == record.PeriodNumber {
			return pkgerrors.ErrDuplicateEntry
		}
	}
	if record.ProgressID == "" {
		m.seq++
		record.ProgressID = fmt.Sprintf("prog-%03d", m.seq)
	}
	m.records[record.ProgressID] = record
	return nil
}

func (m *mockProgressRepo) GetByID(_ context.Context, id string) (*model.ProgressRecord, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) GetBySchedule(_ context.Context, scheduleID string) (*model.ProgressRecord, error) {
	for _, r := range m.records {
		if r.ScheduleID != nil && *r.ScheduleID == scheduleID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) ListByIDs(_ context.Context, ids []string) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockProgressRepo) ListByStudentRange(_ context.Context, studentID string, start, end time.Time) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if r.StudentID == studentID && dateInRange(r.ScheduleDate, start, end) {
			result = append(result, *r)
		}
	}
	sortProgressRecords(result)
	return result, nil
}

func (m *mockProgressRepo) FindAccessibleForAssessment(_ context.Context, studentID, assessmentID string) (*model.ProgressRecord, error) {
	for _, r := range m.records {
		if r.StudentID == studentID && r.AssessmentID != nil && *r.AssessmentID == assessmentID &&
			r.AssessmentAccessible && !r.Completed {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) ListOpenable(_ context.Context, now time.Time, limit int) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if r.AssessmentAccessible || r.AssessmentID == nil || r.PrevProgressID != nil {
			continue
		}
		if r.Completed || r.IncompleteReason != nil {
			continue
		}
		if r.WindowStart == nil || r.WindowStart.After(now) {
			continue
		}
		if r.WindowEnd == nil || !r.WindowEnd.After(now) {
			continue
		}
		result = append(result, *r)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	sortProgressRecords(result)
	return result, nil
}

func (m *mockProgressRepo) ListExpired(_ context.Context, cutoff time.Time, limit int) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if r.GraceDeadline == nil || !r.GraceDeadline.Before(cutoff) {
			continue
		}
		if r.Completed || r.IncompleteReason != nil {
			continue
		}
		result = append(result, *r)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockProgressRepo) ListMissedByStudent(_ context.Context, studentID string) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if r.StudentID == studentID && r.IncompleteReason != nil && *r.IncompleteReason == model.IncompleteReasonMissedGrace {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockProgressRepo) CountMissedInRange(_ context.Context, start, end time.Time) (int64, error) {
	var count int64
	for _, r := range m.records {
		if r.IncompleteReason != nil && *r.IncompleteReason == model.IncompleteReasonMissedGrace &&
			dateInRange(r.ScheduleDate, start, end) {
			count++
		}
	}
	return count, nil
}

func (m *mockProgressRepo) ListWaitingCustom(_ context.Context) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if r.RequiresCustomAssessment && r.AssessmentID == nil {
			result = append(result, *r)
		}
	}
	sortProgressRecords(result)
	return result, nil
}

func (m *mockProgressRepo) Update(_ context.Context, record *model.ProgressRecord) error {
	if existing, ok := m.records[record.ProgressID]; ok && existing != record {
		*existing = *record
		return nil
	}
	m.records[record.ProgressID] = record
	return nil
}

func (m *mockProgressRepo) UpdateAggregates(_ context.Context, ids []string, allCompleted bool, avgScore *float64) error {
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			r.AllPeriodsCompleted = allCompleted
			r.TopicAverageScore = avgScore
		}
	}
	return nil
}

func (m *mockProgressRepo) ClearPredecessorsInRange(_ context.Context, start, end time.Time, studentID *string) error {
	for _, r := range m.records {
		if !dateInRange(r.ScheduleDate, start, end) || r.PrevProgressID == nil {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		r.PrevProgressID = nil
	}
	return nil
}

func (m *mockProgressRepo) DetachSubmittedInRange(_ context.Context, start, end time.Time, studentID *string) (int64, error) {
	var detached int64
	for _, r := range m.records {
		if !dateInRange(r.ScheduleDate, start, end) || r.SubmissionID == nil || r.ScheduleID == nil {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		r.ScheduleID = nil
		detached++
	}
	return detached, nil
}

func (m *mockProgressRepo) DeleteUnsubmittedInRange(_ context.Context, start, end time.Time, studentID *string) (int64, error) {
	var deleted int64
	for id, r := range m.records {
		if !dateInRange(r.ScheduleDate, start, end) || r.SubmissionID != nil {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		delete(m.records, id)
		deleted++
	}
	return deleted, nil
}

func (m *mockProgressRepo) ListByRange(_ context.Context, start, end time.Time, studentID *string) ([]model.ProgressRecord, error) {
	var result []model.ProgressRecord
	for _, r := range m.records {
		if !dateInRange(r.ScheduleDate, start, end) {
			continue
		}
		if studentID != nil && r.StudentID != *studentID {
			continue
		}
		result = append(result, *r)
	}
	sortProgressRecords(result)
	return result, nil
}

// ── Mock ArchiveRepository ──

type mockArchiveRepo struct {
	schedules []model.ArchivedScheduleEntry
	progress  []model.ArchivedProgressRecord
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{}
}

func (m *mockArchiveRepo) BatchCreateSchedules(_ context.Context, entries []model.ArchivedScheduleEntry) error {
	m.schedules = append(m.schedules, entries...)
	return nil
}

func (m *mockArchiveRepo) BatchCreateProgress(_ context.Context, records []model.ArchivedProgressRecord) error {
	m.progress = append(m.progress, records...)
	return nil
}

func (m *mockArchiveRepo) ListSchedulesByWeek(_ context.Context, termID string, weekNumber int) ([]model.ArchivedScheduleEntry, error) {
	var result []model.ArchivedScheduleEntry
	for _, e := range m.schedules {
		if e.TermID == termID && e.WeekNumber == weekNumber {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockArchiveRepo) ListProgressByWeek(_ context.Context, termID string, weekNumber int) ([]model.ArchivedProgressRecord, error) {
	var result []model.ArchivedProgressRecord
	for _, r := range m.progress {
		if r.TermID == termID && r.WeekNumber == weekNumber {
			result = append(result, r)
		}
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notif-%03d", len(m.notifications)+1)
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			all = append(all, *n)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// byType 按事件类型过滤，断言辅助
func (m *mockNotificationRepo) byType(eventType string) []*model.Notification {
	var result []*model.Notification
	for _, n := range m.notifications {
		if n.Type == eventType {
			result = append(result, n)
		}
	}
	return result
}

// ── 聚合与通用辅助 ──

// testRepos 全部 mock 的聚合；Repo 未绑定数据库，Transaction 直接执行回调
type testRepos struct {
	Repo         *repository.Repository
	Term         *mockTermRepo
	Subject      *mockSubjectRepo
	Student      *mockStudentRepo
	Timetable    *mockTimetableRepo
	Holiday      *mockHolidayRepo
	Topic        *mockTopicRepo
	Assessment   *mockAssessmentRepo
	Schedule     *mockScheduleRepo
	Progress     *mockProgressRepo
	Archive      *mockArchiveRepo
	Notification *mockNotificationRepo
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		Term:         newMockTermRepo(),
		Subject:      newMockSubjectRepo(),
		Student:      newMockStudentRepo(),
		Timetable:    newMockTimetableRepo(),
		Holiday:      newMockHolidayRepo(),
		Topic:        newMockTopicRepo(),
		Assessment:   newMockAssessmentRepo(),
		Schedule:     newMockScheduleRepo(),
		Progress:     newMockProgressRepo(),
		Archive:      newMockArchiveRepo(),
		Notification: newMockNotificationRepo(),
	}
	tr.Repo = &repository.Repository{
		Term:         tr.Term,
		Subject:      tr.Subject,
		Student:      tr.Student,
		Timetable:    tr.Timetable,
		Holiday:      tr.Holiday,
		Topic:        tr.Topic,
		Assessment:   tr.Assessment,
		Schedule:     tr.Schedule,
		Progress:     tr.Progress,
		Archive:      tr.Archive,
		Notification: tr.Notification,
	}
	return tr
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func dateInRange(d, start, end time.Time) bool {
	t := truncateDate(d)
	return !t.Before(truncateDate(start)) && !t.After(truncateDate(end))
}

func sortScheduleEntries(entries []model.ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ScheduleDate.Equal(entries[j].ScheduleDate) {
			return entries[i].ScheduleDate.Before(entries[j].ScheduleDate)
		}
		return entries[i].PeriodNumber < entries[j].PeriodNumber
	})
}

func sortProgressRecords(records []model.ProgressRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ScheduleDate.Equal(records[j].ScheduleDate) {
			return records[i].ScheduleDate.Before(records[j].ScheduleDate)
		}
		return records[i].PeriodNumber < records[j].PeriodNumber
	})
}

// [自证通过] internal/service/mock_repos_test.go
