package dto

// ── 评估模块 DTO ──

// CreateCustomAssessmentRequest 教师为后续节次编制评估
type CreateCustomAssessmentRequest struct {
	ProgressID  string   `json:"progress_id"  binding:"required,uuid"`
	Title       string   `json:"title"        binding:"required,min=2,max=200"`
	QuestionIDs []string `json:"question_ids" binding:"required,min=1,dive,uuid"`
}

// AssessmentResponse 评估信息响应
type AssessmentResponse struct {
	ID          string   `json:"id"`
	TopicID     string   `json:"topic_id"`
	SubjectID   string   `json:"subject_id"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	AuthorID    *string  `json:"author_id,omitempty"`
	QuestionIDs []string `json:"question_ids"`
}

// WaitingCustomResponse 等待编制评估的后续节次
type WaitingCustomResponse struct {
	ProgressID     string `json:"progress_id"`
	StudentID      string `json:"student_id"`
	SubjectID      string `json:"subject_id"`
	TopicID        string `json:"topic_id"`
	ScheduleDate   string `json:"schedule_date"`
	PeriodNumber   int    `json:"period_number"`
	PeriodSequence int    `json:"period_sequence"`
	TotalPeriods   int    `json:"total_periods"`
	PrevCompleted  bool   `json:"prev_completed"` // 前置节次是否已完成（完成后才需要尽快编制）
}

// [自证通过] internal/dto/assessment.go
