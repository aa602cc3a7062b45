package dto

// ── 学习进度模块 DTO ──

// ProgressResponse 单条进度响应（status 读取时实时推导）
type ProgressResponse struct {
	ID                       string   `json:"id"`
	StudentID                string   `json:"student_id"`
	ScheduleID               *string  `json:"schedule_id,omitempty"`
	SubjectID                string   `json:"subject_id"`
	TopicID                  string   `json:"topic_id"`
	ScheduleDate             string   `json:"schedule_date"`
	PeriodNumber             int      `json:"period_number"`
	AssessmentID             *string  `json:"assessment_id,omitempty"`
	Status                   string   `json:"status"`
	WindowStart              *string  `json:"window_start,omitempty"`
	WindowEnd                *string  `json:"window_end,omitempty"`
	GraceDeadline            *string  `json:"grace_deadline,omitempty"`
	Completed                bool     `json:"completed"`
	CompletedAt              *string  `json:"completed_at,omitempty"`
	IncompleteReason         *string  `json:"incomplete_reason,omitempty"`
	Score                    *float64 `json:"score,omitempty"`
	AssessmentAccessible     bool     `json:"assessment_accessible"`
	RequiresCustomAssessment bool     `json:"requires_custom_assessment"`
	PeriodSequence           int      `json:"period_sequence"`
	TotalPeriods             int      `json:"total_periods"`
	AllPeriodsCompleted      bool     `json:"all_periods_completed"`
	TopicAverageScore        *float64 `json:"topic_average_score,omitempty"`
}

// SubmissionCallbackRequest 答题系统提交回调
type SubmissionCallbackRequest struct {
	SubmissionID string   `json:"submission_id" binding:"required,uuid"`
	AssessmentID string   `json:"assessment_id" binding:"required,uuid"`
	StudentID    string   `json:"student_id"    binding:"required,uuid"`
	Score        *float64 `json:"score"         binding:"omitempty,min=0,max=100"`
}

// ExpireProgressRequest 管理员手动判缺
type ExpireProgressRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=50"`
}

// ExpiredCountResponse 过期统计响应
type ExpiredCountResponse struct {
	WeekNumber int    `json:"week_number"`
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
	Count      int64  `json:"count"`
}

// SweepResultResponse 过期扫描结果
type SweepResultResponse struct {
	Scanned   int      `json:"scanned"`
	Expired   int      `json:"expired"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// OpenResultResponse 评估开窗扫描结果
type OpenResultResponse struct {
	Scanned int `json:"scanned"`
	Opened  int `json:"opened"`
	Failed  int `json:"failed"`
}

// [自证通过] internal/dto/progress.go
