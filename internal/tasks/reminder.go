package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reminderBatchSize caps the enrollments handled by one run
const reminderBatchSize = 500

// StalledEnrollmentRepository lists enrollments that need a reminder
type StalledEnrollmentRepository interface {
	// ListStalled retrieves in-progress enrollments without activity since the given time
	//
	// "ctx" is the context for the request.
	// "inactiveSince" is the activity cut-off.
	// "limit" caps the number of rows.
	//
	// Returns the enrollments, oldest activity first, and an error if any.
	ListStalled(ctx context.Context, inactiveSince time.Time, limit int) ([]models.StalledEnrollment, error)
}

// ReminderEnqueuer queues reminder e-mails
type ReminderEnqueuer interface {
	EnqueueProgressReminder(ctx context.Context, stalled models.StalledEnrollment) error
}

// ReminderLocker is the part of the Redis client used to send a reminder at most once per period
type ReminderLocker interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ReminderScheduler periodically queues reminders for stalled enrollments
type ReminderScheduler struct {
	repo       StalledEnrollmentRepository
	enqueuer   ReminderEnqueuer
	locker     ReminderLocker
	logger     *zap.Logger
	staleAfter time.Duration
	cron       *cron.Cron
	now        func() time.Time
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(repo StalledEnrollmentRepository, enqueuer ReminderEnqueuer, locker ReminderLocker, logger *zap.Logger, staleAfter time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		repo:       repo,
		enqueuer:   enqueuer,
		locker:     locker,
		logger:     logger,
		staleAfter: staleAfter,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules the reminder run with a standard five-field cron expression
func (s *ReminderScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.Run(context.Background()); err != nil {
			s.logger.Error("reminder run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.Info("Reminder scheduler started", zap.String("cron", spec))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *ReminderScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Reminder scheduler stopped")
}

// Run queues one reminder per stalled enrollment and returns how many were queued
//
// An enrollment reminded within the stale period is skipped.
func (s *ReminderScheduler) Run(ctx context.Context) (int, error) {
	stalled, err := s.repo.ListStalled(ctx, s.now().Add(-s.staleAfter), reminderBatchSize)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, enrollment := range stalled {
		key := reminderKey(enrollment.EnrollmentID)

		acquired, err := s.locker.SetNX(ctx, key, 1, s.staleAfter).Result()
		if err != nil {
			s.logger.Error("Failed to lock reminder", zap.Int("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
			continue
		}
		if !acquired {
			continue
		}

		if err := s.enqueuer.EnqueueProgressReminder(ctx, enrollment); err != nil {
			s.logger.Error("Failed to enqueue reminder", zap.Int("enrollment_id", enrollment.EnrollmentID), zap.Error(err))
			// Release the key so the next run retries
			if err := s.locker.Del(ctx, key).Err(); err != nil {
				s.logger.Warn("Failed to release reminder lock", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		queued++
	}

	if queued > 0 {
		s.logger.Info("Queued progress reminders", zap.Int("count", queued))
	}
	return queued, nil
}

func reminderKey(enrollmentID int) string {
	return fmt.Sprintf("reminder:enrollment:%d", enrollmentID)
}
