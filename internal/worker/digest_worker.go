package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/notification"
)

// DigestWorker schedules and fires digest bucket flushes. One timer
// exists per (user, frequency) key; scheduling while a timer is pending
// is a no-op, so N enqueues before the flush produce one delivery.
type DigestWorker struct {
	router    *notification.Router
	logger    *zap.Logger
	intervals map[domain.DigestFrequency]time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewDigestWorker constructs the worker with intervals from config.
func NewDigestWorker(cfg config.NotificationConfig, router *notification.Router, logger *zap.Logger) *DigestWorker {
	return &DigestWorker{
		router: router,
		logger: logger,
		intervals: map[domain.DigestFrequency]time.Duration{
			domain.FrequencyHourly: time.Duration(cfg.HourlyDigestMins) * time.Minute,
			domain.FrequencyDaily:  time.Duration(cfg.DailyDigestMins) * time.Minute,
			domain.FrequencyWeekly: time.Duration(cfg.WeeklyDigestMins) * time.Minute,
		},
		pending: make(map[string]*time.Timer),
	}
}

// ScheduleDigestFlush ensures exactly one future flush for the bucket.
func (w *DigestWorker) ScheduleDigestFlush(userID string, frequency domain.DigestFrequency) {
	interval, ok := w.intervals[frequency]
	if !ok || interval <= 0 {
		return
	}
	key := userID + "|" + string(frequency)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if _, exists := w.pending[key]; exists {
		return
	}
	w.pending[key] = time.AfterFunc(interval, func() {
		w.flush(userID, frequency, key)
	})
	w.logger.Debug("digest flush scheduled",
		zap.String("user_id", userID),
		zap.String("frequency", string(frequency)),
		zap.Duration("in", interval))
}

func (w *DigestWorker) flush(userID string, frequency domain.DigestFrequency, key string) {
	w.mu.Lock()
	delete(w.pending, key)
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.router.DeliverDigest(ctx, userID, frequency); err != nil {
		w.logger.Error("digest delivery failed",
			zap.String("user_id", userID),
			zap.String("frequency", string(frequency)),
			zap.Error(err))
	}
}

// Stop cancels pending timers. Buckets stay queued for the next process.
func (w *DigestWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for key, timer := range w.pending {
		timer.Stop()
		delete(w.pending, key)
	}
}
