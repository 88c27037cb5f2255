package worker

import (
	"testing"

	"go.uber.org/zap"

	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/domain"
	"github.com/studioops/support-mailroom/internal/notification"
	"github.com/studioops/support-mailroom/internal/observability"
	"github.com/studioops/support-mailroom/internal/repository"
)

func newTestWorker(t *testing.T, cfg config.NotificationConfig) *DigestWorker {
	t.Helper()
	router := notification.NewRouter(notification.RouterDependencies{
		NotificationRepo: repository.NewMemoryNotificationRepository(),
		PreferenceRepo:   repository.NewMemoryPreferenceRepository(),
		DigestRepo:       repository.NewMemoryDigestRepository(),
		Email:            notification.LogEmailSender{Logger: zap.NewNop()},
		Chat:             notification.NewWebhookChatSender(config.NotificationConfig{}, zap.NewNop()),
		SMS:              notification.LogSMSSender{Logger: zap.NewNop()},
		InApp:            notification.LogInAppSender{Logger: zap.NewNop()},
		Logger:           zap.NewNop(),
		Metrics:          observability.NewMetrics(),
	})
	worker := NewDigestWorker(cfg, router, zap.NewNop())
	t.Cleanup(worker.Stop)
	return worker
}

func TestScheduleDigestFlush_Idempotent(t *testing.T) {
	worker := newTestWorker(t, config.NotificationConfig{HourlyDigestMins: 60})

	for i := 0; i < 5; i++ {
		worker.ScheduleDigestFlush("u1", domain.FrequencyHourly)
	}

	worker.mu.Lock()
	pending := len(worker.pending)
	worker.mu.Unlock()
	if pending != 1 {
		t.Errorf("pending timers = %d, want 1", pending)
	}
}

func TestScheduleDigestFlush_SeparateBuckets(t *testing.T) {
	worker := newTestWorker(t, config.NotificationConfig{
		HourlyDigestMins: 60,
		DailyDigestMins:  1440,
	})

	worker.ScheduleDigestFlush("u1", domain.FrequencyHourly)
	worker.ScheduleDigestFlush("u1", domain.FrequencyDaily)
	worker.ScheduleDigestFlush("u2", domain.FrequencyHourly)

	worker.mu.Lock()
	pending := len(worker.pending)
	worker.mu.Unlock()
	if pending != 3 {
		t.Errorf("pending timers = %d, want 3", pending)
	}
}

func TestScheduleDigestFlush_UnconfiguredFrequencyIgnored(t *testing.T) {
	worker := newTestWorker(t, config.NotificationConfig{HourlyDigestMins: 60})

	worker.ScheduleDigestFlush("u1", domain.FrequencyWeekly)
	worker.ScheduleDigestFlush("u1", domain.FrequencyImmediate)
	worker.ScheduleDigestFlush("u1", domain.FrequencyNever)

	worker.mu.Lock()
	pending := len(worker.pending)
	worker.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending timers = %d, want 0", pending)
	}
}

func TestStop_CancelsPendingAndBlocksNewTimers(t *testing.T) {
	worker := newTestWorker(t, config.NotificationConfig{HourlyDigestMins: 60})

	worker.ScheduleDigestFlush("u1", domain.FrequencyHourly)
	worker.Stop()

	worker.ScheduleDigestFlush("u2", domain.FrequencyHourly)

	worker.mu.Lock()
	pending := len(worker.pending)
	worker.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending timers after stop = %d, want 0", pending)
	}
}
