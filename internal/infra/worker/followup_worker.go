package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const DefaultFollowUpSchedule = "@every 5m"

type followUpRunner interface {
	Execute(ctx context.Context) (*usecase.FollowUpReminderOutput, error)
}

// FollowUpWorker runs the follow-up reminder on a cron schedule.
type FollowUpWorker struct {
	runner   followUpRunner
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewFollowUpWorker(runner followUpRunner, schedule string, logger *slog.Logger) *FollowUpWorker {
	if schedule == "" {
		schedule = DefaultFollowUpSchedule
	}
	return &FollowUpWorker{
		runner:   runner,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled. An invalid schedule is returned immediately.
func (w *FollowUpWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{w.logger}),
		cron.SkipIfStillRunning(cronLogger{w.logger}),
	))
	if _, err := c.AddFunc(w.schedule, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("invalid follow-up schedule %q: %w", w.schedule, err)
	}

	w.logger.Info("follow-up worker iniciado", "schedule", w.schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("follow-up worker encerrado")
	return nil
}

func (w *FollowUpWorker) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	out, err := w.runner.Execute(ctx)
	if err != nil {
		w.logger.Error("falha na rodada de follow-up", "error", err)
		return
	}
	w.logger.Debug("rodada de follow-up concluída", "due", out.Due, "notified", out.Notified, "failed", out.Failed)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
