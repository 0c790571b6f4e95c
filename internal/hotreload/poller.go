package hotreload

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Poller reloads the cache on a fixed interval, for filesystems where change
// notifications are unreliable (network mounts, some containers).
type Poller struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewPoller schedules r.Reload every interval. The schedule starts with Start.
func NewPoller(ctx context.Context, r Reloader, interval time.Duration, logger *slog.Logger) (*Poller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		return nil, derrors.ValidationError("poll interval must be positive").
			WithContext("interval", interval.String()).Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { _ = r.Reload(ctx, "poll") }),
		gocron.WithName("content-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "failed to schedule poll job").Build()
	}
	return &Poller{scheduler: s, logger: logger}, nil
}

// Start begins polling.
func (p *Poller) Start() {
	p.logger.Info("Starting content poller")
	p.scheduler.Start()
}

// Stop shuts the scheduler down and waits for a running reload.
func (p *Poller) Stop() error {
	p.logger.Info("Stopping content poller")
	return p.scheduler.Shutdown()
}
