package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/metrics"
)

// Refresher periodically recomputes the default resolution and publishes
// the result to the phase and drift gauges. HTTP requests always recompute
// on demand; the refresher only keeps dashboards and alerts current between
// requests.
type Refresher struct {
	service  rollout.Service
	defaults config.RolloutConfig
	logger   *logger.Logger
	cron     *cron.Cron
}

// NewRefresher creates a new background refresher
func NewRefresher(service rollout.Service, defaults config.RolloutConfig, log *logger.Logger) *Refresher {
	return &Refresher{
		service:  service,
		defaults: defaults,
		logger:   log,
		cron:     cron.New(),
	}
}

// Start schedules the refresh and runs one immediately. It returns after
// scheduling; the cron runner is stopped when ctx is cancelled.
func (w *Refresher) Start(ctx context.Context) error {
	w.logger.WithFields(map[string]interface{}{
		"schedule": w.defaults.RefreshSchedule,
		"release":  w.defaults.DefaultRelease,
		"version":  w.defaults.DefaultVersion,
	}).Info("Starting rollout refresh worker")

	if _, err := w.cron.AddFunc(w.defaults.RefreshSchedule, func() {
		w.refresh(ctx)
	}); err != nil {
		return err
	}

	w.refresh(ctx)
	w.cron.Start()

	go func() {
		<-ctx.Done()
		<-w.cron.Stop().Done()
		w.logger.Info("Rollout refresh worker stopped")
	}()

	return nil
}

func (w *Refresher) refresh(ctx context.Context) {
	report, err := w.service.Resolve(ctx, rollout.ResolveRequest{
		Release: w.defaults.DefaultRelease,
		Version: w.defaults.DefaultVersion,
		Cutoff:  w.defaults.DefaultCutoff,
	})
	if err != nil {
		w.logger.ErrorWithErr(err, "Scheduled resolution refresh failed")
		return
	}

	metrics.ResetPhaseUsers()
	for _, c := range report.Summary.ByPhaseRegion {
		metrics.SetPhaseUsers(c.Phase, c.Region, float64(c.Count))
	}
	metrics.SetDriftUsers(float64(len(report.Drift)))
}
