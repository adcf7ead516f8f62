// Package scheduler promotes scheduled campaigns whose start time has
// arrived. It runs inside the activator service.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/persistence"
	"github.com/zapflow/zapflow/pkg/services"
)

// checkSpec is the poll cadence. Scheduled start times have minute
// granularity, so checking once a minute never misses one by more than the
// poll interval.
const checkSpec = "* * * * *"

// Activator scans for due scheduled campaigns and starts them.
type Activator struct {
	persistence persistence.Persistence
	publishing  *services.Publishing
	logger      *slog.Logger
	cron        *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewActivator creates a campaign activator.
func NewActivator(persistence persistence.Persistence, publishing *services.Publishing, logger *slog.Logger) *Activator {
	return &Activator{
		persistence: persistence,
		publishing:  publishing,
		logger:      logger.With("module", "scheduler"),
	}
}

// Start begins the periodic scan. It also runs one scan immediately so a
// restart picks up campaigns that came due while the activator was down.
func (a *Activator) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := a.cron.AddFunc(checkSpec, func() {
		a.activateDue(a.ctx)
	}); err != nil {
		return err
	}

	a.cron.Start()
	a.activateDue(a.ctx)

	a.logger.Info("Campaign activator started")

	return nil
}

// Stop halts the scan loop and waits for a running scan to finish.
func (a *Activator) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	if a.cron != nil {
		select {
		case <-a.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	a.logger.Info("Campaign activator stopped")

	return nil
}

// OnCampaignPublished rescans immediately when a campaign is published, so a
// schedule already in the past starts without waiting for the next tick.
func (a *Activator) OnCampaignPublished(ctx context.Context, _ any) error {
	a.activateDue(ctx)

	return nil
}

// activateDue starts every scheduled campaign whose start time has passed.
// Failures are logged per campaign so one bad record never blocks the rest.
func (a *Activator) activateDue(ctx context.Context) {
	campaigns, err := a.persistence.CampaignRepository().List(ctx)
	if err != nil {
		a.logger.Error("Failed to list campaigns", "error", err)

		return
	}

	now := time.Now()

	for _, campaign := range campaigns {
		if campaign.Status != models.CampaignStatusScheduled {
			continue
		}

		if campaign.ScheduledDate == nil || campaign.ScheduledDate.After(now) {
			continue
		}

		if _, err := a.publishing.Start(ctx, campaign.ID); err != nil {
			a.logger.Error("Failed to start scheduled campaign",
				"campaign_id", campaign.ID, "error", err)

			continue
		}

		a.logger.Info("Scheduled campaign started",
			"campaign_id", campaign.ID, "scheduled_date", campaign.ScheduledDate)
	}
}
