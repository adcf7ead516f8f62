package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zapflow/zapflow/pkg/cache"
	"github.com/zapflow/zapflow/pkg/graph"
	"github.com/zapflow/zapflow/pkg/models"
	"github.com/zapflow/zapflow/pkg/otelhelper"
	"github.com/zapflow/zapflow/pkg/persistence"
)

// Report assembles campaign reports: the campaign, its sessions, the flow
// nodes in execution order, and aggregate session stats. Assembled reports
// are cached for a short window because the report endpoint is polled.
type Report struct {
	persistence persistence.Persistence
	reportCache cache.ReportCache
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewReport creates a new report service. Cache and tracer are optional.
func NewReport(
	persistence persistence.Persistence,
	reportCache cache.ReportCache,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Report {
	if tracer == nil {
		tracer = otel.Tracer("zapflow-report")
	}

	return &Report{
		persistence: persistence,
		reportCache: reportCache,
		tracer:      tracer,
		logger:      logger.With("service", "report"),
	}
}

// Fetch returns the report for a campaign, serving from cache when a fresh
// copy exists.
func (r *Report) Fetch(ctx context.Context, campaignID string) (*models.CampaignReport, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "report.fetch",
		attribute.String(otelhelper.CampaignIDKey, campaignID))
	defer span.End()

	if cached := r.fromCache(ctx, campaignID); cached != nil {
		span.SetAttributes(attribute.Bool("zapflow.report.cache_hit", true))

		return cached, nil
	}

	campaign, err := r.persistence.CampaignRepository().GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	sessions, err := r.persistence.SessionRepository().ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	report := &models.CampaignReport{
		Campaign:  campaign,
		Sessions:  sessions,
		FlowNodes: graph.FlowOrder(campaign.Graph),
		Stats:     models.CountSessions(sessions),
	}

	span.SetAttributes(attribute.Int(otelhelper.SessionCountKey, report.Stats.Total))

	r.toCache(ctx, campaignID, report)

	return report, nil
}

func (r *Report) fromCache(ctx context.Context, campaignID string) *models.CampaignReport {
	if r.reportCache == nil {
		return nil
	}

	report, err := r.reportCache.Get(ctx, campaignID)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.logger.WarnContext(ctx, "Report cache read failed", "campaign_id", campaignID, "error", err)
		}

		return nil
	}

	return report
}

func (r *Report) toCache(ctx context.Context, campaignID string, report *models.CampaignReport) {
	if r.reportCache == nil {
		return
	}

	if err := r.reportCache.Set(ctx, campaignID, report); err != nil {
		r.logger.WarnContext(ctx, "Report cache write failed", "campaign_id", campaignID, "error", err)
	}
}
