// Package main provides the Zapflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/zapflow/zapflow/pkg/cache"
	"github.com/zapflow/zapflow/pkg/eventbus"
	"github.com/zapflow/zapflow/pkg/nodetypes"
	"github.com/zapflow/zapflow/pkg/otelhelper"
	"github.com/zapflow/zapflow/pkg/persistence"
	"github.com/zapflow/zapflow/pkg/services"
	"github.com/zapflow/zapflow/pkg/web"
)

type API struct {
	ctx         context.Context
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	reportCache cache.ReportCache
	registry    *nodetypes.Registry
	validate    *validator.Validate
}

func NewAPI(
	ctx context.Context,
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	reportCache cache.ReportCache,
) *API {
	return &API{
		ctx:         ctx,
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		reportCache: reportCache,
		registry:    nodetypes.NewRegistry(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	campaignService := services.NewCampaign(a.persistence, a.eventBus, a.reportCache, a.logger)
	publishingService := services.NewPublishing(a.persistence, a.eventBus, a.logger)

	tracer, err := otelhelper.NewTracer(a.ctx, "zapflow-api")
	if err != nil {
		a.logger.Warn("Tracing disabled", "error", err)

		tracer = nil
	}

	reportService := services.NewReport(a.persistence, a.reportCache, tracer, a.logger)

	handlers := web.NewAPIHandlers(
		campaignService,
		publishingService,
		reportService,
		a.persistence.ReferenceRepository(),
		a.validate,
		a.registry,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Zapflow API")
	})

	campaigns := app.Group("/campaigns")
	campaigns.Get("/", handlers.GetCampaigns)
	campaigns.Post("/", handlers.CreateCampaign)
	campaigns.Get("/:id", handlers.GetCampaign)
	campaigns.Patch("/:id", handlers.UpdateCampaign)
	campaigns.Delete("/:id", handlers.DeleteCampaign)
	campaigns.Post("/:id/publish", handlers.PublishCampaign)
	campaigns.Post("/:id/pause", handlers.PauseCampaign)
	campaigns.Post("/:id/resume", handlers.ResumeCampaign)
	campaigns.Post("/:id/complete", handlers.CompleteCampaign)
	campaigns.Post("/:id/duplicate", handlers.DuplicateCampaign)
	campaigns.Get("/:id/report", handlers.GetCampaignReport)

	app.Get("/node-types", handlers.GetNodeTypes)
	app.Get("/connections", handlers.GetConnections)
	app.Get("/categories", handlers.GetCategories)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
