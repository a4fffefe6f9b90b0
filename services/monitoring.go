package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "progression_api"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// Progression metrics
var (
	loginsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_logins_total",
			Help: "Total login operations processed",
		},
	)

	dailyBonusesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_daily_bonuses_total",
			Help: "Total daily login bonuses credited",
		},
	)

	boostGrantsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_boost_grants_total",
			Help: "Total boost grant operations applied",
		},
	)

	levelResultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_level_results_total",
			Help: "Total level results recorded",
		},
	)

	prizeGrantsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "player_prize_grants_total",
			Help: "Total prizes granted (new PlayerPrize rows only)",
		},
	)

	exportRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rows_written_total",
			Help: "Total rows written by the player level export",
		},
	)
)

// MonitoringService exposes prometheus metrics on a separate port so
// the scrape surface stays off the public API.
type MonitoringService struct {
	context.DefaultService

	port int
	app  *fiber.App
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	svc.port = DEFAULT_PROMETHEUS_PORT
	if port := os.Getenv("PROMETHEUS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return err
		}
		svc.port = p
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		loginsTotal,
		dailyBonusesTotal,
		boostGrantsTotal,
		levelResultsTotal,
		prizeGrantsTotal,
		exportRowsTotal,
	)

	svc.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	svc.app.Use(recover.New())
	svc.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		log.Info().Int("port", svc.port).Str("service", SERVICE_NAME).Msg("metrics endpoint listening")
		if err := svc.app.Listen(fmt.Sprintf(":%d", svc.port)); err != nil {
			log.Error().Err(err).Msg("metrics endpoint stopped")
		}
	}()

	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}
