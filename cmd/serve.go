package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/handlers"
	"github.com/fenilmodi00/flightme-backend/jobs"
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfig()
	if servePort != "" {
		cfg.ServerPort = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	popularRoutes, err := services.NewPopularRouteService()
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler()
	if err := scheduler.Add("cache_cleanup", jobs.CacheCleanupSchedule,
		jobs.NewCacheCleanupJob(app.pipeline.Analyzer().Cache())); err != nil {
		return err
	}
	if err := scheduler.Add("analysis_retention", jobs.AnalysisRetentionSchedule,
		jobs.NewAnalysisRetentionJob(app.store, cfg.GetRetention())); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	scraperTransport := app.httpClients.ScraperTransport()
	hotels := services.NewHotelService().WithTransport(scraperTransport)
	attractions := services.NewAttractionService(cfg.DataDir).WithTransport(scraperTransport)

	router := &handlers.Router{
		Flights: handlers.NewFlightHandler(app.pipeline, popularRoutes, app.store),
		Places:  handlers.NewPlaceHandler(hotels, attractions),
		System:  handlers.NewSystemHandler(app.pipeline, app.store),
	}

	server := fiber.New(fiber.Config{
		AppName:               "flightme",
		DisableStartupMessage: true,
	})
	server.Use(recover.New())
	server.Use(logger.New())
	server.Use(cors.New())
	router.Register(server)

	listenErr := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("Server starting")
		listenErr <- server.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logrus.WithError(err).Warn("Server shutdown did not complete cleanly")
	}
	app.pipeline.GetMetrics().LogSummary()
	return nil
}
