package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/campus-fixit/fixit/internal/api/http"
	"github.com/campus-fixit/fixit/internal/api/http/handlers"
	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/clock"
	"github.com/campus-fixit/fixit/internal/config"
	"github.com/campus-fixit/fixit/internal/events"
	"github.com/campus-fixit/fixit/internal/observability"
	"github.com/campus-fixit/fixit/internal/service"
	"github.com/campus-fixit/fixit/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := applyFlags(cfg, os.Args[1:]); errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	rules, err := classifier.LoadRuleSet(cfg.Classifier.RulesFile)
	if err != nil {
		logger.Fatal("failed to load classifier rules", zap.Error(err))
	}
	if !cfg.Classifier.Fallback {
		rules = rules.WithoutFallback()
	}
	logger.Info("classifier ready",
		zap.Int("primary_rules", len(rules.Primary)),
		zap.Bool("fallback", rules.FallbackEnabled),
		zap.String("rules_file", cfg.Classifier.RulesFile))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	widgetService := service.NewWidgetService(service.WidgetDependencies{
		Classifier: classifier.New(rules),
		Clock:      clock.Real(),
		StepUnit:   cfg.Tracker.StepUnit(),
		IdleTTL:    cfg.Tracker.IdleTTL(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	stopJanitor := worker.StartWidgetJanitor(widgetService)
	defer stopJanitor()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, widgetService, metrics),
		Widgets: handlers.NewWidgetsHandler(widgetService),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(5 * time.Second)
}

// applyFlags lets command-line flags override the environment.
func applyFlags(cfg *config.Config, args []string) error {
	flags := pflag.NewFlagSet("fixit", pflag.ContinueOnError)
	host := flags.String("host", cfg.App.Host, "address to bind")
	port := flags.String("port", cfg.App.Port, "port to listen on")
	level := flags.String("log-level", cfg.Logger.Level, "log level (debug, info, warn, error)")
	rules := flags.String("rules", cfg.Classifier.RulesFile, "YAML file with classifier rules")
	fallback := flags.Bool("fallback", cfg.Classifier.Fallback, "enable the secondary keyword matcher")
	step := flags.Duration("step", cfg.Tracker.StepUnit(), "length of one tracker step")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *step <= 0 {
		return fmt.Errorf("--step must be positive, got %v", *step)
	}

	cfg.App.Host = *host
	cfg.App.Port = *port
	cfg.Logger.Level = *level
	cfg.Classifier.RulesFile = *rules
	cfg.Classifier.Fallback = *fallback
	cfg.Tracker.Step = *step
	return nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
