// Command reminders runs the reminder passes once and exits. It is meant to
// be started by cron or a Kubernetes CronJob.
//
// Usage:
//
//	reminders [court] [followup] [payments]
//
// With no arguments every pass runs. A pass that fails is logged and the
// remaining passes still run; the exit status is non-zero only when setup
// fails.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/cache"
	"github.com/lexcase/caseflow/internal/clock"
	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/database"
	"github.com/lexcase/caseflow/internal/events"
	"github.com/lexcase/caseflow/internal/logging"
	"github.com/lexcase/caseflow/internal/mailer"
	"github.com/lexcase/caseflow/internal/service"
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func parsePasses(args []string) ([]service.Pass, error) {
	passes := make([]service.Pass, 0, len(args))
	for _, arg := range args {
		p, err := service.ParsePass(arg)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if len(passes) == 0 {
		return service.Passes, nil
	}
	return passes, nil
}

func main() {
	passes, err := parsePasses(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: reminders [court] [followup] [payments]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, passes, os.Stdout, logger); err != nil {
		logger.Fatal("Reminder run aborted", zap.Error(err))
	}
}

// run wires the stores and services, runs passes and prints one line per
// pass to out. Only setup failures are returned; pass failures are logged.
func run(ctx context.Context, cfg *config.Config, passes []service.Pass, out io.Writer, logger *zap.Logger) error {
	stores, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer stores.Close(context.Background())

	// Same cache and topic as the server, so reminder writes invalidate its counts
	unread, closeCache := cache.New(ctx, cfg.Redis, logger)
	defer closeCache()

	publisher := events.New(cfg.Kafka, logger)
	defer publisher.Close()

	notificationService := service.NewNotificationService(
		stores.Notifications,
		stores.Cases,
		stores.Users,
		mailer.New(cfg.Email, logger),
		cfg.Reminders.AppURL,
		logger,
	).WithUnreadCache(unread).WithPublisher(publisher)

	reminderService := service.NewReminderService(
		stores.Cases,
		stores.Users,
		stores.Notifications,
		notificationService,
		clock.Real{},
		cfg.Reminders.Location(),
		cfg.Reminders.Deduplicate,
		logger,
	)

	logger.Info("Running reminder passes", zap.Int("passes", len(passes)))

	results, err := reminderService.Run(ctx, passes...)
	for _, r := range results {
		fmt.Fprintln(out, r.String())
	}
	if err != nil {
		logger.Warn("Reminder run finished with errors", zap.Error(err))
		return nil
	}

	logger.Info("Reminder run finished")
	return nil
}
