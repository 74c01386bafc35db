// Command wakeword manages a single timed alarm that can only be silenced by
// re-typing its secret message. Scheduling and delivery are delegated to an
// external platform alarm service reached over MQTT; this daemon owns the
// lifecycle logic and the HTTP control surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollis/wakeword/internal/alarm"
	"github.com/hollis/wakeword/internal/config"
	"github.com/hollis/wakeword/internal/log"
	"github.com/hollis/wakeword/internal/platform"
	"github.com/hollis/wakeword/internal/status"
	"github.com/hollis/wakeword/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (or WAKEWORD_CONFIG env)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP control address (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wakeword: %v\n", err)
		os.Exit(1)
	}
	cfg = applyOverrides(cfg, *broker, *httpAddr, *logLevel)

	log.Configure(log.Config{Level: cfg.LogLevel})
	if err := run(cfg); err != nil {
		logger := log.Base()
		logger.Fatal().Err(err).Msg("fatal")
	}
}

const shutdownTimeout = 5 * time.Second

// applyOverrides layers non-empty flag values over the loaded config.
// Precedence: defaults, then config file, then flags.
func applyOverrides(cfg config.Config, broker, httpAddr, logLevel string) config.Config {
	if broker != "" {
		cfg.Broker = broker
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}

func run(cfg config.Config) error {
	logger := log.WithComponent("main")

	client, err := platform.Dial(cfg.Broker, cfg.ClientID, cfg.TopicPrefix, log.WithComponent("platform"))
	if err != nil {
		return fmt.Errorf("connect platform service: %w", err)
	}
	defer client.Close()

	lifecycle := alarm.New(client, alarm.Options{
		AudioRef: cfg.AudioRef,
		Delivery: alarm.DeliveryOptions{
			Sound:   cfg.Delivery.Sound,
			Vibrate: cfg.Delivery.Vibrate,
			Notify:  cfg.Delivery.Notify,
		},
		Logger: log.WithComponent("lifecycle"),
	})

	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:      cfg.Broker,
		TopicPrefix: cfg.TopicPrefix,
		HTTPAddr:    cfg.HTTPAddr,
		AudioRef:    cfg.AudioRef,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The subscription consumer: the only reader of the ring stream.
	go lifecycle.Run(ctx, client.Rings())

	srv := web.New(cfg.HTTPAddr, tracker, lifecycle, client)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	logger.Info().Str("addr", cfg.HTTPAddr).Str("broker", cfg.Broker).Msg("started")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
