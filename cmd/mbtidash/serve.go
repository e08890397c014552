package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mbtidash/internal/amqp"
	"mbtidash/internal/config"
	apphttp "mbtidash/internal/http"
	applog "mbtidash/internal/log"
	"mbtidash/internal/metrics"
)

const shutdownTimeout = 30 * time.Second

var (
	servePort int
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Long: `Run the dashboard HTTP server. Configuration is read from the
environment (and a .env file when present); --port and --addr override
PORT.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "full listen address, e.g. 127.0.0.1:8081 (overrides --port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cmd.Flags().Changed("port") {
		cfg.Port = strconv.Itoa(servePort)
	}
	if err := cfg.Validate(); err != nil {
		return &exitCodeError{code: ExitBadConfig, err: err}
	}
	addr := cfg.Addr()
	if serveAddr != "" {
		addr = serveAddr
	}

	vm, err := newViewModel()
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if recorder, err = metrics.New(reg); err != nil {
			return err
		}
	}

	var client *amqp.Client
	var publisher amqp.Publisher
	if cfg.AMQPURL != "" {
		client = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		client.SetLogger(logger)
		publisher = client
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:          addr,
		ViewModel:     vm,
		Logger:        logger,
		Recorder:      recorder,
		Publisher:     publisher,
		ViewCacheSize: cfg.ViewCacheSize,
		ViewCacheTTL:  cfg.ViewCacheTTL,
		RateLimitRPM:  cfg.RateLimitRPM,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting mbtidash server",
			applog.FieldOperation, applog.OpStartup,
			"addr", addr,
			"metrics", cfg.MetricsEnabled,
			"events", client != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if client != nil {
		g.Go(func() error {
			// Run only returns once gctx is done.
			_ = client.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
