package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mbtidash/internal/amqp"
	"mbtidash/internal/config"
	applog "mbtidash/internal/log"
	"mbtidash/internal/worker"
)

var (
	watchBinding string
	watchQueue   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print view events published by a running server",
	Long: `Subscribe to the exchange a server publishes view events to and print
one line per resolved view. A per-selection summary is printed on exit.
Requires AMQP_URL.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchBinding, "binding", "", "binding key (defaults to AMQP_ROUTING_KEY)")
	watchCmd.Flags().StringVar(&watchQueue, "queue", "", "durable queue name (default: exclusive temporary queue)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		return &exitCodeError{code: ExitBadConfig, err: errors.New("watch requires AMQP_URL")}
	}
	if err := cfg.Validate(); err != nil {
		return &exitCodeError{code: ExitBadConfig, err: err}
	}
	binding := watchBinding
	if binding == "" {
		binding = cfg.AMQPRoutingKey
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.NewViewWorker(cmd.OutOrStdout(), logger)
	consumer := amqp.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, binding, watchQueue)
	consumer.SetLogger(logger)

	logger.Info("Watching view events",
		applog.FieldOperation, applog.OpConsume,
		applog.FieldExchange, cfg.AMQPExchange,
		applog.FieldBindingKey, binding)

	if err := consumer.Run(ctx, w.HandleViewResolved); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return w.WriteSummary(cmd.OutOrStdout())
}
