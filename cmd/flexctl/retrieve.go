package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flex-control/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flex-control/internal/adapter/kafka"
	"github.com/couchcryptid/flex-control/internal/config"
	"github.com/couchcryptid/flex-control/internal/retrieval"
	"github.com/spf13/cobra"
)

func newRetrieveCmd(a *app) *cobra.Command {
	var public bool
	cmd := &cobra.Command{
		Use:   "retrieve <manifest>",
		Short: "Hand every request of a manifest to a retrieval backend",
		Long: `Hand every request of a manifest, in order, to the public data service
backend (--public) or the MARS backend. The backend implementation is chosen
by RETRIEVAL_BACKEND: "kafka" publishes to the fetch workers, "dryrun"
prints the requests.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.retrieve(ctx, cmd, args[0], public)
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "use the public data service instead of MARS")
	return cmd
}

type closer interface{ Close() error }

func (a *app) retrieve(ctx context.Context, cmd *cobra.Command, path string, public bool) error {
	var (
		publicBackend, marsBackend retrieval.Backend
		closers                    []closer
	)
	switch a.cfg.RetrievalBackend {
	case config.BackendKafka:
		p := kafkaadapter.NewPublisher(a.cfg.KafkaBrokers, a.cfg.KafkaPublicTopic, retrieval.BackendPublic, a.logger)
		m := kafkaadapter.NewPublisher(a.cfg.KafkaBrokers, a.cfg.KafkaMarsTopic, retrieval.BackendMARS, a.logger)
		publicBackend, marsBackend = p, m
		closers = append(closers, p, m)
	default:
		p := retrieval.NewDryRun(cmd.OutOrStdout(), retrieval.BackendPublic, a.logger)
		m := retrieval.NewDryRun(cmd.OutOrStdout(), retrieval.BackendMARS, a.logger)
		publicBackend, marsBackend = p, m
		closers = append(closers, p, m)
	}
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				a.logger.Error("backend close error", "error", err)
			}
		}
	}()

	d := retrieval.NewDispatcher(publicBackend, marsBackend, a.logger, a.newMetrics())

	if a.cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(a.cfg.HTTPAddr, d, a.logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	n, err := d.Run(ctx, path, public)
	if err != nil {
		return fmt.Errorf("retrieval stopped after %d requests: %w", n, err)
	}
	return nil
}
