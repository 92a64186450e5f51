package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/presentation/tui"
	httpAdapter "github.com/aretw0/strata/pkg/adapters/http"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/adapters/redis"
	"github.com/aretw0/strata/pkg/adapters/sqlite"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP annotation server",
	Long: `Serves the pipeline over a JSON API. Documents are kept in the selected store:
- memory (default): lost on restart
- redis: shared between replicas, which also share per-document locks
- sqlite: a local database file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		var sc storeConfig
		sc.kind, _ = cmd.Flags().GetString("store")
		sc.redisAddr, _ = cmd.Flags().GetString("redis-addr")
		sc.redisPrefix, _ = cmd.Flags().GetString("redis-prefix")
		sc.redisTTL, _ = cmd.Flags().GetDuration("redis-ttl")
		sc.sqlitePath, _ = cmd.Flags().GetString("sqlite-path")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, sc)
		if err != nil {
			return err
		}
		defer st.Close()

		var reg *prometheus.Registry
		if withMetrics {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}

		var opts []strata.Option
		if st.locker != nil {
			opts = append(opts, strata.WithLocker(st.locker))
		}
		a, err := newApp(cmd, registerer(reg), opts...)
		if err != nil {
			return err
		}

		handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
		if reg != nil {
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(a.service, st, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if isTerminal(os.Stderr) {
			tui.PrintBanner(cmd.ErrOrStderr())
		}
		return serve(ctx, srv, a.logger, sc.kind)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Document store: memory, redis or sqlite")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	serveCmd.Flags().String("redis-prefix", redis.DefaultPrefix, "Redis key prefix (store=redis)")
	serveCmd.Flags().Duration("redis-ttl", 0, "Expire stored documents after this long (store=redis, 0 keeps them)")
	serveCmd.Flags().String("sqlite-path", "strata.db", "Database file (store=sqlite)")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, store string) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Starting Strata Server", "address", srv.Addr, "store", store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		logger.Info("Strata Server stopped gracefully")
		return nil
	}
}

func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

type storeConfig struct {
	kind        string
	redisAddr   string
	redisPrefix string
	redisTTL    time.Duration
	sqlitePath  string
}

// openedStore is a document store plus what must happen on shutdown.
type openedStore struct {
	ports.DocumentStore
	locker ports.DistributedLocker
	closer io.Closer
}

func (s *openedStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func openStore(ctx context.Context, c storeConfig) (*openedStore, error) {
	switch c.kind {
	case "", "memory":
		return &openedStore{DocumentStore: memory.NewStore()}, nil
	case "redis":
		client := backend.NewClient(&backend.Options{Addr: c.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", c.redisAddr, err)
		}
		return &openedStore{
			DocumentStore: redis.NewFromClient(client, redis.WithPrefix(c.redisPrefix), redis.WithTTL(c.redisTTL)),
			locker:        redis.NewLocker(client, c.redisPrefix),
			closer:        client,
		}, nil
	case "sqlite":
		st, err := sqlite.Open(ctx, c.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite at %s: %w", c.sqlitePath, err)
		}
		return &openedStore{DocumentStore: st, closer: st}, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, redis or sqlite)", c.kind)
	}
}
