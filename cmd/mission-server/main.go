package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/internal/api"
	"github.com/signalsfoundry/mission-designer/internal/config"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/observability"
	"github.com/signalsfoundry/mission-designer/internal/rpc"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
	"github.com/signalsfoundry/mission-designer/kb"
)

func main() {
	cfg, err := config.Parse("mission-server", os.Args[1:])
	if err != nil {
		logging.NewFromEnv().Error(context.Background(), "invalid configuration", logging.Err(err))
		os.Exit(2)
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, listeners{}); err != nil {
		log.Error(ctx, "mission server exited", logging.Err(err))
		os.Exit(1)
	}
}

// listeners lets tests hand in pre-bound sockets; nil entries are bound
// from the configured addresses.
type listeners struct {
	grpc    net.Listener
	http    net.Listener
	metrics net.Listener
}

// bind opens every configured listener that was not handed in. On failure
// all listeners are closed so nothing is left serving.
func (l *listeners) bind(cfg config.Config) error {
	var err error
	if l.grpc == nil && cfg.GRPCAddr != "" {
		if l.grpc, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			l.close()
			return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
		}
	}
	if l.http == nil && cfg.HTTPAddr != "" {
		if l.http, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
			l.close()
			return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
		}
	}
	if l.metrics == nil && cfg.MetricsAddr != "" {
		if l.metrics, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
			l.close()
			return fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
		}
	}
	return nil
}

func (l *listeners) close() {
	for _, lis := range []net.Listener{l.grpc, l.http, l.metrics} {
		if lis != nil {
			_ = lis.Close()
		}
	}
}

func run(ctx context.Context, cfg config.Config, log logging.Logger, lis listeners) error {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFrom(cfg.Tracing, api.Version), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	reg := prometheus.NewRegistry()
	collector, err := observability.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	evals, err := observability.NewEvaluationCollector(reg)
	if err != nil {
		return fmt.Errorf("init evaluation metrics: %w", err)
	}

	store := kb.NewMissionStore()
	stopWatch := collector.WatchStore(store)
	defer stopWatch()

	evaluator := core.NewEvaluator(
		core.WithEvaluatorLogger(log),
		core.WithEvaluationRecorder(evals),
	)
	if cfg.Seed != "" {
		if err := seed(ctx, store, evaluator, cfg.Seed, log); err != nil {
			return err
		}
	}

	if err := lis.bind(cfg); err != nil {
		return err
	}
	metricsSrv := serveMetrics(lis.metrics, collector, log)

	var grpcServer *grpc.Server
	errCh := make(chan error, 2)
	if lis.grpc != nil {
		svc := rpc.NewMissionEvaluationService(store, evaluator, log, rpc.WithEvaluationMetrics(evals))
		grpcServer = rpc.NewServer(svc, log, collector)
		log.Info(ctx, "starting gRPC server", logging.String("addr", lis.grpc.Addr().String()))
		go func() {
			if err := grpcServer.Serve(lis.grpc); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var httpServer *http.Server
	if lis.http != nil {
		rest := api.NewServer(store,
			api.WithLogger(log),
			api.WithEvaluator(evaluator),
			api.WithMetrics(collector),
			api.WithEvaluationMetrics(evals),
		)
		httpServer = &http.Server{Handler: rest.Handler(), ReadHeaderTimeout: 10 * time.Second}
		log.Info(ctx, "starting REST server", logging.String("addr", lis.http.Addr().String()))
		go func() {
			if err := httpServer.Serve(lis.http); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info(context.Background(), "shutting down mission server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return runErr
}

func seed(ctx context.Context, store *kb.MissionStore, evaluator *core.Evaluator, path string, log logging.Logger) error {
	doc, err := scenario.LoadFile(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	m, err := doc.Build(ctx, evaluator)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	if err := store.Create(m); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	log.Info(ctx, "seeded mission",
		logging.String("path", path),
		logging.String("mission_id", m.ID),
		logging.Int("solutions", len(m.DesignSolutions())),
	)
	return nil
}

func serveMetrics(lis net.Listener, collector *observability.Collector, log logging.Logger) *http.Server {
	if lis == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", lis.Addr().String()))
	return srv
}
