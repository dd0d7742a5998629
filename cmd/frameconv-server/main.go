package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/internal/frameapi"
	"github.com/signalsfoundry/refframe/internal/logging"
	"github.com/signalsfoundry/refframe/internal/observability"
	"github.com/signalsfoundry/refframe/sites"
)

// Config holds the server settings taken from flags.
type Config struct {
	ListenAddress  string
	MetricsAddress string
	SitesPath      string
	LogLevel       string
	LogFormat      string
}

func main() {
	var cfg Config
	flag.StringVar(&cfg.ListenAddress, "grpc-addr", ":50061", "TCP address the frame gRPC server listens on")
	flag.StringVar(&cfg.MetricsAddress, "metrics-addr", ":9091", "HTTP address for Prometheus /metrics (empty disables)")
	flag.StringVar(&cfg.SitesPath, "sites", "", "Path to a JSON site catalogue")
	flag.StringVar(&cfg.LogLevel, "log-level", os.Getenv(logging.EnvLevel), "debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", os.Getenv(logging.EnvFormat), "text or json")
	flag.Parse()

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, AddSource: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv("frameconv-server"), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.ListenAddress), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(ctx, "server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves the frame service on lis until ctx is done, then stops
// gracefully. Metrics are registered on a private registry so run can be
// called more than once per process.
func run(ctx context.Context, cfg Config, log logging.Logger, lis net.Listener) error {
	if log == nil {
		log = logging.Noop()
	}

	promReg := prometheus.NewRegistry()
	collector, err := observability.NewConversionCollector(promReg)
	if err != nil {
		return fmt.Errorf("conversion metrics: %w", err)
	}
	siteCollector, err := observability.NewSiteCollector(promReg)
	if err != nil {
		return fmt.Errorf("site metrics: %w", err)
	}

	reg := sites.NewRegistry()
	if cfg.SitesPath != "" {
		ids, err := sites.LoadFile(reg, cfg.SitesPath)
		if err != nil {
			return err
		}
		log.Info(ctx, "loaded sites",
			logging.String("path", cfg.SitesPath),
			logging.Int("count", len(ids)),
		)
	}

	svc := conversion.NewService(reg,
		conversion.WithLogger(log),
		conversion.WithMetrics(collector),
		conversion.WithSiteMetrics(siteCollector),
	)
	defer svc.Close()

	metricsSrv := serveMetrics(cfg.MetricsAddress, collector, log)

	server := frameapi.NewServer(frameapi.NewFrameService(svc, log), collector, log)

	errCh := make(chan error, 1)
	log.Info(ctx, "starting frame gRPC server", logging.String("addr", lis.Addr().String()))
	go func() {
		errCh <- server.Serve(lis)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down frame server")
		server.GracefulStop()
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return serveErr
}

func serveMetrics(addr string, collector *observability.ConversionCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
