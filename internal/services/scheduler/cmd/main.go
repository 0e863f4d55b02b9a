package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/allocation"
	"github.com/LeonardoBeccarini/irrigation-scheduler/internal/services/scheduler"
	"github.com/LeonardoBeccarini/irrigation-scheduler/pkg/dedup"
	"github.com/LeonardoBeccarini/irrigation-scheduler/pkg/rabbitmq"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.WithError(err).Error("irrigation-scheduler failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := loadConfig()
	cmd := &cobra.Command{
		Use:           "irrigation-scheduler",
		Short:         "Allocates a water budget across irrigation fields.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setupLogging(cfg.LogLevel, cfg.LogFormat)
		},
	}
	cfg.addCommonFlags(cmd.PersistentFlags())
	cmd.AddCommand(runCmd(&cfg), serveCmd(&cfg))
	return cmd
}

func setupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func runCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Read one request from stdin and write one record to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, closeSink := newAuditSink(cfg)
			defer closeSink()
			svc := scheduler.NewService(allocation.NewEngine(cfg.limits()), sinkOrNil(sink), nil)
			return scheduler.RunOnce(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func serveCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve schedule requests over HTTP, gRPC and MQTT.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cfg.addServeFlags(cmd.Flags())
	return cmd
}

// newAuditSink returns nil when auditing is disabled.
func newAuditSink(cfg *Config) (*scheduler.InfluxSink, func()) {
	if cfg.InfluxURL == "" {
		return nil, func() {}
	}
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	sink := scheduler.NewInfluxSink(
		client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		scheduler.BreakerSettings{Failures: cfg.BreakerFailures, OpenFor: cfg.BreakerOpenFor},
		cfg.AuditTimeout,
	)
	log.WithFields(log.Fields{"url": cfg.InfluxURL, "bucket": cfg.InfluxBucket}).Info("audit enabled")
	return sink, client.Close
}

// sinkOrNil keeps a nil *InfluxSink from becoming a non-nil Sink.
func sinkOrNil(s *scheduler.InfluxSink) scheduler.Sink {
	if s == nil {
		return nil
	}
	return s
}

func serve(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sink, closeSink := newAuditSink(cfg)
	defer closeSink()
	svc := scheduler.NewService(allocation.NewEngine(cfg.limits()), sinkOrNil(sink), scheduler.NewMetrics(reg)).
		LimitOptimal(cfg.OptimalSlots)

	health := scheduler.Health{Grace: cfg.ReadinessGrace}
	if sink != nil {
		health.Audit = sink
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Rabbit.Host != "" {
		client, err := rabbitmq.NewRabbitMQConn(gctx, &cfg.Rabbit)
		if err != nil {
			return errors.Wrap(err, "connect to broker")
		}
		health.Broker = client
		pub := rabbitmq.NewPublisher(client, 5*time.Second)
		defer pub.Close()

		handler := scheduler.NewMQTTHandler(svc, pub, dedup.New(cfg.DedupTTL, cfg.DedupMax))
		consumer := rabbitmq.NewConsumer(client, cfg.RequestTopic, 1, handler.Handle)
		g.Go(func() error { return consumer.ConsumeMessage(gctx) })
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           scheduler.NewRouter(svc, health.Handler(), health.ReadyHandler(), reg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
	}
	g.Go(func() error {
		log.WithField("addr", httpSrv.Addr).Info("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return errors.Wrap(err, "grpc listen")
	}
	grpcSrv := grpc.NewServer()
	scheduler.RegisterSchedulerServer(grpcSrv, scheduler.NewGrpcHandler(svc))
	g.Go(func() error {
		log.WithField("addr", lis.Addr().String()).Info("grpc listening")
		return grpcSrv.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
