// Command tuio-simulator runs a standalone TUIO 2.0 frame producer and
// WebSocket broadcaster. Its flag parsing, logging setup, and signal
// handling follow the teacher's hydra daemon entry point
// (api/cmd/hydra/main.go).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jhbruhn/tuio-simulator/pkg/command"
	tuioconfig "github.com/jhbruhn/tuio-simulator/pkg/config"
	"github.com/jhbruhn/tuio-simulator/pkg/events"
	"github.com/jhbruhn/tuio-simulator/pkg/metrics"
)

var (
	port        int
	fps         int
	width       int
	height      int
	source      string
	pointerMode bool
	metricsAddr string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tuio-simulator",
		Short: "TUIO 2.0 protocol simulator",
		Long: `tuio-simulator generates synthetic TUIO 2.0 object state on a timer
and broadcasts it as OSC bundles over WebSocket to any connected client,
standing in for a physical tabletop or touch surface during development.`,
		RunE: run,
	}

	cfg, err := tuioconfig.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	rootCmd.Flags().IntVar(&port, "port", cfg.Port, "WebSocket listen port (env: TUIO_PORT)")
	rootCmd.Flags().IntVar(&fps, "fps", cfg.FPS, "frame production rate, 1-120 (env: TUIO_FPS)")
	rootCmd.Flags().IntVar(&width, "width", cfg.Width, "canvas width in pixels (env: TUIO_WIDTH)")
	rootCmd.Flags().IntVar(&height, "height", cfg.Height, "canvas height in pixels (env: TUIO_HEIGHT)")
	rootCmd.Flags().StringVar(&source, "source", cfg.Source, "TUIO source identifier (env: TUIO_SOURCE)")
	rootCmd.Flags().BoolVar(&pointerMode, "pointer-mode", cfg.PointerMode, "encode /tuio2/ptr instead of /tuio2/tok (env: TUIO_POINTER_MODE)")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus /metrics listen address (env: TUIO_METRICS_ADDR)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error) (env: TUIO_LOG_LEVEL)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("tuio-simulator exited with error")
	}
}

func run(cmd *cobra.Command, args []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().
		Int("port", port).
		Int("fps", fps).
		Int("width", width).
		Int("height", height).
		Str("source", source).
		Bool("pointer_mode", pointerMode).
		Str("metrics_addr", metricsAddr).
		Msg("starting tuio-simulator")

	registry := prometheus.NewRegistry()
	metricsSink := metrics.NewSink(registry)
	sink := events.Multi(events.NewLogSink(log.Logger), metricsSink)

	surface := command.New(fps, uint16(width), uint16(height), source, pointerMode, sink, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	metricsServer := &http.Server{Addr: metricsAddr, Handler: metrics.NewHandler(registry)}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	if err := surface.StartServer(ctx, port); err != nil {
		return err
	}

	<-ctx.Done()

	if err := surface.StopServer(); err != nil {
		log.Warn().Err(err).Msg("stop_server reported an error during shutdown")
	}
	_ = metricsServer.Close()

	return nil
}
