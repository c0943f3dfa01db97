package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/aggregator"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/config"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/hub"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/logging"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/reader"
	transporthttp "github.com/pravinkannan18/RFID-Reader-Application/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the command that runs the presence service.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the presence service and its HTTP/websocket API",
		Long: `Connects to every zone's reader, keeps the live presence snapshot and
serves the control API plus the /ws snapshot stream.

Settings come from sentinel.toml (or SENTINEL_CONFIG) and SENTINEL_* env vars.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logging.New(os.Stderr))
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	st, err := openStores(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.close()

	clk := clock.NewSystem()
	stream := hub.New(cfg.Monitor.SubscriberQueue, logger)
	pipeline := aggregator.New(
		aggregator.WithClock(clk),
		aggregator.WithLogger(logger),
		aggregator.WithPolicy(cfg.Policy()),
		aggregator.WithSweepInterval(cfg.Monitor.SweepInterval),
		aggregator.WithPublishInterval(cfg.Monitor.PublishInterval),
		aggregator.WithHeartbeatInterval(cfg.Monitor.HeartbeatInterval),
		aggregator.WithPublisher(stream),
		aggregator.WithDefaultZone(app.DefaultZoneID),
	)

	// The pipeline outlives request handling so shutdown can drain links into it.
	pipeCtx, stopPipeline := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := pipeline.Run(pipeCtx); err != nil {
			logger.Printf("aggregator: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		stream.Run(pipeCtx)
	}()
	defer func() {
		stopPipeline()
		wg.Wait()
	}()

	zones := app.NewZoneService(st.zones, pipeline, clk,
		app.WithSourceFactory(app.DefaultSources(cfg.Reader.DialTimeout)),
		app.WithReaderPollInterval(cfg.Reader.PollInterval),
		app.WithLinkOptions(
			reader.WithBackoff(cfg.Reader.BackoffBase, cfg.Reader.BackoffCap),
			reader.WithLogger(logger),
		),
		app.WithZoneLogger(logger),
	)
	defer zones.Shutdown()

	tags := app.NewTagService(st.names, pipeline)
	if err := tags.Load(ctx); err != nil {
		return fmt.Errorf("load tag names: %w", err)
	}
	if err := zones.Load(ctx, cfg.Monitor.Autostart); err != nil {
		return err
	}
	monitor := app.NewMonitorService(zones, app.MonitorDefaults{
		ReaderAddress:  cfg.Legacy.ReaderIP,
		ReaderPort:     cfg.Legacy.ReaderPort,
		MissingTimeout: cfg.Legacy.Timeout,
		SimulationMode: cfg.Legacy.Simulation,
	})

	router := transporthttp.NewRouter(transporthttp.Services{
		Zones:     zones,
		Monitor:   monitor,
		Tags:      tags,
		Snapshots: pipeline,
		Stream:    stream,
		Origins:   cfg.HTTP.CORSOrigins,
		Logger:    logger,
	})
	var handler http.Handler = transporthttp.RequestLogger(transporthttp.CORS(cfg.HTTP.CORSOrigins, router), logger)
	if cfg.HTTP.H2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Printf("api listening on %s h2c=%t store=%s", server.Addr, cfg.HTTP.H2C, cfg.Store.Driver)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
	return runErr
}
