// @title        Irrigation valve controller
// @version      1.0
// @description  Single-valve controller with manual and scheduled operation and overheat protection.
// @BasePath     /
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "irrigation_valve/docs"
	"irrigation_valve/internal/clock"
	"irrigation_valve/internal/config"
	"irrigation_valve/internal/gpio"
	"irrigation_valve/internal/handlers"
	"irrigation_valve/internal/logger"
	"irrigation_valve/internal/metrics"
	"irrigation_valve/internal/mqtt"
	"irrigation_valve/internal/repository"
	"irrigation_valve/internal/repository/db"
	"irrigation_valve/internal/reset"
	"irrigation_valve/internal/server"
	"irrigation_valve/internal/service"
	"irrigation_valve/internal/transport"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	configFile string
	v          = viper.New()

	rootCmd = &cobra.Command{
		Use:          "valved",
		Short:        "Irrigation valve controller",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the controller and its HTTP control surface (default)",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (default: configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, statusCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configs/config.yml (or --config) plus VALVED_* overrides.
func loadConfig() (config.Config, error) {
	if err := config.Read(v, configFile); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Errorw("failed to init sqlite", "err", err)
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	relay, err := openRelay(cfg, log)
	if err != nil {
		log.Errorw("failed to open relay", "err", err)
		return err
	}
	defer func() {
		if cerr := relay.Close(); cerr != nil {
			log.Errorw("failed to release relay", "err", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootID := uuid.NewString()
	log.Infow("valved_starting", "boot_id", bootID, "db", cfg.DBPath, "gpio", cfg.GPIO.Enabled)

	// wire dependencies
	repos := repository.NewRepository(conn)
	clk := clock.NewSystem(cfg.Clock.Location, cfg.Clock.AssumeSynced)
	observers, notifier, reg := buildObservers(cfg, bootID, clk, log)

	ctrl, err := service.NewController(ctx, repos.StateRepo, relay, clk,
		log.Named("controller"),
		service.ControllerConfig{
			StartupGrace:   cfg.Control.StartupGrace,
			LockTimeout:    cfg.Control.LockTimeout,
			PersistTimeout: cfg.Control.PersistTimeout,
			BootID:         bootID,
		},
		observers...,
	)
	if err != nil {
		log.Errorw("failed to start controller", "err", err)
		return err
	}
	services := service.NewService(ctrl)

	opts := []handlers.Option{handlers.WithSignal(transport.NewWireless(cfg.WiFi.Interface))}
	if reg != nil {
		opts = append(opts, handlers.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	apiHandler := handlers.NewHandler(services, log.Named("http"), opts...)

	g, gctx := errgroup.WithContext(ctx)

	// periodic control cycle
	g.Go(func() error {
		services.Runner.Run(gctx, cfg.Control.Tick)
		return nil
	})

	// HTTP server and its graceful shutdown
	srv := &server.Server{}
	g.Go(func() error {
		log.Infow("http_listening", "port", cfg.Port)
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if notifier != nil {
		g.Go(func() error { return notifier.Run(gctx) })
	}

	if watcher, closeButton := openResetWatcher(cfg, ctrl, conn, relay, log); watcher != nil {
		defer closeButton()
		g.Go(func() error { return watcher.Run(gctx) })
	}

	err = g.Wait()
	log.Infow("valved_stopped", "err", err)
	return err
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening state store", "path", cfg.DBPath)
	return db.InitDB(cfg.DBPath)
}

func openRelay(cfg config.Config, log *logger.Logger) (gpio.Relay, error) {
	if !cfg.GPIO.Enabled {
		log.Warnw("gpio disabled; relay is simulated")
		return gpio.NewSimulatedRelay(log.Named("relay")), nil
	}
	return gpio.NewRealRelay(cfg.GPIO.Chip, cfg.GPIO.RelayPin, cfg.GPIO.RelayActiveLow)
}

// buildObservers assembles the metrics collector and MQTT publisher the controller reports to.
func buildObservers(cfg config.Config, bootID string, clk clock.Source, log *logger.Logger) ([]service.Observer, *mqtt.Notifier, *prometheus.Registry) {
	var (
		observers []service.Observer
		notifier  *mqtt.Notifier
		reg       *prometheus.Registry
	)

	if cfg.Metrics.Enabled {
		m := metrics.NewMetrics(clk)
		reg = prometheus.NewRegistry()
		reg.MustRegister(m,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, m)
	}

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID + "-" + bootID[:8],
		}, log.Named("mqtt"))
		if err != nil {
			// publishing is optional; the valve keeps working without a broker
			log.Errorw("mqtt disabled", "err", err)
		} else {
			notifier = mqtt.NewNotifier(pub, log.Named("mqtt"))
			observers = append(observers, notifier)
		}
	}

	return observers, notifier, reg
}

// openResetWatcher returns nil when the reset button is disabled or unavailable.
func openResetWatcher(cfg config.Config, store reset.Eraser, conn *sql.DB, relay gpio.Relay, log *logger.Logger) (*reset.Watcher, func()) {
	if !cfg.GPIO.Enabled || cfg.GPIO.ResetPin < 0 {
		return nil, nil
	}
	button, err := gpio.NewRealButton(cfg.GPIO.Chip, cfg.GPIO.ResetPin)
	if err != nil {
		log.Errorw("reset button unavailable", "err", err)
		return nil, nil
	}
	restarter := reset.ExecRestarter{
		BeforeExec: func() {
			if err := relay.Close(); err != nil {
				log.Errorw("failed to release relay", "err", err)
			}
			if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
				log.Errorw("failed to close sqlite", "err", err)
			}
			_ = button.Close()
			_ = log.Sync()
		},
	}
	w := reset.NewWatcher(button, store, restarter, cfg.GPIO.ResetDebounce, log.Named("reset"))
	return w, func() { _ = button.Close() }
}
