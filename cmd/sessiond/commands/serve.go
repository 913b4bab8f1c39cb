package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kappalabs/sessiond/internal/logger"
	"github.com/kappalabs/sessiond/internal/manager"
	"github.com/kappalabs/sessiond/internal/metrics"
	"github.com/kappalabs/sessiond/internal/server"
	"github.com/kappalabs/sessiond/internal/session"
	"github.com/kappalabs/sessiond/pkg/config"
)

var (
	flagSocket      string
	flagDir         string
	flagMetricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sessiond server",
	Long: `Run the sessiond server: bind the Unix-domain socket, accept
connections, and run the periodic maintenance task until an interrupt or
terminate signal is received.

Examples:
  # Serve with default config location
  sessiond serve

  # Serve with custom socket and data directory
  sessiond serve --socket /run/sessiond.sock --dir /var/lib/sessiond

  # Serve with a Prometheus endpoint
  sessiond serve --metrics-addr 127.0.0.1:9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSocket, "socket", "", "Unix-domain socket path (overrides config)")
	serveCmd.Flags().StringVar(&flagDir, "dir", "", "directory holding users.cdb (overrides config)")
	serveCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint, empty disables it (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flagSocket != "" {
		cfg.Socket = flagSocket
	}
	if flagDir != "" {
		cfg.Dir = flagDir
	}
	if flagMetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = flagMetricsAddr
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	manager.LockCount = cfg.Session.LockCount
	server.MaintenanceInterval = cfg.Session.MaintenanceInterval
	session.Period = int64(cfg.Session.Period.Seconds())

	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var m *metrics.Metrics
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler(reg)}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logger.Err(err))
			}
		}()
		logger.Info("metrics enabled", "addr", cfg.Metrics.Addr)
	} else {
		logger.Info("metrics disabled")
	}

	if err := os.RemoveAll(cfg.Socket); err != nil {
		return fmt.Errorf("failed to clear stale socket: %w", err)
	}
	listener, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Socket, err)
	}
	defer os.Remove(cfg.Socket)

	mgr := manager.New(cfg.Dir, m)
	srv := server.New(listener, mgr, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()
	go srv.RunMaintenance(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("sessiond is running", "socket", cfg.Socket, "dir", cfg.Dir)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, saving and stopping")
		cancel()
		<-serverDone
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
		}
	}

	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}

	if mgr.Dirty() {
		if err := mgr.Save(); err != nil {
			logger.Error("final save failed", logger.Err(err))
			return err
		}
	}
	logger.Info("sessiond stopped")
	return nil
}
