package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taprunner/internal/metrics"
	"github.com/vovakirdan/taprunner/internal/platform/tui"
	"github.com/vovakirdan/taprunner/internal/platform/web"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
	flagNoSSH       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and HTTP servers",
	Long: `Start an SSH server that lets users connect and play, plus an HTTP
server exposing Prometheus metrics and a small JSON API.

Each SSH connection gets its own session with the title menu.
All sessions share one store, so the best score is server-wide.
Best score writes go through a background writer.

HTTP routes:
  GET  /metrics     Prometheus metrics
  GET  /healthz     Liveness
  GET  /api/config  Resolved game config
  GET  /api/best    Stored best score
  GET  /api/runs    Run history (?view=top|recent&limit=N)
  POST /api/sim     Headless simulation

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.taprunner/host_key

Examples:
  taprunner serve                                  # SSH :23234, HTTP :9090
  taprunner serve --ssh :2222 --http ""            # SSH only
  taprunner serve --no-ssh --http :8080            # HTTP only
  taprunner serve --store redis --dsn redis://localhost:6379/0

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":9090", "HTTP server address, empty to disable")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Do not start the SSH server")
}

func runServe(_ *cobra.Command, _ []string) {
	if flagNoSSH && flagHTTPAddr == "" {
		exitErr("nothing to serve: --no-ssh with an empty --http")
	}

	cfg, err := loadGameConfig()
	if err != nil {
		exitErr("%v", err)
	}

	logger, closeLog, err := newLogger(false)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	svc, closeStore, err := openServices(context.Background(), logger, true, true)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeStore()

	svc.Metrics = metrics.New()
	svc.Metrics.SetBest(svc.BestScore(context.Background(), cfg))

	var httpSrv *web.Server
	if flagHTTPAddr != "" {
		httpSrv = web.NewServer(flagHTTPAddr, &web.Handler{
			Config:  cfg,
			Store:   svc.Store,
			Runs:    svc.Runs,
			Metrics: svc.Metrics,
			Logger:  logger,
		})
		httpSrv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
		}()
	}

	if flagNoSSH {
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		fmt.Printf("Serving HTTP on %s\n", httpSrv.Addr())
		fmt.Println("Press Ctrl+C to stop")
		<-done
		return
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS
	sshCfg.Game = cfg

	server, err := tui.NewSSHServer(sshCfg, svc)
	if err != nil {
		exitErr("creating server: %v", err)
	}

	fmt.Printf("Starting taprunner SSH server on %s\n", sshCfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(sshCfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
	}
}

// portOf returns the port of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
