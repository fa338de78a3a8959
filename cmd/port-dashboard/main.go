package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cybozu-go/port-dashboard/internal/common"
	"github.com/cybozu-go/port-dashboard/internal/dashboard"
	"github.com/cybozu-go/port-dashboard/internal/portscan"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const apiPath = "/api/ports"

var errInvalidFlag = errors.New("invalid flag value")

type config struct {
	listenAddr         string
	connectionsCommand string
	processesCommand   string
	commandTimeout     time.Duration
	refreshInterval    time.Duration
	rateLimit          float64
	rateBurst          int
}

func parseFlags(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}
	fs.StringVar(&cfg.listenAddr, "listen-address", ":8080", "The address the HTTP server binds to.")
	fs.StringVar(&cfg.connectionsCommand, "connections-command", "netstat -aon", "The command listing network connections with owning process ids.")
	fs.StringVar(&cfg.processesCommand, "processes-command", "tasklist", "The command listing running processes.")
	fs.DurationVar(&cfg.commandTimeout, "command-timeout", 10*time.Second, "Timeout of each listing command.")
	fs.DurationVar(&cfg.refreshInterval, "refresh-interval", 30*time.Second, "Interval at which the dashboard page reloads the port table.")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "Maximum port table computations per second. 0 disables throttling.")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 10, "Burst size of port table computations.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case cfg.commandTimeout <= 0:
		return nil, fmt.Errorf("%w: command-timeout must be positive", errInvalidFlag)
	case cfg.refreshInterval <= 0:
		return nil, fmt.Errorf("%w: refresh-interval must be positive", errInvalidFlag)
	case cfg.rateLimit < 0:
		return nil, fmt.Errorf("%w: rate-limit must not be negative", errInvalidFlag)
	case cfg.rateLimit > 0 && cfg.rateBurst <= 0:
		return nil, fmt.Errorf("%w: rate-burst must be positive", errInvalidFlag)
	}
	return cfg, nil
}

func newZapLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := newZapLogger()
	defer logger.Sync() //nolint:errcheck

	cfg, err := parseFlags(flag.NewFlagSet("port-dashboard", flag.ContinueOnError), args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.Error("failed to parse flags", zap.Error(err))
		return 1
	}
	logger.Info("starting port-dashboard...",
		zap.String("listen", cfg.listenAddr),
		zap.String("connections_command", cfg.connectionsCommand),
		zap.String("processes_command", cfg.processesCommand),
	)

	connections, err := portscan.NewCommandLister(portscan.ConnectionsListerName, cfg.connectionsCommand, cfg.commandTimeout)
	if err != nil {
		logger.Error("failed to create lister", zap.Error(err))
		return 1
	}
	processes, err := portscan.NewCommandLister(portscan.ProcessesListerName, cfg.processesCommand, cfg.commandTimeout)
	if err != nil {
		logger.Error("failed to create lister", zap.Error(err))
		return 1
	}
	computer := portscan.NewComputer(connections, processes, zapr.NewLogger(logger).WithName("portscan"))

	var limiter *rate.Limiter
	if cfg.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		select {
		case signal := <-signalCh:
			logger.Info("caught signal", zap.String("signal", signal.String()))
		case <-ctx.Done():
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/readyz", handleReadyz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle(apiPath, dashboard.NewPortsHandler(computer, limiter, logger))
	mux.Handle("/", dashboard.NewIndexHandler(apiPath, cfg.refreshInterval, logger))
	server := http.Server{
		Addr:              cfg.listenAddr,
		Handler:           common.NewLoggingHTTPHandler(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	exitCode := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		go func() {
			<-ctx.Done()
			server.Shutdown(context.Background()) //nolint:errcheck
		}()
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logger.Error("failed to start HTTP server", zap.Error(err))
			exitCode = 1
		}
	}()

	wg.Wait()
	logger.Info("termination completed")
	return exitCode
}

func handleReadyz(http.ResponseWriter, *http.Request) {
	// Nothing to do for now
}
