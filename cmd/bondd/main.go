package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/WillShirley13/testudo-bonds/config"
	"github.com/WillShirley13/testudo-bonds/core"
	"github.com/WillShirley13/testudo-bonds/core/events"
	"github.com/WillShirley13/testudo-bonds/observability"
	"github.com/WillShirley13/testudo-bonds/observability/logging"
	"github.com/WillShirley13/testudo-bonds/rpc"
	"github.com/WillShirley13/testudo-bonds/storage"
)

const (
	envName         = "TESTUDO_ENV"
	recentEvents    = 1024
	shutdownTimeout = 10 * time.Second
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile); err != nil {
		slog.Error("bondd stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env := strings.TrimSpace(os.Getenv(envName))
	if env == "" {
		env = cfg.Environment
	}
	logger, closer := logging.SetupWithFile("bondd", env, logging.FileOptions{
		Path:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
		Compress:  true,
	})
	defer closer.Close()

	params, err := cfg.Params()
	if err != nil {
		return fmt.Errorf("ledger params: %w", err)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	exec, err := core.NewExecutor(db, core.HeadRoot(db), params)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	recorder := events.NewRecorder(recentEvents)
	metrics := observability.BondMetrics()
	exec.SetLogger(logger)
	exec.SetEmitter(recorder)
	exec.SetMetrics(metrics)
	exec.SetPauses(cfg.Pauses())

	applied, err := exec.ApplyGenesis(&cfg.Genesis)
	if err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	if applied {
		logger.Info("genesis applied",
			slog.String("mint", cfg.Genesis.Mint),
			slog.Int("allocations", len(cfg.Genesis.Allocations)),
			slog.String("root", exec.Root().Hex()))
	}

	server := &http.Server{
		Handler: rpc.New(rpc.Config{
			Backend: exec,
			Quota:   cfg.SubmissionQuota(),
			RateLimit: rpc.RateLimit{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				Burst:             cfg.RateLimit.Burst,
			},
			Events:  recorder,
			Metrics: metrics,
			Logger:  logger,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	listener, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("rpc listening",
			slog.String("address", listener.Addr().String()),
			slog.String("program", params.ProgramID.String()),
			slog.Uint64("height", exec.Height()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", slog.Any("error", err))
	}
	if _, err := exec.Commit(); err != nil {
		return fmt.Errorf("final commit: %w", err)
	}
	logger.Info("bondd stopped", slog.String("root", exec.Root().Hex()))
	return nil
}
