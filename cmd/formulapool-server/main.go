package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/you/formulapool/internal/api"
	"github.com/you/formulapool/internal/cluster"
	"github.com/you/formulapool/internal/config"
	"github.com/you/formulapool/internal/logx"
	"github.com/you/formulapool/internal/metrics"
	"github.com/you/formulapool/internal/server"
	"github.com/you/formulapool/internal/workerapi"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.ServerConfig
	// Resolve config with precedence: defaults < file < env < args
	cfg.SetDefaults()
	cfg.ApplyEnv() // allows CONFIG_FILE from env
	// Allow --config to override the file path before loading it
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--config" && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") {
			cfg.ConfigFile = strings.TrimPrefix(a, "--config=")
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	cfg.ApplyEnv()
	cfg.BindFlagsFromCurrent()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "formulapool-server version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Printf("formulapool-server version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	logx.Configure(cfg.LogLevel)

	endpoints := cfg.WorkerEndpoints()
	refs := make([]cluster.WorkerRef, len(endpoints))
	for i, ep := range endpoints {
		refs[i] = cluster.WorkerRef{ID: ep.ID, URL: ep.URL}
	}
	reg := cluster.NewRegistry(refs)
	stats := cluster.NewStats(refs)
	client := workerapi.NewClient()
	poller := cluster.NewPoller(reg, client, cfg.HealthCheckInterval, cfg.ProbeTimeout)
	fwd := cluster.NewForwarder(reg, stats, cluster.LeastLoaded{}, client, poller, cfg.RequestTimeout)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetServerBuildInfo(version, buildSHA, buildDate)
	metrics.SetPoolSize(len(refs))

	info := api.VersionInfo{Version: version, BuildSHA: buildSHA, BuildDate: buildDate}
	handler := server.New(cfg, reg, stats, fwd, info)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go poller.Run(ctx)
	// Serving starts right away; readiness of the pool is only reported.
	go func() {
		n := poller.AwaitReady(ctx, cfg.StartupWait)
		if ctx.Err() == nil {
			logx.Log.Info().Int("healthy", n).Int("total", len(refs)).Msg("worker pool ready")
		}
	}()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			logx.Log.Error().Err(err).Msg("server shutdown")
		}
	}()

	logx.Log.Info().Int("port", cfg.Port).Int("workers", len(refs)).Msg("balancer starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
