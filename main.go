package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/aeromatch/internal/config"
	"github.com/aeromatch/internal/metrics"
	"github.com/aeromatch/internal/protocol"
	"github.com/aeromatch/internal/util"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.Logging.File != "" {
		if err := util.InitFile(util.LevelInfo, cfg.Logging.Format, cfg.Logging.File); err != nil {
			os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
			os.Exit(1)
		}
	} else {
		util.Init(util.LevelInfo, cfg.Logging.Format, os.Stdout)
	}
	log := util.L()
	log.Info("starting aeromatch: %s", cfg.String())

	// ----------MONITORING & OBSERVABILITY----------
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler: metrics.Handler(),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server exited: %v", err)
			}
		}()
		log.Info("metrics endpoint listening on %s", metricsServer.Addr)
	}

	var pprofServer *http.Server
	if cfg.Server.EnablePProf {
		pprofServer = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.PProfPort)}
		go func() {
			if err := pprofServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("pprof server exited: %v", err)
			}
		}()
		log.Info("pprof endpoint listening on %s", pprofServer.Addr)
	}

	// ----------CORE ENGINE + NETWORK LAYER----------
	// The gRPC server owns the single engine.Engine instance: it builds
	// the engine internally with itself as the TradeSink (see
	// internal/protocol/server.go), since the sink and the engine it
	// feeds are constructed together.
	grpcServer, err := protocol.NewGRPCServer(
		protocol.EngineParams{
			MinTick:        cfg.Engine.MinTick,
			MaxTick:        cfg.Engine.MaxTick,
			ExpectedOrders: cfg.Engine.ExpectedOrders,
			MaxOrderID:     cfg.Engine.MaxOrderID,
		},
		cfg.Engine.Instrument,
		cfg.Server.GRPCPort,
		cfg.Server.MaxMessageSize,
		cfg.Engine.DepthLevels,
		metrics.GetCollector(),
	)
	if err != nil {
		log.Fatal("failed to create gRPC server: %v", err)
	}

	grpcServer.Start()
	log.Info("gRPC server listening on %s for instrument %s", grpcServer.Addr(), cfg.Engine.Instrument)
	log.Info("aeromatch is ready and accepting orders")

	// ----------GRACEFUL SHUTDOWN HANDLING----------
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutdown signal received, initiating graceful shutdown")
	grpcServer.Stop()
	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	if pprofServer != nil {
		_ = pprofServer.Close()
	}
	_ = log.Close()
}
