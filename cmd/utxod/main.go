package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cosmasken/kaspa402/internal/chain"
	"github.com/cosmasken/kaspa402/internal/config"
	"github.com/cosmasken/kaspa402/internal/httpapi"
	"github.com/cosmasken/kaspa402/internal/manager"
	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/pkg/logging"
)

var (
	flagConf string
	flagEnv  string
)

func init() {
	flag.StringVar(&flagConf, "conf", "./config.yaml", "config path, eg: -conf config.yaml")
	flag.StringVar(&flagEnv, "env", "./.env", "optional .env path")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(flagConf, flagEnv)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, _ := logging.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	network := model.Network(cfg.Network)
	if !network.Valid() {
		logger.Fatal("invalid network", zap.String("network", cfg.Network))
	}

	chainClient, err := chain.New(network, cfg.APIBaseURL)
	if err != nil {
		logger.Fatal("error initializing chain client", zap.Error(err))
	}

	mgr, err := manager.New(cfg.UTXO, chainClient, logger)
	if err != nil {
		logger.Fatal("error initializing manager", zap.Error(err))
	}

	httpServer := httpapi.NewServer(cfg.Server.Host, cfg.Server.Port, logger, mgr)
	httpServer.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("error shutting down http server", zap.Error(err))
	}
}
