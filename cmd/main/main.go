package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stock-tracker/src/config"
	"stock-tracker/src/interfaces"
	"stock-tracker/src/logger"
	"stock-tracker/src/network"
	"stock-tracker/src/poller"
	"stock-tracker/src/quotes/yahoo"
	"stock-tracker/src/server"
	"stock-tracker/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.Name, cfg.LogLevel)

	// Setup store
	var store interfaces.IStockStore

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewSQLiteStore(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate store: %v", err)
	}
	defer store.Close()

	// Setup upstream source
	var netMgr interfaces.INetworkManager = network.NewNetworkManager(cfg.MConfig, appLogger)
	var source interfaces.IQuoteSource = yahoo.NewYahooQuoteSource(cfg.MConfig, netMgr)

	// Setup HTTP API + websocket hub
	srv := server.NewAPIServer(cfg.MConfig, appLogger, store, source)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// Start the background price poller
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := &sync.WaitGroup{}
	pricePoller := poller.NewBroadcastPoller(cfg.MConfig, appLogger, store, source, srv)
	if err := pricePoller.Start(ctx, wg); err != nil {
		appLogger.Critical("Failed to start poller: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	wg.Wait()
	srv.Stop()
}
