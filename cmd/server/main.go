package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitas-games/shoptiles/internal/condition"
	"github.com/gravitas-games/shoptiles/internal/config"
	"github.com/gravitas-games/shoptiles/internal/contentpack"
	"github.com/gravitas-games/shoptiles/internal/harvest"
	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/server"
	"github.com/gravitas-games/shoptiles/internal/shop"
	"github.com/gravitas-games/shoptiles/internal/stock"
	"github.com/gravitas-games/shoptiles/internal/world"
)

func main() {
	log.Println("Starting shop server...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	monitor := logging.Default(cfg.Shops.VerboseLogging)
	monitor.Infof("Configuration loaded from %s", configPath)

	// Load content packs
	packs, errs := contentpack.NewLoader(monitor).LoadAll(cfg.Shops.ContentPacks)
	monitor.Infof("Loaded %d content packs with %d problems", len(packs), len(errs))

	cat, errs := packs.Catalog()
	for _, err := range errs {
		monitor.Warnf("%v", err)
	}
	monitor.Infof("Catalog holds %d items", cat.Len())

	// Build the stock pipeline
	conditions := condition.NewEvaluator(monitor)
	events := shop.NewSimpleEventBus()
	registry := shop.NewRegistry(stock.NewAssembler(cat, conditions, monitor), conditions, monitor, shop.WithEventBus(events))
	for _, err := range packs.Install(registry, cat) {
		monitor.Warnf("%v", err)
	}

	harvests := harvest.NewTable(cat, monitor)
	monitor.Infof("Registered %d shops and %d harvest rules", registry.Len(), packs.Harvest(harvests))

	current := world.NewLive(nil)
	if cfg.Shops.WorldStatePath != "" {
		snap, err := world.LoadFile(cfg.Shops.WorldStatePath)
		if err != nil {
			log.Fatalf("Failed to load world state: %v", err)
		}
		current.Set(snap)
	}

	// Create and initialize server
	srv, err := server.New(cfg, server.SessionOptions{
		Registry:  registry,
		Events:    events,
		World:     current,
		Harvest:   harvests,
		Monitor:   monitor,
		DebugOpen: cfg.Shops.DebugOpen,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	registry.RefreshAll(current.Snapshot())

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		monitor.Infof("Server listening on %s", addr)
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		monitor.Infof("Received signal %v, shutting down...", sig)
	}

	// Graceful shutdown
	if err := srv.Shutdown(); err != nil {
		monitor.Errorf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}
