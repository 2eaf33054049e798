package main

import (
	"log"

	"github.com/pevans/yuquemd"
	"github.com/pevans/yuquemd/config"
	"github.com/pevans/yuquemd/lake"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create history store
	history, err := yuquemd.NewHistoryStore(cfg.HistoryDSN)
	if err != nil {
		log.Fatalf("Failed to create history store: %v", err)
	}
	defer history.Close()

	server := yuquemd.NewAPIServer(lake.NewConverter(cfg.Workers), history)
	router := server.SetupRouter()

	// Start server
	log.Printf("Starting conversion API server on http://%s/api/v1", cfg.APIAddr)

	if err := router.Run(cfg.APIAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
