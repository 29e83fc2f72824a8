// Command mcp exposes branch normalization and eligibility lookups as MCP tools over
// stdio, for use from an assistant by placement staff.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/justsurfingit/placement-portal/internal/config"
	"github.com/justsurfingit/placement-portal/internal/database"
	"github.com/justsurfingit/placement-portal/internal/services"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	s := server.NewMCPServer("placement-portal", "1.0.0")
	t := &tools{jobs: services.NewJobService(db)}
	t.register(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
