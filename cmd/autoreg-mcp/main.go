package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/autoreg/internal/config"
	"github.com/meltforce/autoreg/internal/mcp"
	"github.com/meltforce/autoreg/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("remote", "", "base URL of a running autoregd (remote mode, skips the database)")
	flag.Parse()

	// stdout carries the MCP protocol, logs go to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL)
		log.Info("mcp starting", "mode", "remote", "url", *remoteURL, "version", Version)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN(), int32(cfg.Database.MaxConns))
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("mcp starting", "mode", "local", "version", Version)
	}

	s := mcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
