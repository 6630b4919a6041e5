package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/autoreg/internal/config"
	"github.com/meltforce/autoreg/internal/program"
	"github.com/meltforce/autoreg/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	programPath := flag.String("path", "", "path to a program JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *programPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: autoreg-import -config config.yaml -path program.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*programPath)
	if err != nil {
		log.Error("failed to read program file", "path", *programPath, "error", err)
		os.Exit(1)
	}

	var p program.Program
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error("failed to parse program", "error", err)
		os.Exit(1)
	}

	targets := p.AllTargets()
	if len(targets) == 0 {
		log.Error("program contains no exercises")
		os.Exit(1)
	}
	log.Info("program parsed",
		"name", p.Name,
		"shape", string(p.Kind()),
		"exercises", len(targets),
	)
	for _, t := range targets {
		log.Info("exercise",
			"name", t.Name,
			"sets", t.PlannedSets,
			"reps", fmt.Sprintf("%d-%d", t.RepLow, t.RepHigh),
			"target_rir", t.TargetRIR,
			"rest_seconds", t.RestSeconds,
		)
	}

	if *dryRun {
		log.Info("DRY RUN mode — nothing written to the database")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn, int32(cfg.Database.MaxConns))
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InsertProgram(ctx, &p); err != nil {
		log.Error("insert failed", "error", err)
		os.Exit(1)
	}
	log.Info("program imported", "id", p.ID.String())
}
