package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"internet-cafe-api/internal/config"
	"internet-cafe-api/internal/database"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [up|down|status|redo|version]\n")
	}
	flag.Parse()

	command := database.MigrateUp
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)

	ctx := context.Background()
	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, command); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		db.Close()
		os.Exit(1)
	}

	logger.Info("migration finished", "command", command)
}
