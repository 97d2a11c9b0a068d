package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/shukuma/internal/config"
	"github.com/claude/shukuma/internal/deck"
	shukumamcp "github.com/claude/shukuma/internal/mcp"
	"github.com/claude/shukuma/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	remote := flag.String("remote", "", "base URL of a Shukuma server; user data is read over its REST API")
	user := flag.String("user", "", "user id the tools act as (default: auth.dev_user)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	d, err := deck.LoadFile(cfg.Deck.Path)
	if err != nil {
		log.Error("failed to load deck", "error", err)
		os.Exit(1)
	}
	catalog := deck.Build(d)

	var ds shukumamcp.DataSource
	if *remote != "" {
		ds = shukumamcp.NewHTTPClient(*remote)
		log.Info("remote mode", "url", *remote)
	} else {
		backend, err := storage.Open(context.Background(), cfg.Storage.Driver, cfg.Storage.DSN())
		if err != nil {
			log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
			os.Exit(1)
		}
		store := storage.New(backend, storage.WithMonthlyGoal(cfg.Workout.MonthlyGoal))
		defer store.Close()
		ds = store
		log.Info("local mode", "driver", cfg.Storage.Driver)
	}

	uid := *user
	if uid == "" {
		uid = cfg.Auth.DevUser
	}

	s := shukumamcp.New(catalog, ds, shukumamcp.Options{
		DefaultCount:    cfg.Workout.DefaultCount,
		MaxCount:        cfg.Workout.MaxCount,
		WaterBreakEvery: cfg.Workout.WaterBreakEvery,
	}, Version, log)

	err = mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		if uid == "" {
			return ctx
		}
		return shukumamcp.WithUserID(ctx, uid)
	}))
	if err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
