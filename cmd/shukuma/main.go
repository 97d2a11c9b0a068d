package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/shukuma/internal/config"
	"github.com/claude/shukuma/internal/deck"
	shukumamcp "github.com/claude/shukuma/internal/mcp"
	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/server"
	"github.com/claude/shukuma/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Shukuma starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open storage; sqlite and postgres migrate on open
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	store := storage.New(backend, storage.WithMonthlyGoal(cfg.Workout.MonthlyGoal))
	defer store.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Load deck
	d, err := deck.LoadFile(cfg.Deck.Path)
	if err != nil {
		log.Error("failed to load deck", "error", err)
		os.Exit(1)
	}
	catalog := deck.Build(d)
	log.Info("deck loaded", "cards", len(catalog), "exercises", len(catalog.Exercises()))
	for _, u := range catalog.Unique() {
		if !metadata.Known(u.Card.ExerciseName) {
			log.Warn("no metadata for exercise, using defaults", "exercise", u.Card.ExerciseName)
		}
	}

	// Create server
	srv := server.New(catalog, store, cfg.Workout, cfg.Auth, log)
	srv.SetMCP(shukumamcp.New(catalog, store, shukumamcp.Options{
		DefaultCount:    cfg.Workout.DefaultCount,
		MaxCount:        cfg.Workout.MaxCount,
		WaterBreakEvery: cfg.Workout.WaterBreakEvery,
	}, Version, log))

	// Serve card images
	if cfg.Server.AssetsDir != "" {
		info, err := os.Stat(cfg.Server.AssetsDir)
		if err != nil || !info.IsDir() {
			log.Error("assets_dir does not exist or is not a directory", "path", cfg.Server.AssetsDir)
			os.Exit(1)
		}
		srv.SetAssets(os.DirFS(cfg.Server.AssetsDir))
		log.Info("serving card images", "dir", cfg.Server.AssetsDir)
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)", "dev_user", cfg.Auth.DevUser)
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
