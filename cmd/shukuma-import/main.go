package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/shukuma/internal/config"
	"github.com/claude/shukuma/internal/importer"
	"github.com/claude/shukuma/internal/storage"
	"github.com/claude/shukuma/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "Shukuma server URL; uploads instead of writing local storage")
	apiKey := flag.String("api-key", os.Getenv("SHUKUMA_API_KEY"), "server API key (remote mode)")
	disclaimerUser := flag.String("disclaimer-user", "", "user the legacy disclaimer flag belongs to")
	dryRun := flag.Bool("dry-run", false, "report counts without writing anything")
	force := flag.Bool("force", false, "re-send dumps already uploaded to this server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("shukuma-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: shukuma-import [-config config.yaml | -server <URL> -api-key <key>] [-dry-run] dump.json [dump.json.gz ...]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be written")
	}

	ctx := context.Background()
	if *serverURL != "" {
		os.Exit(runRemote(ctx, log, strings.TrimRight(*serverURL, "/"), *apiKey, *disclaimerUser, *dryRun, *force, paths))
	}
	os.Exit(runLocal(ctx, log, *configPath, *disclaimerUser, *dryRun, paths))
}

func runLocal(ctx context.Context, log *slog.Logger, configPath, disclaimerUser string, dryRun bool, paths []string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return 1
	}
	if cfg.Storage.Driver == storage.DriverMemory {
		log.Error("memory storage does not outlive this process; configure sqlite or postgres")
		return 1
	}

	backend, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		return 1
	}
	store := storage.New(backend, storage.WithMonthlyGoal(cfg.Workout.MonthlyGoal))
	defer store.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	var opts []importer.Option
	if disclaimerUser != "" {
		opts = append(opts, importer.WithDisclaimerUser(disclaimerUser))
	}

	failed := false
	for _, path := range paths {
		imp := importer.New(store, log, dryRun, opts...)
		stats, err := imp.ImportFile(ctx, path)
		if err != nil {
			log.Error("import failed", "file", path, "error", err)
			failed = true
			continue
		}
		printStats(path, stats)
	}
	if failed {
		return 1
	}
	log.Info("import complete")
	return 0
}

func runRemote(ctx context.Context, log *slog.Logger, serverURL, apiKey, disclaimerUser string, dryRun, force bool, paths []string) int {
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "Error: -api-key (or SHUKUMA_API_KEY) is required with -server\n")
		return 1
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		return 1
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".shukuma-import"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		return 1
	}
	defer state.Close()

	client := upload.NewClient(serverURL, apiKey)
	client.DisclaimerUser = disclaimerUser
	u := upload.New(client, state, serverURL, dryRun, force, log)
	stats, err := u.Run(ctx, paths)
	if err != nil {
		log.Error("upload failed", "error", err)
		return 1
	}

	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	printStats("server", &stats.Imported)

	if stats.FilesErrored > 0 {
		return 1
	}
	return 0
}

func printStats(source string, stats *importer.Stats) {
	fmt.Println()
	fmt.Printf("=== Import Summary (%s) ===\n", source)
	fmt.Printf("  Keys read:        %d (%d errored)\n", stats.KeysRead, stats.KeysErrored)
	fmt.Printf("  Users:            %d new, %d merged\n", stats.UsersInserted, stats.UsersMerged)
	fmt.Printf("  Workouts:         %d new, %d already stored\n", stats.WorkoutsInserted, stats.WorkoutsDuplicated)
	fmt.Printf("  Progress:         %d new, %d kept\n", stats.ProgressInserted, stats.ProgressSkipped)
	fmt.Printf("  Settings:         %d\n", stats.SettingsImported)
	fmt.Printf("  Disclaimer:       %v\n", stats.DisclaimerAccepted)

	if len(stats.SkippedKeys) > 0 {
		fmt.Printf("\n  Skipped keys:\n")
		for _, k := range stats.SkippedKeys {
			fmt.Printf("    - %s\n", k)
		}
	}
	fmt.Println()
}
