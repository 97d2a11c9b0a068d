package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/shukuma/internal/compose"
	"github.com/claude/shukuma/internal/deck"
	"github.com/claude/shukuma/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
// It is empty when the caller is anonymous.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Options tunes workout composition for MCP callers.
type Options struct {
	DefaultCount    int
	MaxCount        int
	WaterBreakEvery int
}

// New creates an MCP server with all tools and resources registered.
func New(catalog deck.Catalog, ds DataSource, opts Options, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Shukuma", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Shukuma exercise-card server. Browse the exercise deck, get step-by-step instructions, compose random or filtered workouts with water breaks, and review the signed-in user's saved workouts and progress."),
	)

	h := newHandlers(catalog, ds, opts, log)

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetInstructions, Handler: h.getInstructions},
		server.ServerTool{Tool: toolComposeRandom, Handler: h.composeRandom},
		server.ServerTool{Tool: toolComposeFiltered, Handler: h.composeFiltered},
		server.ServerTool{Tool: toolGetUserStats, Handler: h.getUserStats},
		server.ServerTool{Tool: toolGetUserProgress, Handler: h.getUserProgress},
		server.ServerTool{Tool: toolGetRecentWorkouts, Handler: h.getRecentWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalogResource},
		server.ServerResource{Resource: resFilterOptions, Handler: h.filterOptions},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	catalog deck.Catalog
	ds      DataSource
	opts    Options
	log     *slog.Logger

	// composers are not safe for concurrent use.
	mu         sync.Mutex
	withBreaks *compose.Composer
	noBreaks   *compose.Composer
}

func newHandlers(catalog deck.Catalog, ds DataSource, opts Options, log *slog.Logger) *handlers {
	if opts.MaxCount <= 0 {
		opts.MaxCount = 30
	}
	if opts.DefaultCount <= 0 || opts.DefaultCount > opts.MaxCount {
		opts.DefaultCount = min(10, opts.MaxCount)
	}
	return &handlers{
		catalog:    catalog,
		ds:         ds,
		opts:       opts,
		log:        log,
		withBreaks: compose.New(nil, compose.WithBreakEvery(opts.WaterBreakEvery)),
		noBreaks:   compose.New(nil, compose.WithBreakEvery(0)),
	}
}

// withComposer runs fn with the composer matching the caller's water-break
// setting. Anonymous callers get water breaks.
func (h *handlers) withComposer(ctx context.Context, fn func(*compose.Composer) []models.Card) []models.Card {
	breaks := true
	if uid := UserIDFromContext(ctx); uid != "" && h.ds != nil {
		settings, err := h.ds.GetUserSettings(ctx, uid)
		if err != nil {
			h.log.Warn("mcp settings lookup", "user", uid, "error", err)
		} else {
			breaks = settings.AutoWaterBreaks
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if breaks {
		return fn(h.withBreaks)
	}
	return fn(h.noBreaks)
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"shukuma://catalog",
	"Card Catalog",
	mcp.WithResourceDescription("Every card in the deck: exercise cards by category plus the water-break and disclaimer cards"),
	mcp.WithMIMEType("application/json"),
)

var resFilterOptions = mcp.NewResource(
	"shukuma://filter_options",
	"Filter Options",
	mcp.WithResourceDescription("Accepted values for the difficulty, type and duration workout filters"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"shukuma://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The signed-in user's ten most recent saved workouts"),
	mcp.WithMIMEType("application/json"),
)
