package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/claude/shukuma/internal/compose"
	"github.com/claude/shukuma/internal/config"
	"github.com/claude/shukuma/internal/deck"
	shukumamcp "github.com/claude/shukuma/internal/mcp"
	"github.com/claude/shukuma/internal/storage"
	"github.com/claude/shukuma/internal/tracking"
	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog  deck.Catalog
	store    *storage.Store
	sessions *tracking.Registry
	workout  config.WorkoutConfig
	auth     config.AuthConfig
	log      *slog.Logger
	router   chi.Router
	whois    WhoIser

	// composers are not safe for concurrent use.
	composeMu  sync.Mutex
	withBreaks *compose.Composer
	noBreaks   *compose.Composer
}

// New creates a new Server with all routes configured.
func New(catalog deck.Catalog, store *storage.Store, workout config.WorkoutConfig, auth config.AuthConfig, log *slog.Logger) *Server {
	s := &Server{
		catalog:    catalog,
		store:      store,
		sessions:   tracking.NewRegistry(time.Now),
		workout:    workout,
		auth:       auth,
		log:        log,
		router:     chi.NewRouter(),
		withBreaks: compose.New(nil, compose.WithBreakEvery(workout.WaterBreakEvery)),
		noBreaks:   compose.New(nil, compose.WithBreakEvery(0)),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale makes the Identity middleware ask the tailnet who is
// calling before falling back to headers.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Identity(func() WhoIser { return s.whois }, s.auth.DevUser, s.log))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/cards", s.handleCards)
		r.Get("/cards/unique", s.handleUniqueCards)
		r.Get("/cards/{id}", s.handleCard)
		r.Get("/cards/{id}/instructions", s.handleInstructions)
		r.Get("/metadata/options", s.handleFilterOptions)

		r.Get("/workouts/random", s.handleRandomWorkout)
		r.Get("/workouts/filtered", s.handleFilteredWorkout)

		r.Get("/me", s.handleMe)
		r.Post("/me", s.handleSignIn)
		r.Post("/logout", s.handleLogout)
		r.Get("/me/workouts", s.handleMyWorkouts)
		r.Get("/me/workouts/{id}", s.handleMyWorkout)
		r.Get("/me/progress", s.handleProgress)
		r.Get("/me/stats", s.handleStats)
		r.Get("/me/settings", s.handleGetSettings)
		r.Put("/me/settings", s.handleUpdateSettings)
		r.Get("/me/disclaimer", s.handleGetDisclaimer)
		r.Post("/me/disclaimer", s.handleAcceptDisclaimer)

		r.Get("/session", s.handleSession)
		r.Post("/session/start", s.handleSessionStart)
		r.Post("/session/flip", s.handleSessionFlip)
		r.Post("/session/save", s.handleSessionSave)
		r.Post("/session/reset", s.handleSessionReset)

		// Bulk import writes any user's records, so it needs the API key.
		if s.auth.APIKey != "" {
			r.Group(func(r chi.Router) {
				r.Use(APIKeyAuth(s.auth.APIKey))
				r.Post("/import", s.handleImport)
			})
		}
	})
}

// SetMCP mounts m as a streamable-HTTP MCP endpoint at /mcp. Tool calls
// run as the identity resolved for the HTTP request.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if info, ok := userInfoFromContext(r); ok {
				return shukumamcp.WithUserID(ctx, info.Login)
			}
			return ctx
		}),
	)

	s.router.Group(func(r chi.Router) {
		if s.auth.APIKey != "" {
			r.Use(APIKeyAuth(s.auth.APIKey))
		}
		r.Handle("/mcp", h)
	})
}

// SetAssets serves card images from assets. Unmatched routes are looked
// up as files, so the image paths on each card resolve directly.
func (s *Server) SetAssets(assets fs.FS) {
	fileServer := http.FileServerFS(assets)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || !fs.ValidPath(name) {
			http.NotFound(w, r)
			return
		}
		f, err := assets.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f.Close()
		fileServer.ServeHTTP(w, r)
	})
}
