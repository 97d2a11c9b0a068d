package mcp

import (
	"context"

	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/internal/storage"
)

// DataSource abstracts the per-user data behind the MCP tools. Both
// *storage.Store (local) and HTTPClient (remote via REST API) satisfy it.
// Catalog, composition and instructions are computed in-process either way.
type DataSource interface {
	GetUserWorkouts(ctx context.Context, uid string, limit int) ([]models.WorkoutRecord, error)
	GetUserProgress(ctx context.Context, uid string) (models.UserProgress, error)
	GetUserStats(ctx context.Context, uid string) (*models.Stats, error)
	GetUserSettings(ctx context.Context, uid string) (models.Settings, error)
}

// Compile-time check: *storage.Store satisfies DataSource.
var _ DataSource = (*storage.Store)(nil)
