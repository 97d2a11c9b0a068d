package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/shukuma/internal/metadata"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) catalogResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.catalog)
}

func (h *handlers) filterOptions(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, metadata.FilterOptions())
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return nil, fmt.Errorf("no signed-in user")
	}

	workouts, err := h.ds.GetUserWorkouts(ctx, uid, 10)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, workouts)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
