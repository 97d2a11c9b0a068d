package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/shukuma/internal/compose"
	"github.com/claude/shukuma/internal/instructions"
	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/pkg/validator"
	"github.com/mark3labs/mcp-go/mcp"
)

// exerciseSummary is one exercise of the deck with its lookups resolved.
type exerciseSummary struct {
	Name       string          `json:"name"`
	Category   models.Category `json:"category"`
	Variations int             `json:"variations"`
	CardID     string          `json:"card_id"`
	Metadata   models.Metadata `json:"metadata"`
}

// workoutResult is a composed workout as returned to MCP callers.
type workoutResult struct {
	Cards         []workoutCard `json:"cards"`
	ExerciseCount int           `json:"exercise_count"`
}

type workoutCard struct {
	Position     int             `json:"position"`
	CardID       string          `json:"card_id"`
	Name         string          `json:"name"`
	Type         models.CardType `json:"type"`
	Difficulty   string          `json:"difficulty,omitempty"`
	Duration     string          `json:"duration,omitempty"`
	Instructions []string        `json:"instructions,omitempty"`
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the distinct exercises in the deck with their category, number of card variations, and difficulty/type/duration metadata. Optional filters narrow the list."),
	mcp.WithString("category", mcp.Description("Deck category"), mcp.Enum("cardio", "core", "lower", "upper")),
	mcp.WithString("difficulty", mcp.Description("Difficulty filter"), mcp.Enum("All", "Easy", "Medium", "Hard")),
	mcp.WithString("type", mcp.Description("Exercise type filter"), mcp.Enum("All", "Cardio", "Core", "Lower Body", "Upper Body")),
	mcp.WithString("duration", mcp.Description("Duration filter"), mcp.Enum("All", "Short", "Medium", "Long")),
)

var toolGetInstructions = mcp.NewTool("get_instructions",
	mcp.WithDescription("Step-by-step instructions for an exercise. Accepts a card id (e.g. 'upper-Push Up 3.jpg') or an exercise name (e.g. 'Push Up')."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Card id or exercise name")),
)

var toolComposeRandom = mcp.NewTool("compose_random_workout",
	mcp.WithDescription("Compose a random workout of distinct exercise cards in uniformly random order, with a water break after every few cards unless the user turned them off."),
	mcp.WithNumber("count", mcp.Description("Number of exercise cards. Defaults to 10."), mcp.Min(1), mcp.Max(30)),
	mcp.WithBoolean("include_instructions", mcp.Description("Attach instructions to each exercise card. Defaults to false.")),
)

var toolComposeFiltered = mcp.NewTool("compose_filtered_workout",
	mcp.WithDescription("Compose a workout from every exercise matching the metadata filters, shuffled, with water breaks. Omitted filters match everything."),
	mcp.WithString("difficulty", mcp.Description("Difficulty filter"), mcp.Enum("All", "Easy", "Medium", "Hard")),
	mcp.WithString("type", mcp.Description("Exercise type filter"), mcp.Enum("All", "Cardio", "Core", "Lower Body", "Upper Body")),
	mcp.WithString("duration", mcp.Description("Duration filter"), mcp.Enum("All", "Short", "Medium", "Long")),
	mcp.WithBoolean("include_instructions", mcp.Description("Attach instructions to each exercise card. Defaults to false.")),
)

var toolGetUserStats = mcp.NewTool("get_user_stats",
	mcp.WithDescription("The signed-in user's totals, weekly streak, monthly goal progress, exercises completed per category, and five most recent workouts."),
)

var toolGetUserProgress = mcp.NewTool("get_user_progress",
	mcp.WithDescription("The signed-in user's running progress aggregate: total workouts, exercises and seconds trained, streak and monthly goal."),
)

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("The signed-in user's saved workouts, most recent first, with every completed exercise."),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts to return. Defaults to 10."), mcp.Min(1), mcp.Max(100)),
)

// --- Tool handlers ---

func (h *handlers) listExercises(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := metadata.Filter{
		Difficulty: req.GetString("difficulty", ""),
		Type:       req.GetString("type", ""),
		Duration:   req.GetString("duration", ""),
	}
	if err := validator.ValidateStruct(f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := models.Category(req.GetString("category", ""))

	out := []exerciseSummary{}
	for _, u := range h.catalog.Unique() {
		if !u.IsExercise() || !f.Match(u.Card) {
			continue
		}
		if category != "" && u.Category != category {
			continue
		}
		out = append(out, exerciseSummary{
			Name:       u.ExerciseName,
			Category:   u.Category,
			Variations: u.Variations,
			CardID:     u.ID,
			Metadata:   metadata.Lookup(u.ExerciseName),
		})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getInstructions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	card, ok := h.catalog.Find(query)
	if !ok {
		for _, c := range h.catalog {
			if strings.EqualFold(c.ExerciseName, strings.TrimSpace(query)) {
				card, ok = c, true
				break
			}
		}
	}

	resp := map[string]any{"exercise": query}
	if ok {
		resp["exercise"] = card.ExerciseName
		resp["card_id"] = card.ID
		resp["instructions"] = instructions.ForCard(card)
		if card.IsExercise() {
			resp["metadata"] = metadata.Lookup(card.ExerciseName)
		}
	} else {
		resp["instructions"] = instructions.For(query, models.CardExercise)
	}

	result, err := mcp.NewToolResultJSON(resp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) composeRandom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := req.GetInt("count", h.opts.DefaultCount)
	if count < 1 || count > h.opts.MaxCount {
		return mcp.NewToolResultError(fmt.Sprintf("count must be between 1 and %d", h.opts.MaxCount)), nil
	}

	cards := h.withComposer(ctx, func(c *compose.Composer) []models.Card {
		return c.Random(h.catalog, count)
	})

	result, err := mcp.NewToolResultJSON(newWorkoutResult(cards, req.GetBool("include_instructions", false)))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) composeFiltered(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := metadata.Filter{
		Difficulty: req.GetString("difficulty", ""),
		Type:       req.GetString("type", ""),
		Duration:   req.GetString("duration", ""),
	}
	if err := validator.ValidateStruct(f); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cards := h.withComposer(ctx, func(c *compose.Composer) []models.Card {
		return c.Filtered(h.catalog, f)
	})
	if len(cards) == 0 {
		return mcp.NewToolResultText("No exercises match these filters."), nil
	}

	result, err := mcp.NewToolResultJSON(newWorkoutResult(cards, req.GetBool("include_instructions", false)))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func newWorkoutResult(cards []models.Card, withInstructions bool) workoutResult {
	out := workoutResult{
		Cards:         make([]workoutCard, 0, len(cards)),
		ExerciseCount: compose.ExerciseCount(cards),
	}
	for i, c := range cards {
		wc := workoutCard{Position: i + 1, CardID: c.ID, Name: c.ExerciseName, Type: c.Type}
		if c.IsExercise() {
			m := metadata.Lookup(c.ExerciseName)
			wc.Difficulty = m.Difficulty
			wc.Duration = m.Duration
		}
		if withInstructions {
			wc.Instructions = instructions.ForCard(c)
		}
		out.Cards = append(out.Cards, wc)
	}
	return out
}

func (h *handlers) getUserStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return mcp.NewToolResultError("no signed-in user"), nil
	}

	stats, err := h.ds.GetUserStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_user_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getUserProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return mcp.NewToolResultError("no signed-in user"), nil
	}

	progress, err := h.ds.GetUserProgress(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_user_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progress)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == "" {
		return mcp.NewToolResultError("no signed-in user"), nil
	}

	workouts, err := h.ds.GetUserWorkouts(ctx, uid, req.GetInt("limit", 10))
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.WorkoutRecord{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
