package models

// WorkoutKind records how the saved workout was put together.
type WorkoutKind string

const (
	WorkoutManual WorkoutKind = "manual"
	WorkoutRandom WorkoutKind = "random"
)

// ExerciseEntry is one flipped exercise card inside a saved workout.
type ExerciseEntry struct {
	CardID     string    `json:"cardId"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Duration   int       `json:"duration"`
	FlippedAt  Timestamp `json:"flippedAt"`
}

// WorkoutRecord is a saved workout. It is written once and never changed.
type WorkoutRecord struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	Exercises          []ExerciseEntry `json:"exercises"`
	TotalDuration      int             `json:"totalDuration"`
	CompletedExercises int             `json:"completedExercises"`
	TotalExercises     int             `json:"totalExercises"`
	CompletedAt        Timestamp       `json:"completedAt"`
	Type               WorkoutKind     `json:"type"`
}

// ProgressDelta is added onto a user's progress aggregate after a save.
type ProgressDelta struct {
	WorkoutsCompleted  int `json:"workoutsCompleted"`
	ExercisesCompleted int `json:"exercisesCompleted"`
	Duration           int `json:"duration"`
}

// UserProgress is the per-user running aggregate.
type UserProgress struct {
	TotalWorkouts   int        `json:"totalWorkouts"`
	TotalExercises  int        `json:"totalExercises"`
	TotalDuration   int        `json:"totalDuration"`
	WeeklyStreak    int        `json:"weeklyStreak"`
	MonthlyGoal     int        `json:"monthlyGoal"`
	MonthlyProgress int        `json:"monthlyProgress"`
	LastWorkoutDate *Timestamp `json:"lastWorkoutDate,omitempty"`
	UpdatedAt       *Timestamp `json:"updatedAt,omitempty"`
}

// Stats merges the progress aggregate with a breakdown recomputed from
// recent workouts.
type Stats struct {
	TotalWorkouts       int             `json:"totalWorkouts"`
	TotalExercises      int             `json:"totalExercises"`
	TotalDuration       int             `json:"totalDuration"`
	CategoriesCompleted map[string]int  `json:"categoriesCompleted"`
	WeeklyStreak        int             `json:"weeklyStreak"`
	MonthlyGoal         int             `json:"monthlyGoal"`
	MonthlyProgress     int             `json:"monthlyProgress"`
	RecentWorkouts      []WorkoutRecord `json:"recentWorkouts"`
}
