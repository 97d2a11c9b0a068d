// Package instructions produces short how-to steps for a card.
package instructions

import (
	"strings"

	"github.com/claude/shukuma/internal/models"
)

var waterBreak = []string{
	"Take a 30–60 second water break.",
	"Stay hydrated!",
	"Catch your breath and prepare for the next exercise.",
}

var disclaimer = []string{
	"Please exercise responsibly and consult a professional if needed.",
	"Listen to your body and take breaks when necessary.",
	"Ensure you have proper space and equipment before starting.",
}

var generic = []string{
	"Stand in your starting position",
	"Perform the movement shown in the image",
	"Maintain controlled motion",
	"Repeat for 30 to 45 seconds",
}

type rule struct {
	keywords []string
	steps    []string
}

// rules are checked in order and the first match wins, so the more
// specific "jumping jack" must stay ahead of "jump".
var rules = []rule{
	{
		keywords: []string{"push-up", "pushup", "push up"},
		steps: []string{
			"Start in a plank position with hands shoulder-width apart",
			"Lower your body until chest nearly touches the floor",
			"Push back up to starting position",
			"Keep your core engaged throughout",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"squat"},
		steps: []string{
			"Stand with feet shoulder-width apart",
			"Lower your body by bending your knees",
			"Keep your chest up and back straight",
			"Return to starting position",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"lunge"},
		steps: []string{
			"Stand with feet hip-width apart",
			"Step forward or backward as shown in the image",
			"Lower your body until both knees are bent at 90 degrees",
			"Return to starting position",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"plank"},
		steps: []string{
			"Get into plank position with forearms on the ground",
			"Keep your body in a straight line",
			"Engage your core muscles",
			"Hold the position or perform the movement shown",
			"Maintain for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"sit-up", "situp", "sit up"},
		steps: []string{
			"Lie on your back with knees bent",
			"Place hands behind your head or across chest",
			"Engage your core and lift your upper body",
			"Lower back down with control",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"v-up"},
		steps: []string{
			"Lie flat on your back with arms extended overhead",
			"Simultaneously lift your legs and upper body",
			"Reach your hands toward your toes forming a 'V'",
			"Lower back down with control",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"burpee"},
		steps: []string{
			"Start in a standing position",
			"Drop into a squat and place hands on the ground",
			"Jump feet back into a plank position",
			"Jump feet back to squat position and stand up",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"jumping jack"},
		steps: []string{
			"Start with feet together and arms at your sides",
			"Jump while spreading your legs and raising arms overhead",
			"Jump back to starting position",
			"Maintain a steady rhythm",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"jump"},
		steps: []string{
			"Stand in your starting position",
			"Perform the jumping movement shown in the image",
			"Land softly on the balls of your feet",
			"Maintain control throughout",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"crab"},
		steps: []string{
			"Sit on the ground with hands behind you",
			"Lift your hips off the ground into a crab position",
			"Perform the movement shown in the image",
			"Keep your core engaged",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"pike"},
		steps: []string{
			"Start in a downward dog or pike position",
			"Keep your hips elevated",
			"Perform the movement shown in the image",
			"Maintain control throughout",
			"Repeat for 30 to 45 seconds",
		},
	},
	{
		keywords: []string{"toe touch"},
		steps: []string{
			"Start in your starting position",
			"Reach toward your toes as shown in the image",
			"Maintain controlled motion",
			"Keep your core engaged",
			"Repeat for 30 to 45 seconds",
		},
	},
}

// For returns the steps for a card. Water-break and disclaimer cards get
// fixed text regardless of name; exercise names are matched by keyword,
// falling back to generic steps. The returned slice is the caller's to keep.
func For(exerciseName string, cardType models.CardType) []string {
	switch cardType {
	case models.CardWaterBreak:
		return clone(waterBreak)
	case models.CardDisclaimer:
		return clone(disclaimer)
	}

	lower := strings.ToLower(exerciseName)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return clone(r.steps)
			}
		}
	}
	return clone(generic)
}

// ForCard is For applied to a card's own name and type.
func ForCard(c models.Card) []string {
	return For(c.ExerciseName, c.Type)
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
