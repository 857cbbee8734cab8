// Package suggest produces canned task suggestions from keyword templates.
// There is no inference: the first known keyword found in the input picks
// a template set, and keywords in the templates are replaced by the input.
package suggest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"taskpad/internal/service"
)

// DefaultTopic is the template set used when no keyword matches.
const DefaultTopic = "default"

type template struct {
	title       string
	description string
}

// topics lists the keywords in match order.
var topics = []string{"programming", "learning", "fitness", "work"}

var templates = map[string][]template{
	"programming": {
		{"Complete a coding tutorial", "Follow a step-by-step programming tutorial to learn new concepts"},
		{"Practice coding problems", "Solve algorithmic challenges on platforms like LeetCode or HackerRank"},
		{"Build a personal project", "Create a small application to apply your programming skills"},
	},
	"learning": {
		{"Create a study schedule", "Plan your learning sessions with specific goals and timelines"},
		{"Take notes and summarize", "Write down key concepts and create summaries for better retention"},
		{"Practice with exercises", "Apply what you learned through practical exercises and quizzes"},
	},
	"fitness": {
		{"Plan weekly workout routine", "Create a balanced exercise schedule including cardio and strength training"},
		{"Track daily steps", "Monitor your daily walking activity and aim for 10,000 steps"},
		{"Prepare healthy meals", "Plan and prep nutritious meals to support your fitness goals"},
	},
	"work": {
		{"Prioritize daily tasks", "List and rank your work tasks by importance and urgency"},
		{"Schedule focused work blocks", "Allocate specific time periods for deep, concentrated work"},
		{"Review and plan ahead", "Reflect on completed work and plan for upcoming projects"},
	},
	DefaultTopic: {
		{"Break down into smaller steps", "Divide your goal into manageable, actionable tasks"},
		{"Set a timeline", "Create deadlines and milestones to track your progress"},
		{"Find resources and help", "Identify tools, guides, or people that can assist you"},
	},
}

var keywordPattern = regexp.MustCompile(`(?i)programming|learning|fitness|work`)

// Generator builds suggestions. The zero value uses time.Now.
type Generator struct {
	Now func() time.Time
}

// Topic returns the template set selected for input.
func Topic(input string) string {
	lower := strings.ToLower(input)
	for _, t := range topics {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return DefaultTopic
}

// Generate returns the suggestions for input. Input is trimmed before use.
func (g Generator) Generate(input string) []service.TodoSuggestion {
	input = strings.TrimSpace(input)
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	stamp := now().UnixMilli()

	set := templates[Topic(input)]
	out := make([]service.TodoSuggestion, len(set))
	for i, tpl := range set {
		out[i] = service.TodoSuggestion{
			ID:          fmt.Sprintf("%d-%d", stamp, i),
			Title:       substitute(tpl.title, input),
			Description: substitute(tpl.description, input),
		}
	}
	return out
}

func substitute(s, input string) string {
	return keywordPattern.ReplaceAllLiteralString(s, input)
}
