package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core"
)

// DateLayout is the wire format for all scheduled/due dates.
const DateLayout = "2006-01-02"

type (
	// Task is one step of a generated study plan. Field names match both
	// the AI JSON contract and the API payloads.
	Task struct {
		Description      string `json:"task_description"`
		ScheduledDate    string `json:"scheduled_date"` // YYYY-MM-DD
		EstimatedMinutes int    `json:"estimated_minutes"`
	}

	// Request carries the assignment attributes a plan is generated from.
	Request struct {
		Title       string
		Description string
		Complexity  Complexity
		DueDate     string // YYYY-MM-DD
		TotalItems  int
	}

	// TextGenerator is an external text-generation capability (an LLM).
	// It is treated as untrusted and unreliable; one attempt per plan,
	// no retries.
	TextGenerator interface {
		GenerateText(ctx context.Context, prompt string) (string, error)
	}

	// Generator produces study plans, either via an external model or the
	// deterministic template path. GeneratePlan is total: it always
	// returns a plan and never fails.
	Generator struct {
		ai     TextGenerator // nil -> deterministic path only
		rand   *rand.Rand
		now    func() time.Time
		logger core.Logger
	}

	Option func(*Generator)
)

// WithTextGenerator enables the AI-backed strategy.
func WithTextGenerator(ai TextGenerator) Option {
	return func(g *Generator) { g.ai = ai }
}

// WithRand substitutes the duration-sampling random source (tests).
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rand = r }
}

// WithNowFunc substitutes the clock (tests).
func WithNowFunc(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(logger core.Logger, opts ...Option) *Generator {
	g := &Generator{
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EstimatedDuration picks one candidate duration for (subject, complexity)
// uniformly at random. Estimates vary across calls with identical inputs;
// only set membership is stable.
func (g *Generator) EstimatedDuration(subject Subject, complexity Complexity) int {
	options := Durations(subject, complexity)
	return options[g.rand.Intn(len(options))]
}

// GeneratePlan returns the ordered study plan for req. The AI-backed
// strategy is tried first when configured; every failure mode (network,
// non-JSON response, invalid entries) is absorbed and routed to the
// deterministic fallback. An assignment is never left without a plan
// because the AI integration failed.
func (g *Generator) GeneratePlan(ctx context.Context, req Request) []Task {
	if g.ai != nil {
		tasks, err := g.aiPlan(ctx, req)
		if err == nil {
			return tasks
		}
		g.logger.Warn("AI plan generation failed; falling back to templates", err)
	}
	return g.fallbackPlan(req)
}

// aiPlan runs the AI-backed strategy: one model call, bracket-extraction,
// parse, validate.
func (g *Generator) aiPlan(ctx context.Context, req Request) ([]Task, error) {
	text, err := g.ai.GenerateText(ctx, g.prompt(req))
	if err != nil {
		return nil, errors.Wrap(err, "calling text generator")
	}

	// Defensive against the model wrapping JSON in prose or code fences:
	// keep only the first '[' through the last ']'.
	raw, ok := extractJSONArray(text)
	if !ok {
		return nil, errors.New("response contains no JSON array")
	}

	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, errors.Wrap(err, "parsing response JSON")
	}
	if len(tasks) == 0 {
		return nil, errors.New("response plan is empty")
	}

	for i := range tasks {
		tasks[i].Description = core.CleanString(tasks[i].Description)
		if tasks[i].Description == "" {
			return nil, errors.Errorf("task %d: empty description", i)
		}
		if _, err := time.Parse(DateLayout, tasks[i].ScheduledDate); err != nil {
			return nil, errors.Errorf("task %d: bad scheduled_date %q", i, tasks[i].ScheduledDate)
		}
		if tasks[i].EstimatedMinutes <= 0 {
			return nil, errors.Errorf("task %d: bad estimated_minutes %d", i, tasks[i].EstimatedMinutes)
		}
	}
	return tasks, nil
}

// fallbackPlan runs the deterministic strategy: subject classification,
// template lookup, even date distribution, randomized durations.
// The plan length comes from the template, not req.TotalItems; the
// workload count is informational only on this path.
func (g *Generator) fallbackPlan(req Request) []Task {
	now := g.now()

	due, err := time.Parse(DateLayout, req.DueDate)
	if err != nil {
		due = now.AddDate(0, 0, 7)
	}
	// guarantee at least a one-day span for same-day or past due dates
	if min := now.Add(24 * time.Hour); due.Before(min) {
		due = min
	}

	subject := DetectSubject(req.Title, req.Description)
	descriptions := Tasks(subject, req.Complexity)
	dates := DistributeDates(now, due, len(descriptions))

	tasks := make([]Task, len(descriptions))
	for i, desc := range descriptions {
		tasks[i] = Task{
			Description:      desc,
			ScheduledDate:    dates[i].Format(DateLayout),
			EstimatedMinutes: g.EstimatedDuration(subject, req.Complexity),
		}
	}
	return tasks
}

func (g *Generator) prompt(req Request) string {
	return fmt.Sprintf(`You are an expert academic planner. Create a daily study schedule.

CONTEXT:
- Assignment: %q
- Description: %q
- Complexity: %s (1-5)
- Total Workload: %d items (problems, pages, or sections)
- Start Date: %s
- Due Date: %s

INSTRUCTIONS:
1. Calculate the number of days available between today and the due date.
2. Break the workload down intelligently.
   - If it's a "Hard" math assignment, schedule fewer problems per day.
   - If it's a writing assignment, split it into Outline -> Draft -> Review.
   - Ensure the last day is reserved for "Final Review".
3. Return ONLY a valid JSON array. Do not include markdown formatting or backticks.

JSON FORMAT:
[
  {
    "task_description": "Specific action item (e.g. 'Solve problems 1-3')",
    "scheduled_date": "YYYY-MM-DD",
    "estimated_minutes": 45
  }
]`,
		req.Title, req.Description, req.Complexity, req.TotalItems,
		g.now().Format(DateLayout), req.DueDate,
	)
}

// extractJSONArray isolates the substring between the first '[' and the
// last ']' in text.
func extractJSONArray(text string) (string, bool) {
	first := strings.Index(text, "[")
	last := strings.LastIndex(text, "]")
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return text[first : last+1], true
}
