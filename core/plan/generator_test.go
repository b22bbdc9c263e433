package plan

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type stubTextGenerator struct {
	text string
	err  error
}

func (s stubTextGenerator) GenerateText(context.Context, string) (string, error) {
	return s.text, s.err
}

var testNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func newTestGenerator(opts ...Option) *Generator {
	base := []Option{
		WithRand(rand.New(rand.NewSource(42))),
		WithNowFunc(func() time.Time { return testNow }),
	}
	return NewGenerator(nopLogger{}, append(base, opts...)...)
}

func assertFallbackPlan(t *testing.T, tasks []Task, subject Subject, cx Complexity) {
	t.Helper()

	want := Tasks(subject, cx)
	if len(tasks) != len(want) {
		t.Fatalf("plan len = %d, want template len %d", len(tasks), len(want))
	}

	durations := make(map[int]bool)
	for _, d := range Durations(subject, cx) {
		durations[d] = true
	}

	prev := ""
	for i, task := range tasks {
		if task.Description != want[i] {
			t.Errorf("tasks[%d].Description = %q, want %q", i, task.Description, want[i])
		}
		d, err := time.Parse(DateLayout, task.ScheduledDate)
		if err != nil {
			t.Fatalf("tasks[%d].ScheduledDate = %q: %v", i, task.ScheduledDate, err)
		}
		if d.Before(testNow.Truncate(24 * time.Hour)) {
			t.Errorf("tasks[%d] scheduled before today: %s", i, task.ScheduledDate)
		}
		if prev != "" && task.ScheduledDate < prev {
			t.Errorf("tasks[%d] date %s precedes tasks[%d] date %s", i, task.ScheduledDate, i-1, prev)
		}
		prev = task.ScheduledDate
		if !durations[task.EstimatedMinutes] {
			t.Errorf("tasks[%d].EstimatedMinutes = %d, not a candidate duration", i, task.EstimatedMinutes)
		}
	}
}

func TestGeneratePlan_fallbackMathMedium(t *testing.T) {
	g := newTestGenerator() // no AI credential configured

	tasks := g.GeneratePlan(context.Background(), Request{
		Title:      "Calculus Problem Set",
		Complexity: ComplexityMedium,
		DueDate:    testNow.AddDate(0, 0, 10).Format(DateLayout),
		TotalItems: 5, // informational only: plan length comes from the template
	})

	if len(tasks) != 7 {
		t.Fatalf("plan len = %d, want the mathematics/Medium template len 7", len(tasks))
	}
	assertFallbackPlan(t, tasks, SubjectMathematics, ComplexityMedium)
}

func TestGeneratePlan_dueToday(t *testing.T) {
	g := newTestGenerator()

	tasks := g.GeneratePlan(context.Background(), Request{
		Title:      "Generic chores",
		Complexity: ComplexityEasy,
		DueDate:    testNow.Format(DateLayout), // clamped forward to now+24h
		TotalItems: 3,
	})

	if len(tasks) != 4 {
		t.Fatalf("plan len = %d, want 4", len(tasks))
	}
	today := testNow.Format(DateLayout)
	for i, task := range tasks {
		if task.ScheduledDate != today {
			t.Errorf("tasks[%d].ScheduledDate = %s, want all on %s", i, task.ScheduledDate, today)
		}
	}
}

func TestGeneratePlan_unparseableDueDate(t *testing.T) {
	g := newTestGenerator()

	// silently normalized to a 7-day plan, never an error
	tasks := g.GeneratePlan(context.Background(), Request{
		Title:      "Physics worksheet",
		Complexity: ComplexityMedium,
		DueDate:    "next tuesday",
	})
	assertFallbackPlan(t, tasks, SubjectPhysics, ComplexityMedium)
}

func TestGeneratePlan_aiResponseWrappedInProse(t *testing.T) {
	g := newTestGenerator(WithTextGenerator(stubTextGenerator{
		text: "Here is your plan:\n```json\n[{\"task_description\":\"X\",\"scheduled_date\":\"2025-01-02\",\"estimated_minutes\":30}]\n```",
	}))

	tasks := g.GeneratePlan(context.Background(), Request{
		Title:      "Essay on Hamlet",
		Complexity: ComplexityEasy,
		DueDate:    testNow.AddDate(0, 0, 5).Format(DateLayout),
	})

	if len(tasks) != 1 {
		t.Fatalf("plan len = %d, want 1", len(tasks))
	}
	want := Task{Description: "X", ScheduledDate: "2025-01-02", EstimatedMinutes: 30}
	if tasks[0] != want {
		t.Errorf("tasks[0] = %+v, want %+v", tasks[0], want)
	}
}

func TestGeneratePlan_aiFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		stub stubTextGenerator
	}{
		{name: "network error", stub: stubTextGenerator{err: context.DeadlineExceeded}},
		{name: "no brackets", stub: stubTextGenerator{text: "I cannot help with that."}},
		{name: "unparseable json", stub: stubTextGenerator{text: "[{not json}]"}},
		{name: "empty plan", stub: stubTextGenerator{text: "[]"}},
		{name: "empty description", stub: stubTextGenerator{text: `[{"task_description":"  ","scheduled_date":"2025-01-02","estimated_minutes":30}]`}},
		{name: "bad date", stub: stubTextGenerator{text: `[{"task_description":"X","scheduled_date":"tomorrow","estimated_minutes":30}]`}},
		{name: "bad minutes", stub: stubTextGenerator{text: `[{"task_description":"X","scheduled_date":"2025-01-02","estimated_minutes":0}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(WithTextGenerator(tt.stub))

			// same result shape as the deterministic path; no error escapes
			tasks := g.GeneratePlan(context.Background(), Request{
				Title:      "Calculus Problem Set",
				Complexity: ComplexityMedium,
				DueDate:    testNow.AddDate(0, 0, 10).Format(DateLayout),
			})
			assertFallbackPlan(t, tasks, SubjectMathematics, ComplexityMedium)
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{name: "bare array", text: `[1,2]`, want: `[1,2]`, ok: true},
		{name: "fenced", text: "```json\n[1]\n```", want: `[1]`, ok: true},
		{name: "prose around", text: "Sure! [1] Hope this helps.", want: `[1]`, ok: true},
		{name: "no open bracket", text: "1,2]"},
		{name: "no close bracket", text: "[1,2"},
		{name: "reversed", text: "] nope ["},
		{name: "empty", text: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONArray(tt.text)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSONArray(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}
