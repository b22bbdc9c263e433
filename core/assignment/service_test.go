package assignment

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/trezcool/disciplan/core/plan"
)

type fakeRepo struct {
	assignments map[int]Assignment
	tasks       map[int]StudyTask
	pkCount     int
	taskPK      int

	pruneCutoff string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{assignments: make(map[int]Assignment), tasks: make(map[int]StudyTask)}
}

func (r *fakeRepo) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	r.pkCount++
	a.ID = r.pkCount
	r.assignments[a.ID] = a
	return a, nil
}

func (r *fakeRepo) QueryAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	var res []Assignment
	for _, a := range r.assignments {
		if a.UserID == userID {
			res = append(res, a)
		}
	}
	return res, nil
}

func (r *fakeRepo) GetAssignment(ctx context.Context, userID string, id int) (Assignment, error) {
	if a, ok := r.assignments[id]; ok && a.UserID == userID {
		return a, nil
	}
	return Assignment{}, ErrNotFound
}

func (r *fakeRepo) DeleteAssignment(ctx context.Context, userID string, id int) (int, error) {
	a, ok := r.assignments[id]
	if !ok || a.UserID != userID {
		return 0, ErrNotFound
	}
	delete(r.assignments, id)
	var count int
	for tid, task := range r.tasks {
		if task.AssignmentID == id {
			delete(r.tasks, tid)
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) CreateStudyTasks(ctx context.Context, assignmentID int, tasks []plan.Task) ([]StudyTask, error) {
	res := make([]StudyTask, 0, len(tasks))
	for _, t := range tasks {
		r.taskPK++
		task := StudyTask{
			ID:               r.taskPK,
			AssignmentID:     assignmentID,
			Description:      t.Description,
			ScheduledDate:    t.ScheduledDate,
			EstimatedMinutes: t.EstimatedMinutes,
		}
		r.tasks[task.ID] = task
		res = append(res, task)
	}
	return res, nil
}

func (r *fakeRepo) QueryPlan(ctx context.Context, userID string, assignmentID int) ([]StudyTask, error) {
	res := make([]StudyTask, 0)
	for _, task := range r.tasks {
		if task.AssignmentID == assignmentID {
			res = append(res, task)
		}
	}
	return res, nil
}

func (r *fakeRepo) QueryTimeline(ctx context.Context, userID string) ([]TimelineTask, error) {
	res := make([]TimelineTask, 0)
	for _, task := range r.tasks {
		a := r.assignments[task.AssignmentID]
		if a.UserID != userID {
			continue
		}
		res = append(res, TimelineTask{StudyTask: task, AssignmentTitle: a.Title, Complexity: a.Complexity})
	}
	return res, nil
}

func (r *fakeRepo) QueryHistory(ctx context.Context, userID string) ([]TimelineTask, error) {
	all, _ := r.QueryTimeline(ctx, userID)
	res := make([]TimelineTask, 0)
	for _, t := range all {
		if t.Completed {
			res = append(res, t)
		}
	}
	return res, nil
}

func (r *fakeRepo) PruneStaleTasks(ctx context.Context, userID string, cutoff string) error {
	r.pruneCutoff = cutoff
	for id, task := range r.tasks {
		if task.ScheduledDate < cutoff {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *fakeRepo) GetTask(ctx context.Context, userID string, id int) (StudyTask, error) {
	task, ok := r.tasks[id]
	if !ok {
		return StudyTask{}, ErrTaskNotFound
	}
	if a := r.assignments[task.AssignmentID]; a.UserID != userID {
		return StudyTask{}, ErrTaskNotFound
	}
	return task, nil
}

func (r *fakeRepo) UpdateTask(ctx context.Context, task StudyTask) (StudyTask, error) {
	if _, ok := r.tasks[task.ID]; !ok {
		return StudyTask{}, ErrTaskNotFound
	}
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeRepo) SetTaskCompleted(ctx context.Context, userID string, id int, completed bool) error {
	task, err := r.GetTask(ctx, userID, id)
	if err != nil {
		return err
	}
	task.Completed = completed
	r.tasks[id] = task
	return nil
}

func (r *fakeRepo) DeleteTask(ctx context.Context, userID string, id int) error {
	if _, err := r.GetTask(ctx, userID, id); err != nil {
		return err
	}
	delete(r.tasks, id)
	return nil
}

// recordingPlanner captures the request and replies with a fixed plan.
type recordingPlanner struct {
	req   plan.Request
	tasks []plan.Task
}

func (p *recordingPlanner) GeneratePlan(ctx context.Context, req plan.Request) []plan.Task {
	p.req = req
	return p.tasks
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	planner := &recordingPlanner{tasks: []plan.Task{
		{Description: "Read chapter 1", ScheduledDate: "2026-09-01", EstimatedMinutes: 45},
		{Description: "Read chapter 2", ScheduledDate: "2026-09-02", EstimatedMinutes: 45},
	}}
	svc := NewService(repo, planner, nopLogger{})

	na := NewAssignment{
		Title:       "Biology revision",
		Description: "Chapters 1-2",
		Complexity:  plan.ComplexityHard,
		DueDate:     "2026-09-10",
		TotalItems:  2,
	}
	a, tasks, err := svc.Create(context.Background(), "usr-1", na)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	wantReq := plan.Request{
		Title:       na.Title,
		Description: na.Description,
		Complexity:  na.Complexity,
		DueDate:     na.DueDate,
		TotalItems:  na.TotalItems,
	}
	if !reflect.DeepEqual(planner.req, wantReq) {
		t.Errorf("planner request = %+v, want %+v", planner.req, wantReq)
	}

	if a.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if a.TotalSubtasks != 2 {
		t.Errorf("TotalSubtasks = %d, want 2", a.TotalSubtasks)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.AssignmentID != a.ID {
			t.Errorf("task %d not attached to assignment %d", task.ID, a.ID)
		}
		if task.Completed {
			t.Errorf("task %d created completed", task.ID)
		}
	}
	if len(repo.tasks) != 2 {
		t.Errorf("repo has %d tasks, want 2", len(repo.tasks))
	}
}

func TestService_Timeline(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &recordingPlanner{}, nopLogger{})
	ctx := context.Background()

	a, _ := repo.CreateAssignment(ctx, Assignment{UserID: "usr-1", Title: "Math", Complexity: plan.ComplexityEasy})
	if _, err := repo.CreateStudyTasks(ctx, a.ID, []plan.Task{
		{Description: "old", ScheduledDate: "2020-01-01", EstimatedMinutes: 30},
		{Description: "upcoming", ScheduledDate: "2100-01-01", EstimatedMinutes: 30},
	}); err != nil {
		t.Fatalf("CreateStudyTasks() error = %v", err)
	}

	before := time.Now().UTC().Add(-staleTaskWindow).Format(plan.DateLayout)
	timeline, err := svc.Timeline(ctx, "usr-1")
	after := time.Now().UTC().Add(-staleTaskWindow).Format(plan.DateLayout)
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}

	if repo.pruneCutoff != before && repo.pruneCutoff != after {
		t.Errorf("prune cutoff = %q, want %q", repo.pruneCutoff, before)
	}
	if len(timeline) != 1 {
		t.Fatalf("got %d tasks, want 1", len(timeline))
	}
	if timeline[0].Description != "upcoming" {
		t.Errorf("Description = %q, want %q", timeline[0].Description, "upcoming")
	}
	if timeline[0].AssignmentTitle != "Math" {
		t.Errorf("AssignmentTitle = %q, want %q", timeline[0].AssignmentTitle, "Math")
	}
}

func TestService_UpdateTask(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &recordingPlanner{}, nopLogger{})
	ctx := context.Background()

	a, _ := repo.CreateAssignment(ctx, Assignment{UserID: "usr-1", Title: "Math"})
	tasks, err := repo.CreateStudyTasks(ctx, a.ID, []plan.Task{
		{Description: "original", ScheduledDate: "2026-09-01", EstimatedMinutes: 30},
	})
	if err != nil {
		t.Fatalf("CreateStudyTasks() error = %v", err)
	}
	task := tasks[0]

	t.Run("not found", func(t *testing.T) {
		if _, err := svc.UpdateTask(ctx, "usr-1", 1337, UpdateStudyTask{}); err != ErrTaskNotFound {
			t.Errorf("UpdateTask() error = %v, want %v", err, ErrTaskNotFound)
		}
	})

	t.Run("wrong owner", func(t *testing.T) {
		if _, err := svc.UpdateTask(ctx, "usr-2", task.ID, UpdateStudyTask{}); err != ErrTaskNotFound {
			t.Errorf("UpdateTask() error = %v, want %v", err, ErrTaskNotFound)
		}
	})

	t.Run("partial merge", func(t *testing.T) {
		desc := "rewritten"
		completed := true
		updated, err := svc.UpdateTask(ctx, "usr-1", task.ID, UpdateStudyTask{Description: &desc, Completed: &completed})
		if err != nil {
			t.Fatalf("UpdateTask() error = %v", err)
		}

		want := task
		want.Description = desc
		want.Completed = completed
		if !reflect.DeepEqual(updated, want) {
			t.Errorf("UpdateTask() = %+v, want %+v", updated, want)
		}
	})
}
