package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/plan"
)

// staleTaskWindow is how far in the past a task may be scheduled before
// the timeline cleanup drops it.
const staleTaskWindow = 10 * 24 * time.Hour

var (
	// errors
	ErrNotFound     = errors.New("assignment not found")
	ErrTaskNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments returns the user's assignments with progress
		// counters, newest first.
		QueryAssignments(ctx context.Context, userID string) ([]Assignment, error)
		GetAssignment(ctx context.Context, userID string, id int) (Assignment, error)
		// DeleteAssignment removes the assignment and (via cascade) its
		// tasks, reporting how many tasks went with it.
		DeleteAssignment(ctx context.Context, userID string, id int) (int, error)

		CreateStudyTasks(ctx context.Context, assignmentID int, tasks []plan.Task) ([]StudyTask, error)
		// QueryPlan returns the assignment's tasks by scheduled date, owner-scoped.
		QueryPlan(ctx context.Context, userID string, assignmentID int) ([]StudyTask, error)
		QueryTimeline(ctx context.Context, userID string) ([]TimelineTask, error)
		QueryHistory(ctx context.Context, userID string) ([]TimelineTask, error)
		// PruneStaleTasks drops the user's tasks scheduled before the cutoff date.
		PruneStaleTasks(ctx context.Context, userID string, cutoff string) error

		GetTask(ctx context.Context, userID string, id int) (StudyTask, error)
		UpdateTask(ctx context.Context, task StudyTask) (StudyTask, error)
		SetTaskCompleted(ctx context.Context, userID string, id int, completed bool) error
		DeleteTask(ctx context.Context, userID string, id int) error
	}

	// PlanGenerator produces a study plan for a new assignment. It is
	// total: it always returns a plan, falling back internally when the
	// AI integration fails.
	PlanGenerator interface {
		GeneratePlan(ctx context.Context, req plan.Request) []plan.Task
	}

	Service struct {
		repo    Repository
		planner PlanGenerator
		logger  core.Logger
	}
)

func NewService(repo Repository, planner PlanGenerator, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		planner: planner,
		logger:  logger,
	}
}

// Create persists the assignment, generates its study plan and persists
// the resulting tasks. Plan generation itself cannot fail; only storage
// errors surface.
func (svc *Service) Create(ctx context.Context, userID string, na NewAssignment) (Assignment, []StudyTask, error) {
	a := Assignment{
		UserID:      userID,
		Title:       na.Title,
		Description: null.NewString(na.Description, na.Description != ""),
		Complexity:  na.Complexity,
		DueDate:     na.DueDate,
		TotalItems:  na.TotalItems,
		CreatedAt:   time.Now().UTC(),
	}
	a, err := svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, nil, errors.Wrap(err, "creating assignment")
	}

	tasks := svc.planner.GeneratePlan(ctx, plan.Request{
		Title:       na.Title,
		Description: na.Description,
		Complexity:  na.Complexity,
		DueDate:     na.DueDate,
		TotalItems:  na.TotalItems,
	})

	studyTasks, err := svc.repo.CreateStudyTasks(ctx, a.ID, tasks)
	if err != nil {
		// the assignment row stays; the plan can be regenerated later
		return a, nil, errors.Wrap(err, "saving study tasks")
	}
	a.TotalSubtasks = len(studyTasks)
	return a, studyTasks, nil
}

func (svc *Service) Query(ctx context.Context, userID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, userID)
}

func (svc *Service) Get(ctx context.Context, userID string, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, userID, id)
}

func (svc *Service) Delete(ctx context.Context, userID string, id int) (int, error) {
	return svc.repo.DeleteAssignment(ctx, userID, id)
}

func (svc *Service) Plan(ctx context.Context, userID string, assignmentID int) ([]StudyTask, error) {
	return svc.repo.QueryPlan(ctx, userID, assignmentID)
}

// Timeline returns the user's upcoming tasks with assignment metadata,
// dropping tasks that went stale more than staleTaskWindow ago first.
func (svc *Service) Timeline(ctx context.Context, userID string) ([]TimelineTask, error) {
	cutoff := time.Now().UTC().Add(-staleTaskWindow).Format(plan.DateLayout)
	if err := svc.repo.PruneStaleTasks(ctx, userID, cutoff); err != nil {
		return nil, errors.Wrap(err, "pruning stale tasks")
	}
	return svc.repo.QueryTimeline(ctx, userID)
}

func (svc *Service) History(ctx context.Context, userID string) ([]TimelineTask, error) {
	return svc.repo.QueryHistory(ctx, userID)
}

// UpdateTask merges the provided fields into the stored task. The task
// must belong to one of the user's assignments.
func (svc *Service) UpdateTask(ctx context.Context, userID string, id int, ut UpdateStudyTask) (StudyTask, error) {
	task, err := svc.repo.GetTask(ctx, userID, id)
	if err != nil {
		return StudyTask{}, err
	}

	if ut.Description != nil {
		task.Description = *ut.Description
	}
	if ut.ScheduledDate != nil {
		task.ScheduledDate = *ut.ScheduledDate
	}
	if ut.EstimatedMinutes != nil {
		task.EstimatedMinutes = *ut.EstimatedMinutes
	}
	if ut.Completed != nil {
		task.Completed = *ut.Completed
	}
	return svc.repo.UpdateTask(ctx, task)
}

func (svc *Service) ToggleTask(ctx context.Context, userID string, id int, completed bool) error {
	return svc.repo.SetTaskCompleted(ctx, userID, id, completed)
}

func (svc *Service) DeleteTask(ctx context.Context, userID string, id int) error {
	return svc.repo.DeleteTask(ctx, userID, id)
}
