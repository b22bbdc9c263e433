package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/plan"
)

type Assignment struct {
	ID          int             `json:"id" db:"id"`
	UserID      string          `json:"-" db:"user_id"`
	Title       string          `json:"title" db:"title"`
	Description null.String     `json:"description" db:"description"`
	Complexity  plan.Complexity `json:"complexity" db:"complexity"`
	DueDate     string          `json:"due_date" db:"due_date"` // YYYY-MM-DD
	TotalItems  int             `json:"total_items" db:"total_items"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC

	// progress counters, populated on list queries only
	TotalSubtasks     int `json:"total_subtasks" db:"total_subtasks"`
	CompletedSubtasks int `json:"completed_subtasks" db:"completed_subtasks"`
}

// StudyTask is one generated step of an assignment's study plan. Tasks are
// created in a batch at assignment creation; each lives independently
// afterwards (toggled, edited, deleted without affecting siblings).
type StudyTask struct {
	ID               int    `json:"id" db:"id"`
	AssignmentID     int    `json:"assignment_id" db:"assignment_id"`
	Description      string `json:"task_description" db:"task_description"`
	ScheduledDate    string `json:"scheduled_date" db:"scheduled_date"` // YYYY-MM-DD
	EstimatedMinutes int    `json:"estimated_minutes" db:"estimated_minutes"`
	Completed        bool   `json:"completed" db:"completed"`
}

// TimelineTask is a StudyTask joined with its assignment's metadata for
// the timeline and history views.
type TimelineTask struct {
	StudyTask
	AssignmentTitle string          `json:"assignment_title" db:"assignment_title"`
	Complexity      plan.Complexity `json:"complexity" db:"complexity"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"omitempty,max=2000"`
	Complexity  plan.Complexity `json:"complexity" validate:"required,oneof=Easy Medium Hard"`
	DueDate     string          `json:"due_date" validate:"required,dateonly"`
	TotalItems  int             `json:"total_items" validate:"required,min=1,max=1000"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// UpdateStudyTask carries a partial task update; nil fields keep the
// stored value.
type UpdateStudyTask struct {
	Description      *string `json:"task_description" validate:"omitempty,min=1"`
	ScheduledDate    *string `json:"scheduled_date" validate:"omitempty,dateonly"`
	EstimatedMinutes *int    `json:"estimated_minutes" validate:"omitempty,min=1"`
	Completed        *bool   `json:"completed"`
}

func (ut *UpdateStudyTask) Validate(validate *validator.Validate) error {
	if ut.Description != nil {
		cleaned := core.CleanString(*ut.Description)
		ut.Description = &cleaned
	}
	return validate.Struct(ut)
}
