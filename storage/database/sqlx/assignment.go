package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/assignment"
	"github.com/trezcool/disciplan/core/plan"
)

// both sides of the executor seam
var (
	_ core.DBExecutor = (*sqlx.DB)(nil)
	_ core.DBExecutor = (*sqlx.Tx)(nil)
)

// assignmentColumns casts the DATE columns to text so they scan straight
// into the YYYY-MM-DD string fields.
const (
	assignmentColumns = `a.id, a.user_id, a.title, a.description, a.complexity,
		a.due_date::text AS due_date, a.total_items, a.created_at`

	taskColumns = `t.id, t.assignment_id, t.task_description,
		t.scheduled_date::text AS scheduled_date, t.estimated_minutes, t.completed`
)

type assignmentRepository struct {
	db   *sqlx.DB // transactions start here
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db, exec: db}
}

func orderBy(ordering ...core.DBOrdering) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		terms = append(terms, ord.String())
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

// task orderings shared by the plan, timeline and history queries
var (
	scheduledAsc = orderBy(
		core.DBOrdering{Field: "t.scheduled_date", Ascending: true},
		core.DBOrdering{Field: "t.id", Ascending: true},
	)
	scheduledDesc = orderBy(core.DBOrdering{Field: "t.scheduled_date"}, core.DBOrdering{Field: "t.id"})
)

// trapNoRowsErr maps psql "no rows" err to notFound
func (repo assignmentRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	err := repo.exec.GetContext(ctx, &a.ID,
		`INSERT INTO assignment (user_id, title, description, complexity, due_date, total_items, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.UserID, a.Title, a.Description, a.Complexity, a.DueDate, a.TotalItems, a.CreatedAt.UTC(),
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, userID string) ([]assignment.Assignment, error) {
	assignments := []assignment.Assignment{}
	err := repo.exec.SelectContext(ctx, &assignments,
		`SELECT `+assignmentColumns+`,
			COUNT(t.id)::int AS total_subtasks,
			COALESCE(SUM(CASE WHEN t.completed THEN 1 ELSE 0 END), 0)::int AS completed_subtasks
		 FROM assignment a
		 LEFT JOIN study_task t ON t.assignment_id = a.id
		 WHERE a.user_id = $1
		 GROUP BY a.id
		 `+orderBy(core.DBOrdering{Field: "a.created_at"}, core.DBOrdering{Field: "a.id"}), userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, userID string, id int) (assignment.Assignment, error) {
	var a assignment.Assignment
	err := repo.exec.GetContext(ctx, &a,
		`SELECT `+assignmentColumns+`
		 FROM assignment a
		 WHERE a.user_id = $1 AND a.id = $2`, userID, id)
	if err != nil {
		return assignment.Assignment{}, repo.trapNoRowsErr(err, assignment.ErrNotFound, "getting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, userID string, id int) (int, error) {
	var taskCount int
	err := repo.exec.GetContext(ctx, &taskCount,
		`SELECT COUNT(*) FROM study_task t
		 JOIN assignment a ON a.id = t.assignment_id
		 WHERE a.user_id = $1 AND a.id = $2`, userID, id)
	if err != nil {
		return 0, errors.Wrap(err, "counting assignment tasks")
	}

	// tasks go with it via ON DELETE CASCADE
	res, err := repo.exec.ExecContext(ctx,
		`DELETE FROM assignment WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return 0, errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, assignment.ErrNotFound
	}
	return taskCount, nil
}

func (repo assignmentRepository) CreateStudyTasks(ctx context.Context, assignmentID int, tasks []plan.Task) ([]assignment.StudyTask, error) {
	studyTasks := make([]assignment.StudyTask, 0, len(tasks))

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		st, err := repo.insertStudyTask(ctx, tx, assignmentID, t)
		if err != nil {
			return nil, err
		}
		studyTasks = append(studyTasks, st)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing study tasks")
	}
	return studyTasks, nil
}

func (repo assignmentRepository) insertStudyTask(ctx context.Context, exec core.DBExecutor, assignmentID int, t plan.Task) (assignment.StudyTask, error) {
	st := assignment.StudyTask{
		AssignmentID:     assignmentID,
		Description:      t.Description,
		ScheduledDate:    t.ScheduledDate,
		EstimatedMinutes: t.EstimatedMinutes,
	}
	err := exec.GetContext(ctx, &st.ID,
		`INSERT INTO study_task (assignment_id, task_description, scheduled_date, estimated_minutes, completed)
		 VALUES ($1, $2, $3, $4, FALSE)
		 RETURNING id`,
		st.AssignmentID, st.Description, st.ScheduledDate, st.EstimatedMinutes,
	)
	if err != nil {
		return assignment.StudyTask{}, errors.Wrap(err, "inserting study task")
	}
	return st, nil
}

func (repo assignmentRepository) QueryPlan(ctx context.Context, userID string, assignmentID int) ([]assignment.StudyTask, error) {
	tasks := []assignment.StudyTask{}
	err := repo.exec.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+`
		 FROM study_task t
		 JOIN assignment a ON a.id = t.assignment_id
		 WHERE a.user_id = $1 AND t.assignment_id = $2
		 `+scheduledAsc, userID, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying plan")
	}
	return tasks, nil
}

func (repo assignmentRepository) QueryTimeline(ctx context.Context, userID string) ([]assignment.TimelineTask, error) {
	tasks := []assignment.TimelineTask{}
	err := repo.exec.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+`, a.title AS assignment_title, a.complexity
		 FROM study_task t
		 JOIN assignment a ON a.id = t.assignment_id
		 WHERE a.user_id = $1
		 `+scheduledAsc, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying timeline")
	}
	return tasks, nil
}

func (repo assignmentRepository) QueryHistory(ctx context.Context, userID string) ([]assignment.TimelineTask, error) {
	tasks := []assignment.TimelineTask{}
	err := repo.exec.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+`, a.title AS assignment_title, a.complexity
		 FROM study_task t
		 JOIN assignment a ON a.id = t.assignment_id
		 WHERE a.user_id = $1 AND t.completed
		 `+scheduledDesc, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying history")
	}
	return tasks, nil
}

func (repo assignmentRepository) PruneStaleTasks(ctx context.Context, userID string, cutoff string) error {
	_, err := repo.exec.ExecContext(ctx,
		`DELETE FROM study_task t
		 USING assignment a
		 WHERE t.assignment_id = a.id AND a.user_id = $1 AND t.scheduled_date < $2::date`,
		userID, cutoff)
	if err != nil {
		return errors.Wrap(err, "pruning stale tasks")
	}
	return nil
}

func (repo assignmentRepository) GetTask(ctx context.Context, userID string, id int) (assignment.StudyTask, error) {
	var t assignment.StudyTask
	err := repo.exec.GetContext(ctx, &t,
		`SELECT `+taskColumns+`
		 FROM study_task t
		 JOIN assignment a ON a.id = t.assignment_id
		 WHERE a.user_id = $1 AND t.id = $2`, userID, id)
	if err != nil {
		return assignment.StudyTask{}, repo.trapNoRowsErr(err, assignment.ErrTaskNotFound, "getting task")
	}
	return t, nil
}

func (repo assignmentRepository) UpdateTask(ctx context.Context, task assignment.StudyTask) (assignment.StudyTask, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE study_task
		 SET task_description = $1, scheduled_date = $2, estimated_minutes = $3, completed = $4
		 WHERE id = $5`,
		task.Description, task.ScheduledDate, task.EstimatedMinutes, task.Completed, task.ID)
	if err != nil {
		return assignment.StudyTask{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.StudyTask{}, assignment.ErrTaskNotFound
	}
	return task, nil
}

func (repo assignmentRepository) SetTaskCompleted(ctx context.Context, userID string, id int, completed bool) error {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE study_task t
		 SET completed = $1
		 FROM assignment a
		 WHERE t.assignment_id = a.id AND a.user_id = $2 AND t.id = $3`,
		completed, userID, id)
	if err != nil {
		return errors.Wrap(err, "toggling task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrTaskNotFound
	}
	return nil
}

func (repo assignmentRepository) DeleteTask(ctx context.Context, userID string, id int) error {
	res, err := repo.exec.ExecContext(ctx,
		`DELETE FROM study_task t
		 USING assignment a
		 WHERE t.assignment_id = a.id AND a.user_id = $1 AND t.id = $2`, userID, id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.ErrTaskNotFound
	}
	return nil
}
