package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/disciplan/core/assignment"
	"github.com/trezcool/disciplan/core/plan"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	a.ID = repo.db.pkCount
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, userID string) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, a := range repo.db.table {
		if a.UserID != userID {
			continue
		}
		cp := *a
		for _, t := range repo.db.tasks {
			if t.AssignmentID == cp.ID {
				cp.TotalSubtasks++
				if t.Completed {
					cp.CompletedSubtasks++
				}
			}
		}
		assignments = append(assignments, cp)
	}
	// newest first
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].CreatedAt.Equal(assignments[j].CreatedAt) {
			return assignments[i].ID > assignments[j].ID
		}
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, userID string, id int) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok && a.UserID == userID {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, userID string, id int) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok || a.UserID != userID {
		return 0, assignment.ErrNotFound
	}

	var taskCount int
	for tid, t := range repo.db.tasks {
		if t.AssignmentID == id {
			delete(repo.db.tasks, tid)
			taskCount++
		}
	}
	delete(repo.db.table, id)
	return taskCount, nil
}

func (repo *assignmentRepository) CreateStudyTasks(ctx context.Context, assignmentID int, tasks []plan.Task) ([]assignment.StudyTask, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	studyTasks := make([]assignment.StudyTask, 0, len(tasks))
	for _, t := range tasks {
		repo.db.taskPK++
		st := assignment.StudyTask{
			ID:               repo.db.taskPK,
			AssignmentID:     assignmentID,
			Description:      t.Description,
			ScheduledDate:    t.ScheduledDate,
			EstimatedMinutes: t.EstimatedMinutes,
		}
		repo.db.tasks[st.ID] = &st
		studyTasks = append(studyTasks, st)
	}
	return studyTasks, nil
}

func (repo *assignmentRepository) queryTasks(userID string, match func(assignment.StudyTask) bool) []assignment.StudyTask {
	tasks := make([]assignment.StudyTask, 0)
	for _, t := range repo.db.tasks {
		a, ok := repo.db.table[t.AssignmentID]
		if !ok || a.UserID != userID {
			continue
		}
		if match != nil && !match(*t) {
			continue
		}
		tasks = append(tasks, *t)
	}
	return tasks
}

func sortTasks(tasks []assignment.StudyTask, desc bool) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ScheduledDate == tasks[j].ScheduledDate {
			if desc {
				return tasks[i].ID > tasks[j].ID
			}
			return tasks[i].ID < tasks[j].ID
		}
		if desc {
			return tasks[i].ScheduledDate > tasks[j].ScheduledDate
		}
		return tasks[i].ScheduledDate < tasks[j].ScheduledDate
	})
}

func (repo *assignmentRepository) QueryPlan(ctx context.Context, userID string, assignmentID int) ([]assignment.StudyTask, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.queryTasks(userID, func(t assignment.StudyTask) bool { return t.AssignmentID == assignmentID })
	sortTasks(tasks, false)
	return tasks, nil
}

func (repo *assignmentRepository) join(tasks []assignment.StudyTask) []assignment.TimelineTask {
	joined := make([]assignment.TimelineTask, 0, len(tasks))
	for _, t := range tasks {
		a := repo.db.table[t.AssignmentID]
		joined = append(joined, assignment.TimelineTask{
			StudyTask:       t,
			AssignmentTitle: a.Title,
			Complexity:      a.Complexity,
		})
	}
	return joined
}

func (repo *assignmentRepository) QueryTimeline(ctx context.Context, userID string) ([]assignment.TimelineTask, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.queryTasks(userID, nil)
	sortTasks(tasks, false)
	return repo.join(tasks), nil
}

func (repo *assignmentRepository) QueryHistory(ctx context.Context, userID string) ([]assignment.TimelineTask, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := repo.queryTasks(userID, func(t assignment.StudyTask) bool { return t.Completed })
	sortTasks(tasks, true)
	return repo.join(tasks), nil
}

func (repo *assignmentRepository) PruneStaleTasks(ctx context.Context, userID string, cutoff string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for tid, t := range repo.db.tasks {
		a, ok := repo.db.table[t.AssignmentID]
		if !ok || a.UserID != userID {
			continue
		}
		// ISO dates compare lexicographically
		if t.ScheduledDate < cutoff {
			delete(repo.db.tasks, tid)
		}
	}
	return nil
}

func (repo *assignmentRepository) getTask(userID string, id int) (*assignment.StudyTask, error) {
	t, ok := repo.db.tasks[id]
	if !ok {
		return nil, assignment.ErrTaskNotFound
	}
	if a, ok := repo.db.table[t.AssignmentID]; !ok || a.UserID != userID {
		return nil, assignment.ErrTaskNotFound
	}
	return t, nil
}

func (repo *assignmentRepository) GetTask(ctx context.Context, userID string, id int) (assignment.StudyTask, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	t, err := repo.getTask(userID, id)
	if err != nil {
		return assignment.StudyTask{}, err
	}
	return *t, nil
}

func (repo *assignmentRepository) UpdateTask(ctx context.Context, task assignment.StudyTask) (assignment.StudyTask, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.tasks[task.ID]; !ok {
		return assignment.StudyTask{}, assignment.ErrTaskNotFound
	}
	repo.db.tasks[task.ID] = &task
	return task, nil
}

func (repo *assignmentRepository) SetTaskCompleted(ctx context.Context, userID string, id int, completed bool) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, err := repo.getTask(userID, id)
	if err != nil {
		return err
	}
	t.Completed = completed
	return nil
}

func (repo *assignmentRepository) DeleteTask(ctx context.Context, userID string, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, err := repo.getTask(userID, id); err != nil {
		return err
	}
	delete(repo.db.tasks, id)
	return nil
}
