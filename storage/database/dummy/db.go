// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/disciplan/core/assignment"
	"github.com/trezcool/disciplan/core/settings"
	"github.com/trezcool/disciplan/core/user"
)

type (
	DB struct {
		user       *userTable
		assignment *assignmentTable
		settings   *settingsTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	assignmentTable struct {
		sync.RWMutex
		table   map[int]*assignment.Assignment
		tasks   map[int]*assignment.StudyTask
		pkCount int
		taskPK  int
	}

	settingsTable struct {
		sync.RWMutex
		table map[string]*settings.Settings
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		assignment: &assignmentTable{
			table: make(map[int]*assignment.Assignment),
			tasks: make(map[int]*assignment.StudyTask),
		},
		settings: &settingsTable{table: make(map[string]*settings.Settings)},
	}
	return db, nil
}
