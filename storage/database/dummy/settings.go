package dummydb

import (
	"context"

	"github.com/trezcool/disciplan/core/settings"
	"github.com/trezcool/disciplan/core/user"
)

type settingsRepository struct {
	db *settingsTable
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db.settings}
}

func (repo *settingsRepository) EnsureSettings(ctx context.Context, defaults settings.Settings) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[defaults.UserID]; !ok {
		repo.db.table[defaults.UserID] = &defaults
	}
	return nil
}

func (repo *settingsRepository) GetSettings(ctx context.Context, userID string) (settings.Settings, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[userID]; ok {
		return *s, nil
	}
	return settings.Settings{}, user.ErrNotFound
}

func (repo *settingsRepository) UpdateUserSettings(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.UserID]; !ok {
		return settings.Settings{}, user.ErrNotFound
	}
	repo.db.table[s.UserID] = &s
	return s, nil
}
