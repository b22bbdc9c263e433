package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core"
	"github.com/trezcool/disciplan/core/settings"
	"github.com/trezcool/disciplan/core/user"
)

type settingsRepository struct {
	exec core.DBExecutor
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(exec core.DBExecutor) *settingsRepository {
	return &settingsRepository{exec: exec}
}

func (repo settingsRepository) EnsureSettings(ctx context.Context, defaults settings.Settings) error {
	_, err := repo.exec.NamedExecContext(ctx,
		`INSERT INTO user_settings (user_id, theme_mode, start_page, assignment_default_complexity,
			assignment_default_items, confirm_assignment_delete, created_at, updated_at)
		 VALUES (:user_id, :theme_mode, :start_page, :assignment_default_complexity,
			:assignment_default_items, :confirm_assignment_delete, :created_at, :updated_at)
		 ON CONFLICT (user_id) DO NOTHING`, defaults)
	if err != nil {
		return errors.Wrap(err, "ensuring settings")
	}
	return nil
}

func (repo settingsRepository) GetSettings(ctx context.Context, userID string) (settings.Settings, error) {
	var s settings.Settings
	err := repo.exec.GetContext(ctx, &s,
		`SELECT * FROM user_settings WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return settings.Settings{}, user.ErrNotFound
		}
		return settings.Settings{}, errors.Wrap(err, "getting settings")
	}
	return s, nil
}

func (repo settingsRepository) UpdateUserSettings(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	res, err := repo.exec.NamedExecContext(ctx,
		`UPDATE user_settings
		 SET theme_mode = :theme_mode, start_page = :start_page,
			assignment_default_complexity = :assignment_default_complexity,
			assignment_default_items = :assignment_default_items,
			confirm_assignment_delete = :confirm_assignment_delete,
			updated_at = :updated_at
		 WHERE user_id = :user_id`, s)
	if err != nil {
		return settings.Settings{}, errors.Wrap(err, "updating settings")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return settings.Settings{}, user.ErrNotFound
	}
	return s, nil
}
