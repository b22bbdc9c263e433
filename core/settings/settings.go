// Package settings holds per-user UI preferences: theme, landing page and
// assignment form defaults.
package settings

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core/plan"
)

type Settings struct {
	UserID                      string          `json:"-" db:"user_id"`
	ThemeMode                   string          `json:"theme_mode" db:"theme_mode"`
	StartPage                   string          `json:"start_page" db:"start_page"`
	AssignmentDefaultComplexity plan.Complexity `json:"assignment_default_complexity" db:"assignment_default_complexity"`
	AssignmentDefaultItems      int             `json:"assignment_default_items" db:"assignment_default_items"`
	ConfirmAssignmentDelete     bool            `json:"confirm_assignment_delete" db:"confirm_assignment_delete"`
	CreatedAt                   time.Time       `json:"-" db:"created_at"`
	UpdatedAt                   time.Time       `json:"-" db:"updated_at"`
}

// Defaults returns the settings a user starts out with.
func Defaults(userID string) Settings {
	now := time.Now().UTC()
	return Settings{
		UserID:                      userID,
		ThemeMode:                   "light",
		StartPage:                   "dashboard",
		AssignmentDefaultComplexity: plan.ComplexityMedium,
		AssignmentDefaultItems:      5,
		ConfirmAssignmentDelete:     true,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
}

// UpdateSettings carries a partial settings update; nil fields keep the
// stored value.
type UpdateSettings struct {
	ThemeMode                   *string          `json:"theme_mode" validate:"omitempty,oneof=light dark"`
	StartPage                   *string          `json:"start_page" validate:"omitempty,oneof=dashboard timeline history"`
	AssignmentDefaultComplexity *plan.Complexity `json:"assignment_default_complexity" validate:"omitempty,oneof=Easy Medium Hard"`
	AssignmentDefaultItems      *int             `json:"assignment_default_items" validate:"omitempty,min=1,max=1000"`
	ConfirmAssignmentDelete     *bool            `json:"confirm_assignment_delete"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

type Repository interface {
	// EnsureSettings inserts the default row for the user if absent.
	EnsureSettings(ctx context.Context, defaults Settings) error
	GetSettings(ctx context.Context, userID string) (Settings, error)
	UpdateUserSettings(ctx context.Context, s Settings) (Settings, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, userID string) (Settings, error) {
	if err := svc.repo.EnsureSettings(ctx, Defaults(userID)); err != nil {
		return Settings{}, errors.Wrap(err, "ensuring settings")
	}
	return svc.repo.GetSettings(ctx, userID)
}

// Update merges the provided fields into the stored settings.
func (svc *Service) Update(ctx context.Context, userID string, us UpdateSettings) (Settings, error) {
	s, err := svc.Get(ctx, userID)
	if err != nil {
		return Settings{}, err
	}

	if us.ThemeMode != nil {
		s.ThemeMode = *us.ThemeMode
	}
	if us.StartPage != nil {
		s.StartPage = *us.StartPage
	}
	if us.AssignmentDefaultComplexity != nil {
		s.AssignmentDefaultComplexity = *us.AssignmentDefaultComplexity
	}
	if us.AssignmentDefaultItems != nil {
		s.AssignmentDefaultItems = *us.AssignmentDefaultItems
	}
	if us.ConfirmAssignmentDelete != nil {
		s.ConfirmAssignmentDelete = *us.ConfirmAssignmentDelete
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUserSettings(ctx, s)
}
