package user

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core"
)

type fakeRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{users: make(map[string]User)} }

func (r *fakeRepo) CheckEmailUniqueness(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, usr := range r.users {
		if usr.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateUser(ctx context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	usr.ID = "usr-" + strconv.Itoa(r.seq)
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, usr := range r.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) UpdateUser(ctx context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[usr.ID]; !ok {
		return User{}, ErrNotFound
	}
	r.users[usr.ID] = usr
	return usr, nil
}

type fakeMailSvc struct {
	messages []*core.EmailMessage
}

func (s *fakeMailSvc) SendMessages(messages ...*core.EmailMessage) {
	s.messages = append(s.messages, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestService_Register(t *testing.T) {
	repo := newFakeRepo()
	mailSvc := &fakeMailSvc{}
	svc := NewService(repo, mailSvc, nopLogger{})

	usr, err := svc.Register(context.Background(), NewUser{
		Name:            "Awe",
		Email:           "awe@test.cd",
		Password:        "secretpwd",
		PasswordConfirm: "secretpwd",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if usr.ID == "" {
		t.Error("Register() did not assign an ID")
	}
	if !usr.IsActive {
		t.Error("Register() user not active")
	}
	if usr.CreatedAt.IsZero() || usr.UpdatedAt.IsZero() {
		t.Error("Register() timestamps not set")
	}
	if err := usr.CheckPassword("secretpwd"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}

	// welcome email
	if len(mailSvc.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(mailSvc.messages))
	}
	msg := mailSvc.messages[0]
	if want := "Welcome to " + core.Conf.AppName; msg.Subject != want {
		t.Errorf("subject = %q, want %q", msg.Subject, want)
	}
	if len(msg.To) != 1 || msg.To[0].Address != usr.Email {
		t.Errorf("recipient = %v, want %s", msg.To, usr.Email)
	}
}

func TestService_PasswordResetFlow(t *testing.T) {
	repo := newFakeRepo()
	mailSvc := &fakeMailSvc{}
	svc := NewService(repo, mailSvc, nopLogger{})
	ctx := context.Background()

	usr, err := svc.Register(ctx, NewUser{
		Name: "Awe", Email: "awe@test.cd", Password: "oldpassword", PasswordConfirm: "oldpassword",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	mailSvc.messages = nil

	t.Run("unknown email", func(t *testing.T) {
		err := svc.RequestPasswordReset(ctx, "who@test.cd")
		if errors.Cause(err) != ErrNotFound {
			t.Errorf("RequestPasswordReset() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		naughty, err := repo.CreateUser(ctx, User{Name: "Naughty", Email: "ndog@test.cd"})
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}

		if err := svc.RequestPasswordReset(ctx, naughty.Email); errors.Cause(err) != ErrNotFound {
			t.Errorf("RequestPasswordReset() error = %v, want %v", err, ErrNotFound)
		}
	})

	var uid, token string

	t.Run("request", func(t *testing.T) {
		if err := svc.RequestPasswordReset(ctx, usr.Email); err != nil {
			t.Fatalf("RequestPasswordReset() error = %v", err)
		}
		if len(mailSvc.messages) != 1 {
			t.Fatalf("got %d messages, want 1", len(mailSvc.messages))
		}
		matches := regexp.MustCompile(`uid=([^&\s]+)&token=(\S+)`).FindStringSubmatch(mailSvc.messages[0].TextContent)
		if len(matches) != 3 {
			t.Fatal("reset link not found in email")
		}
		uid, token = matches[1], matches[2]
	})

	t.Run("bad uid", func(t *testing.T) {
		err := svc.ResetPassword(ctx, ResetUserPassword{UID: "???", Token: token, Password: "newpassword", PasswordConfirm: "newpassword"})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("ResetPassword() error = %v, want ValidationError", err)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		err := svc.ResetPassword(ctx, ResetUserPassword{UID: uid, Token: "nope-nope", Password: "newpassword", PasswordConfirm: "newpassword"})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("ResetPassword() error = %v, want ValidationError", err)
		}
	})

	t.Run("confirm", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, ResetUserPassword{UID: uid, Token: token, Password: "newpassword", PasswordConfirm: "newpassword"}); err != nil {
			t.Fatalf("ResetPassword() error = %v", err)
		}
		refreshed, err := repo.GetUserByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() error = %v", err)
		}
		if err := refreshed.CheckPassword("newpassword"); err != nil {
			t.Errorf("CheckPassword() error = %v", err)
		}
	})

	t.Run("token invalidated by use", func(t *testing.T) {
		err := svc.ResetPassword(ctx, ResetUserPassword{UID: uid, Token: token, Password: "anotherone", PasswordConfirm: "anotherone"})
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("ResetPassword() error = %v, want ValidationError", err)
		}
	})
}
