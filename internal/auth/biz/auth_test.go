package biz

import (
	"context"
	"testing"

	"github.com/lk2023060901/minidrive-backend/internal/auth"
	userbiz "github.com/lk2023060901/minidrive-backend/internal/user/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byEmail map[string]*userbiz.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*userbiz.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *userbiz.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*userbiz.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, userbiz.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*userbiz.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, userbiz.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*userbiz.User, error) {
	var out []*userbiz.User
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return userbiz.ErrUserNotFound
}

func newTestAuthUseCase() *AuthUseCase {
	jwtManager := auth.NewJWTManager("test-secret", "minidrive-test")
	return NewAuthUseCase(newFakeUserRepo(), jwtManager)
}

func TestSignupAndLogin(t *testing.T) {
	uc := newTestAuthUseCase()
	ctx := context.Background()

	user, err := uc.Signup(ctx, "Alice", "Alice@Example.Com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, auth.RoleMember, user.Role)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	// Login matches case-insensitively on email.
	result, err := uc.Login(ctx, "ALICE@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
	assert.NotEmpty(t, result.AccessToken)
}

func TestSignupDuplicateEmail(t *testing.T) {
	uc := newTestAuthUseCase()
	ctx := context.Background()

	_, err := uc.Signup(ctx, "Alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = uc.Signup(ctx, "Other Alice", "ALICE@example.com", "password-two")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc := newTestAuthUseCase()
	ctx := context.Background()

	_, err := uc.Signup(ctx, "Alice", "alice@example.com", "the right password")
	require.NoError(t, err)

	_, err = uc.Login(ctx, "alice@example.com", "the wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(ctx, "unknown@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
