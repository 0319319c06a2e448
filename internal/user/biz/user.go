package biz

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User represents an account identity
type User struct {
	ID           string
	Name         string
	Email        string // stored lowercased
	PasswordHash string
	Role         string // member, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo defines the interface for user persistence
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// FilePurger removes all files owned by a user when the account is deleted.
// Implemented by the file use case; wired in main to avoid a package cycle.
type FilePurger interface {
	PurgeOwner(ctx context.Context, ownerID string) error
}

// UserUseCase contains account management logic used by the admin surface
type UserUseCase struct {
	repo   UserRepo
	purger FilePurger
}

func NewUserUseCase(repo UserRepo, purger FilePurger) *UserUseCase {
	return &UserUseCase{repo: repo, purger: purger}
}

func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*User, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*User, error) {
	return uc.repo.List(ctx)
}

// DeleteUser removes an account and everything it owns. File cleanup runs
// first so a failure there leaves the account intact and retryable.
func (uc *UserUseCase) DeleteUser(ctx context.Context, id string) error {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil || user == nil {
		return ErrUserNotFound
	}

	if uc.purger != nil {
		if err := uc.purger.PurgeOwner(ctx, id); err != nil {
			return err
		}
	}

	return uc.repo.Delete(ctx, id)
}
