package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type fakePurger struct {
	purged []string
	err    error
}

func (p *fakePurger) PurgeOwner(_ context.Context, ownerID string) error {
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, ownerID)
	return nil
}

func seedUser(repo *fakeUserRepo, id string) {
	repo.users[id] = &User{
		ID:        id,
		Name:      "User " + id,
		Email:     id + "@example.com",
		Role:      "member",
		CreatedAt: time.Now(),
	}
}

func TestDeleteUserPurgesFilesFirst(t *testing.T) {
	repo := newFakeUserRepo()
	purger := &fakePurger{}
	uc := NewUserUseCase(repo, purger)
	seedUser(repo, "u1")

	require.NoError(t, uc.DeleteUser(context.Background(), "u1"))

	assert.Equal(t, []string{"u1"}, purger.purged)
	_, err := repo.GetByID(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserKeepsAccountWhenPurgeFails(t *testing.T) {
	repo := newFakeUserRepo()
	purger := &fakePurger{err: errors.New("storage down")}
	uc := NewUserUseCase(repo, purger)
	seedUser(repo, "u1")

	err := uc.DeleteUser(context.Background(), "u1")
	assert.Error(t, err)

	// Account survives so the operation can be retried.
	_, err = repo.GetByID(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestDeleteUserNotFound(t *testing.T) {
	uc := NewUserUseCase(newFakeUserRepo(), &fakePurger{})

	err := uc.DeleteUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
