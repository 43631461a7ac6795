package memory

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// UserRepository implements ports.AuthRepository on a Collection.
type UserRepository struct {
	users *Collection[domain.User]
}

// NewUserRepository returns an empty repository issuing UUIDs.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: NewCollection(
		func(u *domain.User) string { return u.ID },
		func(u *domain.User, id string) { u.ID = id },
		RandomIDs(),
	)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	stored, ok := r.users.CreateUnless(*user, func(existing *domain.User) bool {
		return existing.Username == user.Username
	})
	if !ok {
		return nil, domain.ErrUserExists
	}
	return &stored, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.users.Find(func(u *domain.User) bool { return u.Username == username })
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	return int64(r.users.Len()), nil
}
