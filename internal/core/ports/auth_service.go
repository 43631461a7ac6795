package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}
