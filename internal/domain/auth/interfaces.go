package auth

import "context"

// Repository is the persistence surface the auth service needs.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	Create(ctx context.Context, user *AdminUser) error
}

// TokenIssuer signs access tokens for authenticated admins.
type TokenIssuer interface {
	GenerateToken(adminID int64, email string) (string, error)
}
