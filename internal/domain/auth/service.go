package auth

import (
	"context"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service authenticates dashboard admins.
type Service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		// Same error as a wrong password so the endpoint does not leak
		// which emails exist.
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		log.Printf("admin_login_failed email=%s", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	log.Printf("admin_login id=%d email=%s", user.ID, user.Email)
	return token, user, nil
}

// EnsureAdmin creates the account if the email is not registered yet.
// Used by the seed command; an existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (*AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &AdminUser{Email: email, PasswordHash: string(hash), Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
