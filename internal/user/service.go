package user

import (
	"context"
	"errors"
	"strings"

	"github.com/bookwell/booking-platform-backend/internal/auth"
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateDisplayName(ctx context.Context, id string, displayName string) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	jwt    *auth.JWTManager
}

func NewService(repo Repository, hasher auth.PasswordHasher, jwt *auth.JWTManager) Service {
	return &service{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the user plus a signed access token.
// Lookup and comparison failures collapse into one error so the response does
// not reveal whether the email exists.
func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateDisplayName(ctx context.Context, id string, displayName string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.DisplayName = strings.TrimSpace(displayName)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
