package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"partsstore/internal/domain"
	"partsstore/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

// Principal resolves the session to whoever is acting. Unknown sessions,
// lookup failures and users with an unrecognised role are anonymous retail.
func (s *AuthService) Principal(ctx context.Context, sid string) domain.Principal {
	if sid == "" {
		return domain.Anonymous()
	}
	u, err := s.CurrentUser(ctx, sid)
	if err != nil || u == nil || !u.Role.Valid() {
		return domain.Anonymous()
	}
	return u.Principal()
}
