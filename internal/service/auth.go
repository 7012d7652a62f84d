package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/hash"
	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/Skotchmaster/peptide_shop/internal/repo"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/Skotchmaster/peptide_shop/pkg/tokens"
	"gorm.io/gorm"
)

const RoleAdmin = "admin"

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	Role        string
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown user")
			return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	token, exp, err := tokens.SignAccessToken(user.ID.String(), user.Role, s.JWTSecret, time.Now())
	if err != nil {
		return nil, err
	}

	l.Info("login_success")
	return &LoginResult{AccessToken: token, AccessExp: exp, Role: user.Role}, nil
}

// SeedAdmin creates the admin account when it does not exist yet. It never
// overwrites an existing password.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	_, err := s.Repo.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return false, err
	}
	if err := s.Repo.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}
