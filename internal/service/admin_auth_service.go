package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// ErrAccountInactive is returned for disabled admin accounts.
var ErrAccountInactive = errors.New("account is inactive")

type AdminAuthService struct {
	adminRepo repository.AdminUserStore
	jwt       *utils.JWTManager
}

func NewAdminAuthService(adminRepo repository.AdminUserStore, jwt *utils.JWTManager) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, jwt: jwt}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string            `json:"token"`
	User  *models.AdminUser `json:"user"`
}

func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("load admin user: %w", err)
		}
		log.Warn().Str("email", email).Msg("Unknown admin email")
		return nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateJWT(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	log.Info().Int("user_id", user.ID).Msg("Login successful")
	return &LoginResult{Token: token, User: user}, nil
}

// EnsureAdmin creates the bootstrap admin unless an account with email exists.
func (s *AdminAuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.adminRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !repository.IsNotFound(err) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return nil
}
