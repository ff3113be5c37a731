package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/utils"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserService manages back-office users.
type UserService struct {
	userRepo repository.AdminUserStore
	cost     int
}

// NewUserService constructs a UserService.
func NewUserService(userRepo repository.AdminUserStore) *UserService {
	return &UserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// UserRequest is the payload for creating or updating a user. Password is
// required on create and left unchanged on update when empty. An omitted
// role is staff on create and unchanged on update; IsActive likewise
// defaults to true.
type UserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	IsActive *bool           `json:"isActive"`
}

func (r *UserRequest) apply(u *models.AdminUser) {
	u.Name = strings.TrimSpace(r.Name)
	u.Email = strings.ToLower(strings.TrimSpace(r.Email))
	switch {
	case r.Role != "":
		u.Role = r.Role
	case u.Role == "":
		u.Role = models.RoleStaff
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}

func (r *UserRequest) validate(creating bool) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return utils.Invalid("name", "is required")
	case strings.TrimSpace(r.Email) == "":
		return utils.Invalid("email", "is required")
	case !emailPattern.MatchString(strings.TrimSpace(r.Email)):
		return utils.Invalid("email", "is invalid")
	case creating && r.Password == "":
		return utils.Invalid("password", "is required")
	case r.Password != "" && len(r.Password) < minPasswordLength:
		return utils.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	case r.Role != "" && !r.Role.Valid():
		return utils.Invalid("role", "must be one of admin, staff")
	}
	return nil
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, f repository.UserFilter) ([]models.AdminUser, int, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, utils.Invalid("role", "must be one of admin, staff")
	}
	return s.userRepo.GetAllPaged(ctx, f)
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int) (*models.AdminUser, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// CreateUser validates req and stores a new user with a bcrypt hash.
func (s *UserService) CreateUser(ctx context.Context, req *UserRequest) (*models.AdminUser, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}
	u := &models.AdminUser{IsActive: true}
	req.apply(u)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Info().Int("user_id", u.ID).Str("role", string(u.Role)).Msg("User created")
	return u, nil
}

// UpdateUser replaces a user's details and, when given, the password. The
// last active admin cannot be demoted or deactivated.
func (s *UserService) UpdateUser(ctx context.Context, id int, req *UserRequest) (*models.AdminUser, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	wasAdmin := u.Role == models.RoleAdmin && u.IsActive
	req.apply(u)
	if wasAdmin && (u.Role != models.RoleAdmin || !u.IsActive) {
		if err := s.requireAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	u.PasswordHash = ""
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// DeleteUser removes a user. actorID is the caller, who cannot delete
// their own account; the last active admin cannot be deleted either.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return utils.Invalid("id", "cannot delete your own account")
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin && u.IsActive {
		if err := s.requireAnotherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	log.Info().Int("user_id", id).Int("deleted_by", actorID).Msg("User deleted")
	return nil
}

func (s *UserService) requireAnotherAdmin(ctx context.Context) error {
	n, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n <= 1 {
		return utils.ErrLastAdmin
	}
	return nil
}
