package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=services

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrForbidden          = errors.New("forbidden")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username *string, email *string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username string, passwordHash string, email string) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role models.Role) (*models.UserDB, error)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, role models.Role) (string, error)
}

// Session is the outcome of a successful login.
type Session struct {
	Token  string
	UserID uuid.UUID
	Role   models.Role
}

// AuthService handles registration, login and role assignment.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Register registers a new user with the default role.
func (svc *AuthService) Register(ctx context.Context, username, password, email string) error {
	user, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if user != nil {
		logger.Log.Errorw("user already exists", "username", username, "email", email)
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.Save(ctx, username, string(hashedPassword), email); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	return nil
}

// Login authenticates a user and returns a JWT token carrying the user's role.
func (svc *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := svc.reader.GetByUsernameOrEmail(ctx, &username, nil)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "username", username)
		return nil, ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID, user.Role)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return nil, err
	}

	return &Session{Token: token, UserID: user.UserID, Role: user.Role}, nil
}

// AssignRole changes the role of userID on behalf of actor.
// Admins may manage roles below admin; only a superadmin may grant or revoke admin rights.
func (svc *AuthService) AssignRole(ctx context.Context, actor models.Actor, userID uuid.UUID, role models.Role) (*models.UserDB, error) {
	if !actor.Role.AtLeast(models.RoleAdmin) {
		logger.Log.Errorw("role assignment forbidden", "actor", actor.UserID, "actor_role", actor.Role)
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	target, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if target == nil {
		return nil, ErrUserDoesNotExist
	}

	if actor.Role != models.RoleSuperAdmin && (role.AtLeast(models.RoleAdmin) || target.Role.AtLeast(models.RoleAdmin)) {
		logger.Log.Errorw("admin role change requires superadmin",
			"actor", actor.UserID, "user_id", userID, "from", target.Role, "to", role)
		return nil, ErrForbidden
	}

	updated, err := svc.writer.UpdateRole(ctx, userID, role)
	if err != nil {
		logger.Log.Errorw("failed to update role", "user_id", userID, "role", role, "err", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserDoesNotExist
	}

	logger.Log.Infow("role assigned", "actor", actor.UserID, "user_id", userID, "from", target.Role, "to", role)
	return updated, nil
}
