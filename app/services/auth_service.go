package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/logger"
)

// userStore is the slice of the user repository the auth service needs.
type userStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// AuthService handles registration and login.
type AuthService struct {
	users  userStore
	tokens *auth.TokenManager
}

func NewAuthService(users userStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Register creates a new account and returns it with a fresh token.
// The requested role is only honoured when requesterIsAdmin is true;
// anonymous registrations always get the standard role, whatever the
// request body says.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, requesterIsAdmin bool) (models.User, string, error) {
	role := models.RoleStandard
	if requesterIsAdmin && in.Role.Valid() {
		role = in.Role
	} else if in.Role == models.RoleAdmin {
		logger.WithCtx(ctx).Warn("register: admin role requested without admin token", "email", in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("register: hash password: %w", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, "", ErrUserExists
		}
		return models.User{}, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return models.User{}, "", err
	}

	logger.WithCtx(ctx).Info("user registered", "email", user.Email, "role", int(user.Role))
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return models.User{}, "", err
	}

	logger.WithCtx(ctx).Info("user logged in", "email", user.Email)
	return user, token, nil
}

// UserID parses the hex user id carried in token claims.
func UserID(claims *auth.Claims) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(claims.UserID)
}
