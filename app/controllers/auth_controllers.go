package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/services"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/response"
	"github.com/fornello/pizzeria/pkg/validate"
)

// AuthController exposes registration and login.
type AuthController struct {
	service *services.AuthService
	tokens  *auth.TokenManager
}

func NewAuthController(service *services.AuthService, tokens *auth.TokenManager) *AuthController {
	return &AuthController{service: service, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     int    `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authPayload is what register and login hand back: the account plus a
// token ready for the Authorization header.
type authPayload struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account. The route is public; an admin role in
// the body only sticks when the request also carries a valid admin
// token.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.service.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	}, c.requesterIsAdmin(r))
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			response.BadRequest(w, "User already exists.")
			return
		}
		logger.WithCtx(r.Context()).Error("register", "error", err)
		response.ServerError(w, "Could not register user")
		return
	}

	response.Success(w, "User registered successfully.", authPayload{User: user, Token: token})
}

// Login verifies credentials and issues a token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.BadRequest(w, "Invalid credentials.")
			return
		}
		logger.WithCtx(r.Context()).Error("login", "error", err)
		response.ServerError(w, "Could not log in")
		return
	}

	response.Success(w, "Login successful.", authPayload{User: user, Token: token})
}

// requesterIsAdmin checks the optional Authorization header. The
// register route is not behind the auth gate, so a missing or bad
// token just means "not an admin", never a rejection.
func (c *AuthController) requesterIsAdmin(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if header == "" {
		return false
	}

	var token string
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
		token = strings.TrimSpace(parts[1])
	}

	claims, err := c.tokens.ValidateToken(token)
	if err != nil {
		return false
	}
	return claims.Role == models.RoleAdmin
}
