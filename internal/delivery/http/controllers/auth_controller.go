package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"eventlisting/internal/delivery/http/helpers"
	"eventlisting/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate implements helpers.Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /auth/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      *domain.User `json:"user"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create a new user with email, password, and name. Password is stored hashed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			helpers.WriteError(w, http.StatusBadRequest, "email already in use")
		case errors.Is(err, domain.ErrValidation):
			helpers.WriteError(w, http.StatusBadRequest, userMessage(err))
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}
	helpers.WriteSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticates with email and password and returns a Bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains token and user"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 500 {object} helpers.APIResponse
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			helpers.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	helpers.WriteSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      user,
	})
}
