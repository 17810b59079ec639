package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-auth/internal/httputil"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
	"github.com/redmonkez12/go-todo-auth/internal/user"
)

// Handler contains HTTP handlers for the identity endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CredentialsRequest is the body of register and login. The user_email and
// user_pwd names are what the original browser client sends.
type CredentialsRequest struct {
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	UserEmail string `json:"user_email,omitempty" swaggerignore:"true"`
	UserPwd   string `json:"user_pwd,omitempty" swaggerignore:"true"`
}

func (r *CredentialsRequest) credentials() (string, string) {
	email, password := r.Email, r.Password
	if email == "" {
		email = r.UserEmail
	}
	if password == "" {
		password = r.UserPwd
	}
	return email, password
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account and receive a bearer token for it.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CredentialsRequest true "Registration credentials"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CredentialsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	email, password := req.credentials()
	logger = logger.WithFields(map[string]any{"email": NormalizeEmail(email)})

	newUser, token, err := h.service.Register(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "User with that email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		if respondValidationError(w, logger, "registration", err) {
			return
		}
		respondInternalError(w, logger, "registration", "Server error during registration", err)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Message: "User registered successfully!",
		User: UserResponse{
			ID:    newUser.ID,
			Email: newUser.Email,
		},
		Token: token,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a bearer token.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CredentialsRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body or missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Failure      503 {object} httputil.ErrorResponse "Operation timed out"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CredentialsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	email, password := req.credentials()
	logger = logger.WithFields(map[string]any{"email": NormalizeEmail(email)})

	token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Invalid credentials", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		if respondValidationError(w, logger, "login", err) {
			return
		}
		respondInternalError(w, logger, "login", "Server error during login", err)
		return
	}

	logger.Info("user logged in successfully")

	httputil.RespondJSON(w, LoginResponse{
		Message: "Login successful! Welcome back!",
		Token:   token,
	}, http.StatusOK)
}

var validationCodes = []struct {
	err  error
	code string
}{
	{ErrEmailRequired, httputil.CodeEmailRequired},
	{ErrPasswordRequired, httputil.CodePasswordRequired},
	{ErrPasswordTooShort, httputil.CodePasswordTooShort},
	{ErrInvalidEmailFormat, httputil.CodeInvalidEmailFormat},
}

func respondValidationError(w http.ResponseWriter, logger *logging.Logger, op string, err error) bool {
	for _, v := range validationCodes {
		if errors.Is(err, v.err) {
			logger.Warn(op+" failed: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), v.code, http.StatusBadRequest)
			return true
		}
	}
	return false
}

func respondInternalError(w http.ResponseWriter, logger *logging.Logger, op, message string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error(op+" failed: operation timed out", "error", err.Error())
		httputil.RespondErrorWithCode(w, "operation timed out, please retry", httputil.CodeTimeout, http.StatusServiceUnavailable)
		return
	}
	logger.Error(op+" failed: internal error", "error", err.Error())
	httputil.RespondErrorWithCode(w, message, httputil.CodeInternalError, http.StatusInternalServerError)
}
