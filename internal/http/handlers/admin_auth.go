package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/dental-voice-api/internal/auth"
	"github.com/wolfman30/dental-voice-api/internal/http/middleware"
	"github.com/wolfman30/dental-voice-api/internal/outcome"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

const (
	msgIncorrectLogin   = "Incorrect email or password"
	msgEmailRegistered  = "Email already registered"
	msgCreateUserFailed = "Could not create user"
)

// AdminAccounts is the admin account surface. *auth.Service implements it.
type AdminAccounts interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateUser(ctx context.Context, email, password string) (*auth.PublicUser, error)
}

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	ObserveLogin(success bool)
}

// AdminAuthHandler serves the admin login, account creation and identity routes.
type AdminAuthHandler struct {
	accounts AdminAccounts
	recorder LoginRecorder
	logger   *logging.Logger
}

func NewAdminAuthHandler(accounts AdminAccounts, recorder LoginRecorder, logger *logging.Logger) *AdminAuthHandler {
	if accounts == nil {
		panic("handlers: admin accounts required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAuthHandler{accounts: accounts, recorder: recorder, logger: logger}
}

// TokenResponse is the OAuth2 password-flow style login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /admin/token with a form-encoded username (the email) and password.
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.rejectLogin(w)
		return
	}
	token, err := h.accounts.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("admin login failed", "error", err)
		}
		h.rejectLogin(w)
		return
	}
	if h.recorder != nil {
		h.recorder.ObserveLogin(true)
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AdminAuthHandler) rejectLogin(w http.ResponseWriter) {
	if h.recorder != nil {
		h.recorder.ObserveLogin(false)
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, msgIncorrectLogin)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserResponse is returned with 201 when an admin is created.
type CreateUserResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
	UserID int64  `json:"user_id"`
}

// CreateUser handles POST /admin/create-user.
func (h *AdminAuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.accounts.CreateUser(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrEmailRegistered):
		writeDetail(w, http.StatusBadRequest, msgEmailRegistered)
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, auth.ErrDuplicateUser):
		writeDetail(w, http.StatusConflict, "User with this email or username already exists")
		return
	default:
		h.logger.Error("admin create user failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, msgCreateUserFailed)
		return
	}
	writeJSON(w, http.StatusCreated, CreateUserResponse{
		Status: string(outcome.StatusSuccess),
		Email:  user.Email,
		UserID: user.ID,
	})
}

// Me handles GET /admin/me.
func (h *AdminAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.AdminUserFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, middleware.MsgInvalidCredentials)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
