package transport

import (
	"net/http"

	"ridematch/internal/account/application/ports/in"
	"ridematch/internal/shared/httpx"
	"ridematch/internal/shared/logger"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler — регистрация, логин и обновление токенов
type HTTPHandler struct {
	registerUC in.RegisterUseCase
	loginUC    in.LoginUseCase
	refreshUC  in.RefreshUseCase
	log        *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	registerUC in.RegisterUseCase,
	loginUC in.LoginUseCase,
	refreshUC in.RefreshUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		refreshUC:  refreshUC,
		log:        log,
	}
}

// RegisterRoutes регистрирует /auth/* (без аутентификации)
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/refresh", h.handleRefresh)
	})
}

// RegisterRequest — HTTP DTO регистрации
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// handleRegister обрабатывает POST /auth/register
func (h *HTTPHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	u, err := h.registerUC.Execute(r.Context(), in.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.RespondJSON(w, h.log, http.StatusCreated, u)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin обрабатывает POST /auth/login
func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	pair, err := h.loginUC.Execute(r.Context(), in.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.RespondJSON(w, h.log, http.StatusOK, pair)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleRefresh обрабатывает POST /auth/refresh
func (h *HTTPHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	pair, err := h.refreshUC.Execute(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.RespondJSON(w, h.log, http.StatusOK, pair)
}
