package transport

import (
	"errors"
	"io"
	"net/http"

	"ridematch/internal/ride/application/ports/in"
	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/auth"
	"ridematch/internal/shared/httpx"
	"ridematch/internal/shared/logger"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler обрабатывает HTTP запросы по поездкам
type HTTPHandler struct {
	createRideUC   in.CreateRideUseCase
	listAvailUC    in.ListAvailableUseCase
	updateStatusUC in.UpdateRideStatusUseCase
	log            *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	createRideUC in.CreateRideUseCase,
	listAvailUC in.ListAvailableUseCase,
	updateStatusUC in.UpdateRideStatusUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createRideUC:   createRideUC,
		listAvailUC:    listAvailUC,
		updateStatusUC: updateStatusUC,
		log:            log,
	}
}

// RegisterRoutes регистрирует маршруты; все кроме /health под authMiddleware
func (h *HTTPHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/health", h.handleHealth)

	r.Route("/rides", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.handleCreateRide)
		r.Get("/available", h.handleListAvailable)
		r.Post("/{ride_id}/status", h.handleUpdateStatus)
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpx.RespondJSON(w, h.log, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateRideRequest — тело POST /rides
type CreateRideRequest struct {
	Pickup  string   `json:"pickup_location"`
	Dropoff string   `json:"dropoff_location"`
	Price   *float64 `json:"price,omitempty"`
}

// handleCreateRide обрабатывает POST /rides
func (h *HTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.log, auth.ErrMissingCredential)
		return
	}

	var req CreateRideRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	ride, err := h.createRideUC.Execute(r.Context(), in.CreateRideInput{
		Creator: actor,
		Pickup:  req.Pickup,
		Dropoff: req.Dropoff,
		Price:   req.Price,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.RespondJSON(w, h.log, http.StatusCreated, ride)
}

// handleListAvailable обрабатывает GET /rides/available
func (h *HTTPHandler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	rides, err := h.listAvailUC.Execute(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.RespondJSON(w, h.log, http.StatusOK, rides)
}

// UpdateStatusRequest — альтернатива ?status= в теле запроса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// handleUpdateStatus обрабатывает POST /rides/{ride_id}/status
func (h *HTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.log, auth.ErrMissingCredential)
		return
	}

	raw := r.URL.Query().Get("status")
	if raw == "" {
		var req UpdateStatusRequest
		// пустое тело допустимо: ParseAction("") даст InvalidAction
		if err := httpx.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			httpx.RespondError(w, r, h.log, err)
			return
		}
		raw = req.Status
	}

	action, err := domain.ParseAction(raw)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	ride, err := h.updateStatusUC.Execute(r.Context(), in.UpdateRideStatusInput{
		RideID: chi.URLParam(r, "ride_id"),
		Action: action,
		Actor:  actor,
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.RespondJSON(w, h.log, http.StatusOK, ride)
}
