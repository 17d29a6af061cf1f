package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"vntrips/internal/auth"
	"vntrips/internal/bookings/repository"
	"vntrips/internal/bookings/service"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	httputil "vntrips/pkg/http"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	cfg     *config.Config
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, cfg *config.Config) *BookingHandler {
	return &BookingHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.BookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	booking, err := h.service.Create(r.Context(), caller, &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Booking created successfully", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	booking, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Booking retrieved successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) GetByReference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	booking, err := h.service.GetByReference(r.Context(), caller, ps.ByName("reference"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, "GetByReference", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Booking retrieved successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByReference", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter, err := h.extractFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	bookings, total, err := h.service.List(r.Context(), caller, filter, page, limit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, "Bookings retrieved successfully", bookings,
		httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	booking, err := h.service.UpdateStatus(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Booking status updated successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	booking, err := h.service.Cancel(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Booking cancelled successfully", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) extractFilter(r *http.Request) (repository.BookingFilter, error) {
	query := r.URL.Query()
	filter := repository.BookingFilter{
		Status:    model.BookingStatus(query.Get("status")),
		Email:     query.Get("email"),
		ProductID: query.Get("product"),
	}

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		s := query.Get(name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
		}
		*dst = &t
	}

	return filter, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Create)
	router.GET("/api/bookings", h.List)
	router.GET("/api/bookings/id/:id", h.GetByID)
	router.GET("/api/bookings/reference/:reference", h.GetByReference)
	router.PUT("/api/bookings/id/:id/status", h.UpdateStatus)
	router.PUT("/api/bookings/id/:id/cancel", h.Cancel)
}
