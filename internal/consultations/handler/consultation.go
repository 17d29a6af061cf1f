package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"vntrips/internal/auth"
	"vntrips/internal/consultations/repository"
	"vntrips/internal/consultations/service"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	httputil "vntrips/pkg/http"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"
)

type ConsultationHandler struct {
	service service.ConsultationService
	cfg     *config.Config
	log     *logger.Logger
}

func NewConsultationHandler(service service.ConsultationService, cfg *config.Config) *ConsultationHandler {
	return &ConsultationHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

type statusUpdateRequest struct {
	Status   model.ConsultationStatus   `json:"status"`
	Priority model.ConsultationPriority `json:"priority,omitempty"`
}

func (h *ConsultationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c model.Consultation
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &c); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Consultation request received", c); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ConsultationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	c, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Consultation retrieved successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ConsultationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := repository.ConsultationFilter{
		Status:   model.ConsultationStatus(query.Get("status")),
		Priority: model.ConsultationPriority(query.Get("priority")),
		Email:    query.Get("email"),
	}

	caller := auth.CallerFrom(r.Context())
	consultations, total, err := h.service.List(r.Context(), caller, filter, page, limit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, "Consultations retrieved successfully", consultations,
		httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *ConsultationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	c, err := h.service.UpdateStatus(r.Context(), caller, ps.ByName("id"), req.Status, req.Priority)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Consultation updated successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *ConsultationHandler) AddNote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var note model.AdminNote
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		h.writeError(w, "AddNote", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	c, err := h.service.AddNote(r.Context(), caller, ps.ByName("id"), note)
	if err != nil {
		h.writeError(w, "AddNote", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Note added successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "AddNote", "error", err)
	}
}

func (h *ConsultationHandler) AddContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var record model.ContactRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.writeError(w, "AddContact", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	c, err := h.service.AddContact(r.Context(), caller, ps.ByName("id"), record)
	if err != nil {
		h.writeError(w, "AddContact", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Contact recorded successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "AddContact", "error", err)
	}
}

func (h *ConsultationHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *ConsultationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/consultations", h.Create)
	router.GET("/api/consultations", h.List)
	router.GET("/api/consultations/id/:id", h.GetByID)
	router.PUT("/api/consultations/id/:id/status", h.UpdateStatus)
	router.POST("/api/consultations/id/:id/notes", h.AddNote)
	router.POST("/api/consultations/id/:id/contacts", h.AddContact)
}
