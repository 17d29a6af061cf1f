package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"vntrips/internal/auth"
	"vntrips/internal/categories/repository"
	"vntrips/internal/categories/service"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	httputil "vntrips/pkg/http"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"
)

type CategoryHandler struct {
	service service.CategoryService
	cfg     *config.Config
	log     *logger.Logger
}

func NewCategoryHandler(service service.CategoryService, cfg *config.Config) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c model.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := h.service.Create(r.Context(), caller, &c); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Category created successfully", c); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Category retrieved successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, err := h.service.GetBySlug(r.Context(), ps.ByName("slug"))
	if err != nil {
		h.writeError(w, "GetBySlug", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Category retrieved successfully", c); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBySlug", "error", err)
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	withChildren, err := httputil.ExtractBoolParam(r, "includeSubcategories")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	categories, total, err := h.service.List(r.Context(), caller, filter, page, limit,
		withChildren != nil && *withChildren)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if !caller.IsAdmin() {
		httputil.SetListCacheHeaders(w, h.cfg.ListCacheMaxAge, total)
	}
	if err := httputil.WritePaginated(w, "Categories retrieved successfully", categories,
		httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *CategoryHandler) GetHierarchy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	categoryType := model.CategoryType(ps.ByName("type"))
	activeOnly := r.URL.Query().Get("active") != "false"

	roots, err := h.service.GetHierarchy(r.Context(), categoryType, activeOnly)
	if err != nil {
		h.writeError(w, "GetHierarchy", err)
		return
	}

	httputil.SetListCacheHeaders(w, h.cfg.ListCacheMaxAge, int64(len(roots)))
	if err := httputil.WriteSuccess(w, "Category hierarchy retrieved successfully", roots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetHierarchy", "error", err)
	}
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.CategoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	updated, err := h.service.Update(r.Context(), caller, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Category updated successfully", updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	if err := h.service.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CategoryHandler) extractFilter(r *http.Request) (repository.CategoryFilter, error) {
	query := r.URL.Query()
	filter := repository.CategoryFilter{
		Type:   model.CategoryType(query.Get("type")),
		Parent: query.Get("parent"),
		Region: model.Region(query.Get("region")),
	}

	if filter.Type != "" && !filter.Type.Valid() {
		return filter, apperrors.InvalidInput("invalid type parameter: " + string(filter.Type))
	}

	active, err := httputil.ExtractBoolParam(r, "active")
	if err != nil {
		return filter, err
	}
	filter.Active = active

	if s := query.Get("level"); s != "" {
		level, err := strconv.Atoi(s)
		if err != nil || level < 0 || level > service.MaxLevel {
			return filter, apperrors.InvalidInput("invalid level parameter: " + s)
		}
		filter.Level = &level
	}

	return filter, nil
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *CategoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/categories", h.List)
	router.POST("/api/categories", h.Create)
	router.GET("/api/categories/hierarchy/:type", h.GetHierarchy)
	router.GET("/api/categories/id/:id", h.GetByID)
	router.GET("/api/categories/slug/:slug", h.GetBySlug)
	router.PATCH("/api/categories/id/:id", h.Update)
	router.DELETE("/api/categories/id/:id", h.Delete)
}
