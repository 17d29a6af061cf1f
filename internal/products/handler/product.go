package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"vntrips/internal/auth"
	"vntrips/internal/products/service"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	httputil "vntrips/pkg/http"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"
)

type ProductHandler struct {
	service service.ProductService
	cfg     *config.Config
	log     *logger.Logger
}

func NewProductHandler(service service.ProductService, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *ProductHandler) ListTours(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, model.TypeVietnamTours)
}

func (h *ProductHandler) ListTransfers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, model.TypeTransferServices)
}

func (h *ProductHandler) CreateTour(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.create(w, r, model.TypeVietnamTours)
}

func (h *ProductHandler) CreateTransfer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.create(w, r, model.TypeTransferServices)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, domainType model.CategoryType) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	params, err := h.extractParams(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	products, total, err := h.service.ListCatalog(r.Context(), caller, domainType, params, page, limit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if !caller.IsAdmin() {
		httputil.SetListCacheHeaders(w, h.cfg.ListCacheMaxAge, total)
	}
	if err := httputil.WritePaginated(w, "Products retrieved successfully", products,
		httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request, domainType model.CategoryType) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := h.service.Create(r.Context(), caller, domainType, &p); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, "Product created successfully", p); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	p, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Product retrieved successfully", p); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	p, err := h.service.GetBySlug(r.Context(), caller, ps.ByName("slug"))
	if err != nil {
		h.writeError(w, "GetBySlug", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Product retrieved successfully", p); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBySlug", "error", err)
	}
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ProductUpdate
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

	if err := httputil.WriteSuccess(w, "Product updated successfully", updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller := auth.CallerFrom(r.Context())
	if err := h.service.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ProductHandler) extractParams(r *http.Request) (service.CatalogParams, error) {
	query := r.URL.Query()
	params := service.CatalogParams{
		CategoryID: query.Get("category"),
		Region:     model.Region(query.Get("region")),
		Search:     query.Get("search"),
		SortBy:     query.Get("sortBy"),
		SortDir:    query.Get("sortDir"),
	}

	featured, err := httputil.ExtractBoolParam(r, "featured")
	if err != nil {
		return params, err
	}
	params.Featured = featured

	params.MinPrice, err = httputil.ExtractFloatParam(r, "minPrice")
	if err != nil {
		return params, err
	}
	params.MaxPrice, err = httputil.ExtractFloatParam(r, "maxPrice")
	if err != nil {
		return params, err
	}

	// Admin-only visibility controls; the service ignores them for guests.
	params.Active, err = httputil.ExtractBoolParam(r, "active")
	if err != nil {
		return params, err
	}
	inactive, err := httputil.ExtractBoolParam(r, "includeInactive")
	if err != nil {
		return params, err
	}
	params.IncludeInactive = inactive != nil && *inactive

	return params, nil
}

func (h *ProductHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *ProductHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/tours", h.ListTours)
	router.POST("/api/tours", h.CreateTour)
	router.GET("/api/transfers", h.ListTransfers)
	router.POST("/api/transfers", h.CreateTransfer)
	router.GET("/api/products/id/:id", h.GetByID)
	router.GET("/api/products/slug/:slug", h.GetBySlug)
	router.PATCH("/api/products/id/:id", h.Update)
	router.DELETE("/api/products/id/:id", h.Delete)
}
