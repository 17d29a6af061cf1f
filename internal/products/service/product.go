package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vntrips/internal/auth"
	categorieserrors "vntrips/internal/categories/errors"
	productserrors "vntrips/internal/products/errors"
	"vntrips/internal/products/repository"
	"vntrips/internal/products/validator"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/model"
	"vntrips/pkg/sanitizer"
	"vntrips/pkg/slug"

	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryDirectory is the slice of the category store the catalog needs:
// resolving a domain type to its category IDs and hydrating reference stubs.
type CategoryDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindIDsByType(ctx context.Context, categoryType model.CategoryType, region model.Region) ([]string, error)
	FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error)
}

// ImageStore removes orphaned pictures after a product is deleted.
type ImageStore interface {
	Remove(ctx context.Context, key string) error
}

// CatalogParams are the caller-facing listing filters before category
// resolution turns them into a repository query.
type CatalogParams struct {
	CategoryID      string
	Featured        *bool
	Region          model.Region
	MinPrice        *float64
	MaxPrice        *float64
	Search          string
	SortBy          string
	SortDir         string
	Active          *bool
	IncludeInactive bool
}

type ProductService interface {
	Create(ctx context.Context, caller auth.Caller, domainType model.CategoryType, p *model.Product) error
	GetByID(ctx context.Context, caller auth.Caller, id string) (*model.Product, error)
	GetBySlug(ctx context.Context, caller auth.Caller, s string) (*model.Product, error)
	ListCatalog(ctx context.Context, caller auth.Caller, domainType model.CategoryType, params CatalogParams, page, limit int) ([]*model.Product, int64, error)
	Update(ctx context.Context, caller auth.Caller, id string, updates *model.ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, caller auth.Caller, id string) error
}

type productService struct {
	repo       repository.ProductRepository
	categories CategoryDirectory
	images     ImageStore
	validator  *validator.ProductValidator
	cfg        *config.Config
}

func NewProductService(
	repo repository.ProductRepository,
	categories CategoryDirectory,
	images ImageStore,
	validator *validator.ProductValidator,
	cfg *config.Config,
) ProductService {
	return &productService{
		repo:       repo,
		categories: categories,
		images:     images,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *productService) Create(ctx context.Context, caller auth.Caller, domainType model.CategoryType, p *model.Product) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Only administrators may create products")
	}

	s.sanitize(p)
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title.En)
	}
	p.Rating = model.Rating{}

	category, err := s.categories.FindByID(ctx, p.CategoryID)
	if err != nil {
		if errors.Is(err, categorieserrors.ErrNotFound) || errors.Is(err, categorieserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Unknown category: " + p.CategoryID)
		}
		s.cfg.Log.Error("Failed to load product category", "category", p.CategoryID, "error", err)
		return apperrors.Internal("Failed to load category", err)
	}
	if category.Type != domainType {
		return apperrors.InvalidInput(fmt.Sprintf("Category %s belongs to %s, not %s",
			p.CategoryID, category.Type, domainType))
	}

	if err := s.validator.Validate(p, category.Type); err != nil {
		s.cfg.Log.Warn("Product validation failed",
			"title_en", p.Title.En,
			"category", p.CategoryID,
			"error", err,
		)
		return apperrors.Validation("Product validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken, err := s.repo.SlugTaken(sessCtx, p.Slug, "")
		if err != nil {
			return fmt.Errorf("failed to check slug availability: %w", err)
		}
		if taken {
			return apperrors.SlugExists(p.Slug)
		}

		if err := s.repo.Create(sessCtx, p); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to create product",
			"title_en", p.Title.En,
			"slug", p.Slug,
			"error", err,
		)
		return apperrors.Internal("Failed to create product", err)
	}

	p.Category = &model.CategoryRef{ID: category.ID, Name: category.Name, Slug: category.Slug, Type: category.Type}

	s.cfg.Log.Info("Product created successfully",
		"id", p.ID,
		"slug", p.Slug,
		"category", p.CategoryID,
		"type", category.Type,
	)

	return nil
}

func (s *productService) GetByID(ctx context.Context, caller auth.Caller, id string) (*model.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Product ID cannot be empty")
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	if !p.IsActive && !caller.IsAdmin() {
		return nil, apperrors.NotFoundWithID("Product", id)
	}

	s.attachCategory(ctx, p)
	return p, nil
}

func (s *productService) GetBySlug(ctx context.Context, caller auth.Caller, productSlug string) (*model.Product, error) {
	if productSlug == "" {
		return nil, apperrors.InvalidInput("Product slug cannot be empty")
	}

	p, err := s.repo.FindBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, productserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Product")
		}
		s.cfg.Log.Error("Failed to get product by slug", "slug", productSlug, "error", err)
		return nil, apperrors.Internal("Failed to retrieve product", err)
	}
	if !p.IsActive && !caller.IsAdmin() {
		return nil, apperrors.NotFound("Product")
	}

	s.attachCategory(ctx, p)
	return p, nil
}

func (s *productService) ListCatalog(ctx context.Context, caller auth.Caller, domainType model.CategoryType, params CatalogParams, page, limit int) ([]*model.Product, int64, error) {
	if !domainType.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown category type %q", domainType))
	}
	if params.SortBy != "" && !repository.ValidSortKey(params.SortBy) {
		return nil, 0, apperrors.InvalidInput("invalid sort parameter: " + params.SortBy)
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return nil, 0, apperrors.InvalidInput("minPrice cannot exceed maxPrice")
	}
	if params.Region != "" && !params.Region.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown region %q", params.Region))
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := int64(page-1) * int64(limit)

	// Region lives on the category, so the region filter narrows the
	// resolved category ids rather than the product query.
	categoryIDs, err := s.categories.FindIDsByType(ctx, domainType, params.Region)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve domain categories", "type", domainType, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve products", err)
	}
	// A domain with no matching categories has no products. Skip the query.
	if len(categoryIDs) == 0 {
		return []*model.Product{}, 0, nil
	}

	q := repository.CatalogQuery{
		Featured: params.Featured,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Search:   params.Search,
		SortBy:   params.SortBy,
		SortDir:  params.SortDir,
	}

	if params.CategoryID != "" {
		if !contains(categoryIDs, params.CategoryID) {
			return []*model.Product{}, 0, nil
		}
		q.CategoryID = params.CategoryID
	} else {
		q.CategoryIDs = categoryIDs
	}

	// Guests only ever see active products. Admins may pass an explicit
	// active filter, or includeInactive to lift the filter entirely.
	if caller.IsAdmin() {
		if params.Active != nil {
			q.Active = params.Active
		} else if !params.IncludeInactive {
			active := true
			q.Active = &active
		}
	} else {
		active := true
		q.Active = &active
	}

	var count int64
	var products []*model.Product
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, q)
		if err != nil {
			s.cfg.Log.Error("Failed to count products", "type", domainType, "error", err)
			errCount = apperrors.Internal("Failed to count products", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		products, err = s.repo.Search(ctx, q, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list products",
				"type", domainType,
				"page", page,
				"limit", limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve products", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.attachCategories(ctx, products)
	return products, count, nil
}

func (s *productService) Update(ctx context.Context, caller auth.Caller, id string, updates *model.ProductUpdate) (*model.Product, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may update products")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Product ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Product update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)

	category, err := s.categories.FindByID(ctx, merged.CategoryID)
	if err != nil {
		if errors.Is(err, categorieserrors.ErrNotFound) || errors.Is(err, categorieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Unknown category: " + merged.CategoryID)
		}
		s.cfg.Log.Error("Failed to load product category", "category", merged.CategoryID, "error", err)
		return nil, apperrors.Internal("Failed to load category", err)
	}

	// Recategorizing across domains would silently turn a tour into a transfer.
	if merged.CategoryID != existing.CategoryID {
		current, err := s.categories.FindByID(ctx, existing.CategoryID)
		if err == nil && current.Type != category.Type {
			return nil, apperrors.InvalidInput("Products cannot move between catalog domains")
		}
	}

	slugChanged := false
	if merged.Title.En != existing.Title.En {
		merged.Slug = slug.Make(merged.Title.En)
		slugChanged = merged.Slug != existing.Slug
	}

	if err := s.validator.Validate(merged, category.Type); err != nil {
		s.cfg.Log.Warn("Product validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Product validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if slugChanged {
			taken, err := s.repo.SlugTaken(sessCtx, merged.Slug, id)
			if err != nil {
				return fmt.Errorf("failed to check slug availability: %w", err)
			}
			if taken {
				return apperrors.SlugExists(merged.Slug)
			}
		}

		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to update product", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update product", err)
	}

	merged.Category = &model.CategoryRef{ID: category.ID, Name: category.Name, Slug: category.Slug, Type: category.Type}

	s.cfg.Log.Info("Product updated successfully", "id", id, "slug", merged.Slug)
	return merged, nil
}

func (s *productService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Only administrators may delete products")
	}
	if id == "" {
		return apperrors.InvalidInput("Product ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, productserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Product", id)
		}
		s.cfg.Log.Error("Failed to delete product", "id", id, "error", err)
		return apperrors.Internal("Failed to delete product", err)
	}

	s.removeImages(ctx, existing)

	s.cfg.Log.Info("Product deleted successfully", "id", id, "slug", existing.Slug)
	return nil
}

func (s *productService) attachCategory(ctx context.Context, p *model.Product) {
	refs, err := s.categories.FindRefs(ctx, []string{p.CategoryID})
	if err != nil {
		s.cfg.Log.Warn("Failed to hydrate product category", "product", p.ID, "error", err)
		return
	}
	p.Category = refs[p.CategoryID]
}

func (s *productService) attachCategories(ctx context.Context, products []*model.Product) {
	if len(products) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.CategoryID]; ok {
			continue
		}
		seen[p.CategoryID] = struct{}{}
		ids = append(ids, p.CategoryID)
	}

	refs, err := s.categories.FindRefs(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to hydrate product categories", "error", err)
		return
	}
	for _, p := range products {
		p.Category = refs[p.CategoryID]
	}
}

func (s *productService) removeImages(ctx context.Context, p *model.Product) {
	if s.images == nil {
		return
	}
	for _, img := range p.Images {
		if img.PublicID == "" {
			continue
		}
		if err := s.images.Remove(ctx, img.PublicID); err != nil {
			s.cfg.Log.Warn("Failed to remove product image; leaving orphan",
				"product", p.ID,
				"public_id", img.PublicID,
				"error", err,
			)
		}
	}
}

func (s *productService) translateLookupError(err error, id string) error {
	if errors.Is(err, productserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Product", id)
	}
	if errors.Is(err, productserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid product ID format")
	}
	s.cfg.Log.Error("Failed to load product", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve product", err)
}

func (s *productService) sanitize(p *model.Product) {
	p.Title = sanitizer.NormalizeLocalized(p.Title)
	p.Description = sanitizer.NormalizeLocalized(p.Description)
	p.ShortDescription = sanitizer.NormalizeLocalized(p.ShortDescription)
	p.Location = sanitizer.NormalizeLocalized(p.Location)
}

func (s *productService) mergeUpdates(existing *model.Product, updates *model.ProductUpdate) *model.Product {
	merged := *existing

	if updates.Title != nil {
		merged.Title = sanitizer.NormalizeLocalized(*updates.Title)
	}
	if updates.Description != nil {
		merged.Description = sanitizer.NormalizeLocalized(*updates.Description)
	}
	if updates.ShortDescription != nil {
		merged.ShortDescription = sanitizer.NormalizeLocalized(*updates.ShortDescription)
	}
	if updates.Location != nil {
		merged.Location = sanitizer.NormalizeLocalized(*updates.Location)
	}
	if updates.CategoryID != "" {
		merged.CategoryID = updates.CategoryID
	}
	if updates.Pricing != nil {
		merged.Pricing = *updates.Pricing
	}
	if updates.Duration != nil {
		merged.Duration = updates.Duration
	}
	if updates.TransferService != nil {
		merged.TransferService = updates.TransferService
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.Highlights != nil {
		merged.Highlights = *updates.Highlights
	}
	if updates.Itinerary != nil {
		merged.Itinerary = *updates.Itinerary
	}
	if updates.Included != nil {
		merged.Included = *updates.Included
	}
	if updates.Excluded != nil {
		merged.Excluded = *updates.Excluded
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.IsFeatured != nil {
		merged.IsFeatured = *updates.IsFeatured
	}
	if updates.SortOrder != nil {
		merged.SortOrder = *updates.SortOrder
	}

	merged.ID = existing.ID
	merged.Rating = existing.Rating
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
