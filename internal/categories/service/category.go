package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vntrips/internal/auth"
	categorieserrors "vntrips/internal/categories/errors"
	"vntrips/internal/categories/repository"
	"vntrips/internal/categories/validator"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/model"
	"vntrips/pkg/sanitizer"
	"vntrips/pkg/slug"

	"go.mongodb.org/mongo-driver/mongo"
)

// MaxLevel bounds the category tree: 0 = root, 2 = deepest.
const MaxLevel = 2

// ProductCounter is the slice of the product store needed to guard deletes.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}

// ImageStore removes orphaned pictures after a category is deleted. Failures
// are logged and swallowed: the document mutation has already committed.
type ImageStore interface {
	Remove(ctx context.Context, key string) error
}

type CategoryService interface {
	Create(ctx context.Context, caller auth.Caller, c *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, s string) (*model.Category, error)
	List(ctx context.Context, caller auth.Caller, filter repository.CategoryFilter, page, limit int, withChildren bool) ([]*model.Category, int64, error)
	GetHierarchy(ctx context.Context, categoryType model.CategoryType, activeOnly bool) ([]*model.Category, error)
	Update(ctx context.Context, caller auth.Caller, id string, updates *model.CategoryUpdate) (*model.Category, error)
	Delete(ctx context.Context, caller auth.Caller, id string) error
}

type categoryService struct {
	repo      repository.CategoryRepository
	products  ProductCounter
	images    ImageStore
	validator *validator.CategoryValidator
	cfg       *config.Config
}

func NewCategoryService(
	repo repository.CategoryRepository,
	products ProductCounter,
	images ImageStore,
	validator *validator.CategoryValidator,
	cfg *config.Config,
) CategoryService {
	return &categoryService{
		repo:      repo,
		products:  products,
		images:    images,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *categoryService) Create(ctx context.Context, caller auth.Caller, c *model.Category) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Only administrators may create categories")
	}

	s.sanitize(c)
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name.En)
	}
	if c.Region == "" {
		c.Region = model.RegionAll
	}

	if err := s.validator.Validate(c); err != nil {
		s.cfg.Log.Warn("Category validation failed",
			"name_en", c.Name.En,
			"type", c.Type,
			"error", err,
		)
		return apperrors.Validation("Category validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken, err := s.repo.SlugTaken(sessCtx, c.Slug, "")
		if err != nil {
			return fmt.Errorf("failed to check slug availability: %w", err)
		}
		if taken {
			return apperrors.SlugExists(c.Slug)
		}

		if c.Parent != "" {
			parent, err := s.repo.FindByID(sessCtx, c.Parent)
			if err != nil {
				if errors.Is(err, categorieserrors.ErrNotFound) || errors.Is(err, categorieserrors.ErrInvalidID) {
					return apperrors.New(apperrors.CodeParentNotFound, "Parent category not found", 404).
						WithDetails(map[string]any{"parent": c.Parent})
				}
				return fmt.Errorf("failed to load parent category: %w", err)
			}
			if parent.Type != c.Type {
				return apperrors.InvalidInput("Parent category type does not match")
			}
			c.Level = parent.Level + 1
			if c.Level > MaxLevel {
				return apperrors.New(apperrors.CodeLevelTooDeep,
					fmt.Sprintf("Category nesting is limited to %d levels", MaxLevel+1), 409)
			}
		} else {
			c.Level = 0
		}

		if err := s.repo.Create(sessCtx, c); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		if c.Parent != "" {
			if err := s.repo.PushSubcategory(sessCtx, c.Parent, c.ID); err != nil {
				return fmt.Errorf("failed to register subcategory with parent: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		s.cfg.Log.Error("Failed to create category",
			"name_en", c.Name.En,
			"slug", c.Slug,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Category created successfully",
		"id", c.ID,
		"slug", c.Slug,
		"type", c.Type,
		"level", c.Level,
	)

	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Category ID cannot be empty")
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return c, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, categorySlug string) (*model.Category, error) {
	if categorySlug == "" {
		return nil, apperrors.InvalidInput("Category slug cannot be empty")
	}

	c, err := s.repo.FindBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, categorieserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Category")
		}
		s.cfg.Log.Error("Failed to get category by slug", "slug", categorySlug, "error", err)
		return nil, apperrors.Internal("Failed to retrieve category", err)
	}

	return c, nil
}

func (s *categoryService) List(ctx context.Context, caller auth.Caller, filter repository.CategoryFilter, page, limit int, withChildren bool) ([]*model.Category, int64, error) {
	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := int64(page-1) * int64(limit)

	if !caller.IsAdmin() && filter.Active == nil {
		active := true
		filter.Active = &active
	}

	var count int64
	var categories []*model.Category
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count categories", "error", err)
			errCount = apperrors.Internal("Failed to count categories", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		categories, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list categories",
				"page", page,
				"limit", limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve categories", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	// Direct children only; the hierarchy endpoint expands the full tree.
	if withChildren {
		activeOnly := filter.Active != nil && *filter.Active
		for _, c := range categories {
			children, err := s.repo.FindByParent(ctx, c.ID, activeOnly)
			if err != nil {
				s.cfg.Log.Error("Failed to load subcategories", "parent", c.ID, "error", err)
				return nil, 0, apperrors.Internal("Failed to retrieve subcategories", err)
			}
			c.Children = children
		}
	}

	return categories, count, nil
}

// GetHierarchy expands the full bounded tree: roots, children, grandchildren.
func (s *categoryService) GetHierarchy(ctx context.Context, categoryType model.CategoryType, activeOnly bool) ([]*model.Category, error) {
	if !categoryType.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown category type %q", categoryType))
	}

	roots, err := s.repo.FindRoots(ctx, categoryType, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to load category hierarchy", "type", categoryType, "error", err)
		return nil, apperrors.Internal("Failed to retrieve category hierarchy", err)
	}

	for _, root := range roots {
		if err := s.populateChildren(ctx, root, activeOnly, 1); err != nil {
			return nil, err
		}
	}

	return roots, nil
}

func (s *categoryService) populateChildren(ctx context.Context, parent *model.Category, activeOnly bool, depth int) error {
	if depth > MaxLevel {
		return nil
	}

	children, err := s.repo.FindByParent(ctx, parent.ID, activeOnly)
	if err != nil {
		s.cfg.Log.Error("Failed to load subcategories", "parent", parent.ID, "error", err)
		return apperrors.Internal("Failed to retrieve category hierarchy", err)
	}

	parent.Children = children
	for _, child := range children {
		if err := s.populateChildren(ctx, child, activeOnly, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *categoryService) Update(ctx context.Context, caller auth.Caller, id string, updates *model.CategoryUpdate) (*model.Category, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may update categories")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Category ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Category update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)

	// Slug follows the English name: recompute only when it changed.
	slugChanged := false
	if merged.Name.En != existing.Name.En {
		merged.Slug = slug.Make(merged.Name.En)
		slugChanged = merged.Slug != existing.Slug
	}

	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Category validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Category validation failed", map[string]any{"error": err.Error()})
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
			return fmt.Errorf("failed to update category: %w", err)
		}
		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to update category", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update category", err)
	}

	s.cfg.Log.Info("Category updated successfully", "id", id, "slug", merged.Slug)
	return merged, nil
}

// Delete restricts: a category with products or child categories cannot be
// removed. The parent's subcategories entry is pulled inside the same
// transaction; image removal is best-effort afterwards.
func (s *categoryService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Only administrators may delete categories")
	}
	if id == "" {
		return apperrors.InvalidInput("Category ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLookupError(err, id)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		productCount, err := s.products.CountByCategory(sessCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count category products: %w", err)
		}
		if productCount > 0 {
			return apperrors.ConflictWithCode(apperrors.CodeCategoryHasProducts,
				fmt.Sprintf("Category still has %d product(s)", productCount))
		}

		childCount, err := s.repo.CountChildren(sessCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count subcategories: %w", err)
		}
		if childCount > 0 {
			return apperrors.ConflictWithCode(apperrors.CodeCategoryHasChildren,
				fmt.Sprintf("Category still has %d subcategorie(s)", childCount))
		}

		if err := s.repo.Delete(sessCtx, id); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}

		if existing.Parent != "" {
			if err := s.repo.PullSubcategory(sessCtx, existing.Parent, id); err != nil {
				return fmt.Errorf("failed to detach from parent: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to delete category", "id", id, "error", err)
		return apperrors.Internal("Failed to delete category", err)
	}

	s.removeImages(ctx, existing)

	s.cfg.Log.Info("Category deleted successfully", "id", id, "slug", existing.Slug)
	return nil
}

func (s *categoryService) removeImages(ctx context.Context, c *model.Category) {
	if s.images == nil {
		return
	}
	for _, img := range c.Images {
		if img.PublicID == "" {
			continue
		}
		if err := s.images.Remove(ctx, img.PublicID); err != nil {
			s.cfg.Log.Warn("Failed to remove category image; leaving orphan",
				"category", c.ID,
				"public_id", img.PublicID,
				"error", err,
			)
		}
	}
}

func (s *categoryService) translateLookupError(err error, id string) error {
	if errors.Is(err, categorieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Category", id)
	}
	if errors.Is(err, categorieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid category ID format")
	}
	s.cfg.Log.Error("Failed to load category", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve category", err)
}

func (s *categoryService) sanitize(c *model.Category) {
	c.Name = sanitizer.NormalizeLocalized(c.Name)
	c.Description = sanitizer.NormalizeLocalized(c.Description)
}

func (s *categoryService) mergeUpdates(existing *model.Category, updates *model.CategoryUpdate) *model.Category {
	merged := *existing

	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeLocalized(*updates.Name)
	}
	if updates.Description != nil {
		merged.Description = sanitizer.NormalizeLocalized(*updates.Description)
	}
	if updates.Region != "" {
		merged.Region = updates.Region
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.SortOrder != nil {
		merged.SortOrder = *updates.SortOrder
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.Transfer != nil {
		merged.Transfer = updates.Transfer
	}

	merged.ID = existing.ID
	merged.Type = existing.Type
	merged.Parent = existing.Parent
	merged.Level = existing.Level
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
