package service

import (
	"context"
	"testing"

	"vntrips/internal/auth"
	categorieserrors "vntrips/internal/categories/errors"
	productserrors "vntrips/internal/products/errors"
	"vntrips/internal/products/repository"
	"vntrips/internal/products/validator"
	"vntrips/pkg/config"
	mongotx "vntrips/pkg/db/mongo"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	tourCategoryID     = "65a000000000000000000101"
	transferCategoryID = "65a000000000000000000102"
)

type mockProductRepository struct {
	createFunc    func(ctx context.Context, p *model.Product) error
	findByIDFunc  func(ctx context.Context, id string) (*model.Product, error)
	slugTakenFunc func(ctx context.Context, slug, excludeID string) (bool, error)
	searchFunc    func(ctx context.Context, q repository.CatalogQuery, limit int, offset int64) ([]*model.Product, error)
	countFunc     func(ctx context.Context, q repository.CatalogQuery) (int64, error)

	capturedQuery *repository.CatalogQuery
	searchCalls   int
}

func (m *mockProductRepository) Create(ctx context.Context, p *model.Product) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = "65a000000000000000000201"
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, productserrors.ErrNotFound
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return nil, productserrors.ErrNotFound
}

func (m *mockProductRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if m.slugTakenFunc != nil {
		return m.slugTakenFunc(ctx, slug, excludeID)
	}
	return false, nil
}

func (m *mockProductRepository) Search(ctx context.Context, q repository.CatalogQuery, limit int, offset int64) ([]*model.Product, error) {
	m.capturedQuery = &q
	m.searchCalls++
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q, limit, offset)
	}
	return []*model.Product{}, nil
}

func (m *mockProductRepository) Count(ctx context.Context, q repository.CatalogQuery) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, q)
	}
	return 0, nil
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return 0, nil
}

func (m *mockProductRepository) Update(ctx context.Context, id string, p *model.Product) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockProductRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockCategoryDirectory struct {
	categories  map[string]*model.Category
	idsByType   map[model.CategoryType][]string
	idsByRegion map[model.Region][]string

	capturedRegion model.Region
}

func newMockDirectory() *mockCategoryDirectory {
	return &mockCategoryDirectory{
		categories: map[string]*model.Category{
			tourCategoryID: {
				ID:   tourCategoryID,
				Slug: "day-trips",
				Name: model.LocalizedText{En: "Day Trips", Vi: "Tour trong ngày"},
				Type: model.TypeVietnamTours,
			},
			transferCategoryID: {
				ID:   transferCategoryID,
				Slug: "airport-transfers",
				Name: model.LocalizedText{En: "Airport Transfers", Vi: "Đưa đón sân bay"},
				Type: model.TypeTransferServices,
			},
		},
		idsByType: map[model.CategoryType][]string{
			model.TypeVietnamTours:     {tourCategoryID},
			model.TypeTransferServices: {transferCategoryID},
		},
	}
}

func (m *mockCategoryDirectory) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, categorieserrors.ErrNotFound
}

func (m *mockCategoryDirectory) FindIDsByType(ctx context.Context, categoryType model.CategoryType, region model.Region) ([]string, error) {
	m.capturedRegion = region
	if region != "" && region != model.RegionAll {
		return m.idsByRegion[region], nil
	}
	return m.idsByType[categoryType], nil
}

func (m *mockCategoryDirectory) FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error) {
	refs := make(map[string]*model.CategoryRef, len(ids))
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			refs[id] = &model.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug, Type: c.Type}
		}
	}
	return refs, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func admin() auth.Caller {
	return auth.Caller{ID: "65a0000000000000000000aa", Role: auth.RoleAdmin}
}

func newTestService(repo *mockProductRepository, dir *mockCategoryDirectory) ProductService {
	return NewProductService(repo, dir, nil, validator.NewProductValidator(), testConfig())
}

func validTour() *model.Product {
	return &model.Product{
		Title:      model.LocalizedText{En: "Ninh Binh Day Trip", Vi: "Tour Ninh Bình trong ngày"},
		CategoryID: tourCategoryID,
		Pricing:    model.Pricing{Adult: 49, Child: 25, Currency: "USD"},
		Duration:   &model.Duration{Days: 1},
		IsActive:   true,
	}
}

func TestCreate_TourSlugAndCategory(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	p := validTour()
	if err := svc.Create(context.Background(), admin(), model.TypeVietnamTours, p); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.Slug != "ninh-binh-day-trip" {
		t.Errorf("slug = %q, want %q", p.Slug, "ninh-binh-day-trip")
	}
	if p.Category == nil || p.Category.Type != model.TypeVietnamTours {
		t.Errorf("category ref not attached: %+v", p.Category)
	}
}

func TestCreate_RejectsCategoryFromOtherDomain(t *testing.T) {
	svc := newTestService(&mockProductRepository{}, newMockDirectory())

	p := validTour()
	p.CategoryID = transferCategoryID

	err := svc.Create(context.Background(), admin(), model.TypeVietnamTours, p)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestCreate_TourRequiresDuration(t *testing.T) {
	svc := newTestService(&mockProductRepository{}, newMockDirectory())

	p := validTour()
	p.Duration = nil

	err := svc.Create(context.Background(), admin(), model.TypeVietnamTours, p)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
}

func TestCreate_SlugConflict(t *testing.T) {
	repo := &mockProductRepository{
		slugTakenFunc: func(ctx context.Context, slug, excludeID string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(repo, newMockDirectory())

	err := svc.Create(context.Background(), admin(), model.TypeVietnamTours, validTour())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeSlugExists {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeSlugExists)
	}
}

func TestListCatalog_EmptyDomainShortCircuits(t *testing.T) {
	repo := &mockProductRepository{}
	dir := newMockDirectory()
	dir.idsByType[model.TypeTransferServices] = nil
	svc := newTestService(repo, dir)

	products, total, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeTransferServices, CatalogParams{}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Errorf("expected empty page, got total=%d len=%d", total, len(products))
	}
	if repo.searchCalls != 0 {
		t.Errorf("repository queried despite empty domain: %d calls", repo.searchCalls)
	}
}

func TestListCatalog_GuestSeesOnlyActive(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	_, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if repo.capturedQuery == nil || repo.capturedQuery.Active == nil || !*repo.capturedQuery.Active {
		t.Error("guest listing did not force the active filter")
	}
}

func TestListCatalog_AdminCanIncludeInactive(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	_, _, err := svc.ListCatalog(context.Background(), admin(),
		model.TypeVietnamTours, CatalogParams{IncludeInactive: true}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if repo.capturedQuery.Active != nil {
		t.Error("admin includeInactive listing still filtered to active")
	}
}

func TestListCatalog_RegionNarrowsCategories(t *testing.T) {
	repo := &mockProductRepository{}
	dir := newMockDirectory()
	dir.idsByRegion = map[model.Region][]string{model.RegionNorth: {tourCategoryID}}
	svc := newTestService(repo, dir)

	_, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{Region: model.RegionNorth}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if dir.capturedRegion != model.RegionNorth {
		t.Errorf("region not resolved through categories, got %q", dir.capturedRegion)
	}
	if len(repo.capturedQuery.CategoryIDs) != 1 || repo.capturedQuery.CategoryIDs[0] != tourCategoryID {
		t.Errorf("query category ids = %v, want the region-matched id", repo.capturedQuery.CategoryIDs)
	}
}

func TestListCatalog_RegionWithoutCategoriesIsEmpty(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	products, total, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{Region: model.RegionCentral}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if total != 0 || len(products) != 0 || repo.searchCalls != 0 {
		t.Errorf("expected empty page without queries, got total=%d len=%d calls=%d",
			total, len(products), repo.searchCalls)
	}
}

func TestListCatalog_RejectsUnknownRegion(t *testing.T) {
	svc := newTestService(&mockProductRepository{}, newMockDirectory())

	_, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{Region: "west"}, 1, 10)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestListCatalog_AdminActiveFilter(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	active := false
	_, _, err := svc.ListCatalog(context.Background(), admin(),
		model.TypeVietnamTours, CatalogParams{Active: &active}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if repo.capturedQuery.Active == nil || *repo.capturedQuery.Active {
		t.Error("admin active=false filter was not applied")
	}

	// Guests cannot use it to see inactive products.
	_, _, err = svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{Active: &active}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if repo.capturedQuery.Active == nil || !*repo.capturedQuery.Active {
		t.Error("guest listing did not override the active filter")
	}
}

func TestListCatalog_UnknownCategoryFilterReturnsEmpty(t *testing.T) {
	repo := &mockProductRepository{}
	svc := newTestService(repo, newMockDirectory())

	products, total, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{CategoryID: transferCategoryID}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if total != 0 || len(products) != 0 {
		t.Errorf("expected empty page for out-of-domain category, got total=%d len=%d", total, len(products))
	}
}

func TestListCatalog_RejectsBadSortKey(t *testing.T) {
	svc := newTestService(&mockProductRepository{}, newMockDirectory())

	_, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{SortBy: "popularity"}, 1, 10)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestListCatalog_RejectsInvertedPriceRange(t *testing.T) {
	svc := newTestService(&mockProductRepository{}, newMockDirectory())

	minPrice, maxPrice := 100.0, 50.0
	_, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{MinPrice: &minPrice, MaxPrice: &maxPrice}, 1, 10)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}

func TestListCatalog_AttachesCategoryRefs(t *testing.T) {
	stored := validTour()
	stored.ID = "65a000000000000000000201"
	repo := &mockProductRepository{
		searchFunc: func(ctx context.Context, q repository.CatalogQuery, limit int, offset int64) ([]*model.Product, error) {
			return []*model.Product{stored}, nil
		},
		countFunc: func(ctx context.Context, q repository.CatalogQuery) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, newMockDirectory())

	products, _, err := svc.ListCatalog(context.Background(), auth.Guest(),
		model.TypeVietnamTours, CatalogParams{}, 1, 10)
	if err != nil {
		t.Fatalf("ListCatalog returned error: %v", err)
	}
	if products[0].Category == nil || products[0].Category.Slug != "day-trips" {
		t.Errorf("category ref not hydrated: %+v", products[0].Category)
	}
}

func TestGetByID_HidesInactiveFromGuests(t *testing.T) {
	stored := validTour()
	stored.ID = "65a000000000000000000201"
	stored.IsActive = false
	repo := &mockProductRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Product, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, newMockDirectory())

	_, err := svc.GetByID(context.Background(), auth.Guest(), stored.ID)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeNotFound)
	}

	if _, err := svc.GetByID(context.Background(), admin(), stored.ID); err != nil {
		t.Fatalf("admin read of inactive product failed: %v", err)
	}
}

func TestUpdate_CrossDomainRecategorizationRejected(t *testing.T) {
	stored := validTour()
	stored.ID = "65a000000000000000000201"
	repo := &mockProductRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Product, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, newMockDirectory())

	_, err := svc.Update(context.Background(), admin(), stored.ID, &model.ProductUpdate{
		CategoryID: transferCategoryID,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidInput)
	}
}
