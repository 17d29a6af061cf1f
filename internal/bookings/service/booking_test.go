package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"vntrips/internal/auth"
	bookingserrors "vntrips/internal/bookings/errors"
	"vntrips/internal/bookings/repository"
	"vntrips/internal/bookings/validator"
	"vntrips/pkg/config"
	mongotx "vntrips/pkg/db/mongo"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/events"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	productID      = "65a000000000000000000201"
	tourCategoryID = "65a000000000000000000101"
)

type mockBookingRepository struct {
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	createFunc       func(ctx context.Context, b *model.Booking) error
	updateStatusFunc func(ctx context.Context, id string, from model.BookingStatus, b *model.Booking) (*mongo.UpdateResult, error)

	capturedStatus *model.Booking
	capturedFrom   model.BookingStatus
}

func (m *mockBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, b)
	}
	b.ID = "65a000000000000000000301"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) Find(ctx context.Context, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter repository.BookingFilter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, from model.BookingStatus, b *model.Booking) (*mongo.UpdateResult, error) {
	m.capturedStatus = b
	m.capturedFrom = from
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, b)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockProductCatalog struct {
	product *model.Product
}

func (m *mockProductCatalog) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.product != nil && m.product.ID == id {
		return m.product, nil
	}
	return nil, bookingserrors.ErrNotFound
}

type mockCategoryDirectory struct{}

func (m *mockCategoryDirectory) FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error) {
	refs := make(map[string]*model.CategoryRef, len(ids))
	for _, id := range ids {
		refs[id] = &model.CategoryRef{ID: id, Type: model.TypeVietnamTours}
	}
	return refs, nil
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

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

func activeTour() *model.Product {
	return &model.Product{
		ID:         productID,
		Slug:       "ninh-binh-day-trip",
		Title:      model.LocalizedText{En: "Ninh Binh Day Trip", Vi: "Tour Ninh Bình"},
		CategoryID: tourCategoryID,
		Pricing:    model.Pricing{Adult: 50, Child: 20, Currency: "USD"},
		IsActive:   true,
	}
}

func newTestService(repo *mockBookingRepository, catalog *mockProductCatalog, pub events.Publisher) BookingService {
	return NewBookingService(repo, catalog, &mockCategoryDirectory{}, pub,
		validator.NewBookingValidator(), testConfig())
}

func validInput() *model.BookingInput {
	return &model.BookingInput{
		CustomerInfo: model.CustomerInfo{
			Name:  "Jamie Tran",
			Email: "Jamie.Tran@Example.com",
			Phone: "+84 912 345 678",
		},
		ProductID:    productID,
		TravelDate:   time.Now().UTC().Add(14 * 24 * time.Hour),
		Participants: model.Participants{Adults: 2, Children: 1},
	}
}

func TestCreate_SnapshotAndTotals(t *testing.T) {
	repo := &mockBookingRepository{}
	pub := &recordingPublisher{}
	svc := newTestService(repo, &mockProductCatalog{product: activeTour()}, pub)

	b, err := svc.Create(context.Background(), auth.Guest(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if b.Status != model.BookingPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if !strings.HasPrefix(b.Reference, "VN-") {
		t.Errorf("reference = %q, want VN- prefix", b.Reference)
	}
	// 2 adults * 50 + 1 child * 20
	if b.TotalPrice.Amount != 120 || b.TotalPrice.Currency != "USD" {
		t.Errorf("total = %+v, want 120 USD", b.TotalPrice)
	}
	if b.ProductSnapshot.Slug != "ninh-binh-day-trip" || b.ProductSnapshot.CategoryType != model.TypeVietnamTours {
		t.Errorf("snapshot = %+v", b.ProductSnapshot)
	}
	if b.CustomerInfo.Email != "jamie.tran@example.com" {
		t.Errorf("email not normalized: %q", b.CustomerInfo.Email)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.BookingCreated {
		t.Errorf("expected one booking.created event, got %+v", pub.published)
	}
}

func TestCreate_PerTripPricingIsFlat(t *testing.T) {
	transfer := activeTour()
	transfer.Pricing = model.Pricing{PerTrip: 35, Currency: "USD"}
	svc := newTestService(&mockBookingRepository{}, &mockProductCatalog{product: transfer}, &recordingPublisher{})

	b, err := svc.Create(context.Background(), auth.Guest(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if b.TotalPrice.Amount != 35 {
		t.Errorf("per-trip total = %v, want 35", b.TotalPrice.Amount)
	}
}

func TestCreate_RejectsInactiveProduct(t *testing.T) {
	inactive := activeTour()
	inactive.IsActive = false
	svc := newTestService(&mockBookingRepository{}, &mockProductCatalog{product: inactive}, &recordingPublisher{})

	_, err := svc.Create(context.Background(), auth.Guest(), validInput())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
}

func TestCreate_RejectsPastTravelDate(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockProductCatalog{product: activeTour()}, &recordingPublisher{})

	input := validInput()
	input.TravelDate = time.Now().UTC().Add(-48 * time.Hour)

	_, err := svc.Create(context.Background(), auth.Guest(), input)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
}

func storedBooking(status model.BookingStatus) *model.Booking {
	return &model.Booking{
		ID:        "65a000000000000000000301",
		Reference: "VN-ABCDEF1234",
		CustomerInfo: model.CustomerInfo{
			Name:  "Jamie Tran",
			Email: "jamie.tran@example.com",
			Phone: "+84912345678",
		},
		ProductID: productID,
		Status:    status,
	}
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		from    model.BookingStatus
		to      model.BookingStatus
		allowed bool
	}{
		{"pending to confirmed", model.BookingPending, model.BookingConfirmed, true},
		{"pending to completed", model.BookingPending, model.BookingCompleted, false},
		{"confirmed to completed", model.BookingConfirmed, model.BookingCompleted, true},
		{"confirmed to refunded", model.BookingConfirmed, model.BookingRefunded, true},
		{"completed to cancelled", model.BookingCompleted, model.BookingCancelled, false},
		{"cancelled to confirmed", model.BookingCancelled, model.BookingConfirmed, false},
		{"refunded to pending", model.BookingRefunded, model.BookingPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
					return storedBooking(tc.from), nil
				},
			}
			svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

			update := &model.BookingStatusUpdate{Status: tc.to}
			if tc.to == model.BookingCancelled {
				update.Reason = "change of plans"
			}

			_, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000301", update)
			if tc.allowed && err != nil {
				t.Fatalf("transition %s -> %s should be allowed, got %v", tc.from, tc.to, err)
			}
			if !tc.allowed {
				appErr := apperrors.AsAppError(err)
				if appErr.Code != apperrors.CodeInvalidTransition {
					t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeInvalidTransition)
				}
			}
		})
	}
}

func TestUpdateStatus_CancellationRequiresReason(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
	}
	svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

	_, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Status: model.BookingCancelled})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
}

func TestUpdateStatus_CancellationStampsDateAndReason(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingConfirmed), nil
		},
	}
	pub := &recordingPublisher{}
	svc := newTestService(repo, &mockProductCatalog{}, pub)

	b, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Status: model.BookingCancelled, Reason: "weather"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if b.CancellationReason != "weather" || b.CancellationDate == nil {
		t.Errorf("cancellation fields not stamped: %+v", b)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.BookingStatusChanged {
		t.Errorf("expected one status_changed event, got %+v", pub.published)
	}
}

func TestUpdateStatus_PreviousStatusGuardsTheWrite(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
	}
	svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

	_, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Status: model.BookingConfirmed})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if repo.capturedFrom != model.BookingPending {
		t.Errorf("write precondition = %q, want pending", repo.capturedFrom)
	}
}

func TestUpdateStatus_ConcurrentTransitionConflicts(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, from model.BookingStatus, b *model.Booking) (*mongo.UpdateResult, error) {
			// Another transition won the race between the read and the write.
			return nil, bookingserrors.ErrStaleStatus
		},
	}
	pub := &recordingPublisher{}
	svc := newTestService(repo, &mockProductCatalog{}, pub)

	_, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Status: model.BookingConfirmed})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
	if len(pub.published) != 0 {
		t.Errorf("no event should be published on a lost race, got %+v", pub.published)
	}
}

func TestUpdateStatus_RejectsNonAdmin(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockProductCatalog{}, &recordingPublisher{})

	_, err := svc.UpdateStatus(context.Background(), auth.Guest(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Status: model.BookingConfirmed})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeForbidden)
	}
}

func TestCancel_GuestWithMatchingEmail(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
	}
	svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

	b, err := svc.Cancel(context.Background(), auth.Guest(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Reason: "found a better date", Email: "Jamie.Tran@example.com"})
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if b.Status != model.BookingCancelled {
		t.Errorf("status = %q, want cancelled", b.Status)
	}
}

func TestCancel_GuestWithWrongEmailRejected(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
	}
	svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

	_, err := svc.Cancel(context.Background(), auth.Guest(), "65a000000000000000000301",
		&model.BookingStatusUpdate{Reason: "nope", Email: "someone.else@example.com"})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeForbidden)
	}
}

func TestGetByID_GuestEmailChallenge(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return storedBooking(model.BookingPending), nil
		},
	}
	svc := newTestService(repo, &mockProductCatalog{}, &recordingPublisher{})

	if _, err := svc.GetByID(context.Background(), auth.Guest(), "65a000000000000000000301", "jamie.tran@example.com"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	_, err := svc.GetByID(context.Background(), auth.Guest(), "65a000000000000000000301", "")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeForbidden)
	}
}

func TestList_RejectsNonAdmin(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockProductCatalog{}, &recordingPublisher{})

	_, _, err := svc.List(context.Background(), auth.Guest(), repository.BookingFilter{}, 1, 10)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeForbidden)
	}
}
