package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"vntrips/internal/auth"
	bookingserrors "vntrips/internal/bookings/errors"
	"vntrips/internal/bookings/repository"
	"vntrips/internal/bookings/validator"
	productserrors "vntrips/internal/products/errors"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/events"
	"vntrips/pkg/model"
	"vntrips/pkg/sanitizer"

	"github.com/google/uuid"
)

const defaultCurrency = "USD"

// ProductCatalog is the slice of the product store bookings depend on.
type ProductCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

// CategoryDirectory resolves the category type recorded in the snapshot.
type CategoryDirectory interface {
	FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error)
}

type BookingService interface {
	Create(ctx context.Context, caller auth.Caller, input *model.BookingInput) (*model.Booking, error)
	GetByID(ctx context.Context, caller auth.Caller, id, email string) (*model.Booking, error)
	GetByReference(ctx context.Context, caller auth.Caller, reference, email string) (*model.Booking, error)
	List(ctx context.Context, caller auth.Caller, filter repository.BookingFilter, page, limit int) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, caller auth.Caller, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, caller auth.Caller, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	products   ProductCatalog
	categories CategoryDirectory
	publisher  events.Publisher
	validator  *validator.BookingValidator
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	products ProductCatalog,
	categories CategoryDirectory,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		products:   products,
		categories: categories,
		publisher:  publisher,
		validator:  validator,
		cfg:        cfg,
	}
}

// Create accepts bookings from guests and authenticated users alike. The
// product is snapshotted at booking time so later edits never rewrite history.
func (s *bookingService) Create(ctx context.Context, caller auth.Caller, input *model.BookingInput) (*model.Booking, error) {
	input.CustomerInfo = sanitizer.NormalizeCustomerInfo(input.CustomerInfo)
	if !caller.IsGuest() {
		input.UserID = caller.ID
	}

	if err := s.validator.ValidateInput(input); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"product", input.ProductID,
			"email", input.CustomerInfo.Email,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, productserrors.ErrNotFound) || errors.Is(err, productserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Unknown product: " + input.ProductID)
		}
		s.cfg.Log.Error("Failed to load booked product", "product", input.ProductID, "error", err)
		return nil, apperrors.Internal("Failed to load product", err)
	}
	if !product.IsActive {
		return nil, apperrors.Conflict("Product is not available for booking")
	}

	booking := &model.Booking{
		Reference:       newReference(),
		UserID:          input.UserID,
		CustomerInfo:    input.CustomerInfo,
		ProductID:       product.ID,
		ProductSnapshot: s.snapshot(ctx, product),
		TravelDate:      input.TravelDate,
		Participants:    input.Participants,
		TotalPrice:      totalPrice(product.Pricing, input.Participants),
		Status:          model.BookingPending,
		Notes:           strings.TrimSpace(input.Notes),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"product", input.ProductID,
			"reference", booking.Reference,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publish(ctx, events.New(events.BookingCreated, booking.ID, map[string]any{
		"reference": booking.Reference,
		"product":   booking.ProductID,
		"status":    booking.Status,
	}))

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"reference", booking.Reference,
		"product", booking.ProductID,
	)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, caller auth.Caller, id, email string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if err := s.authorizeRead(caller, b, email); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) GetByReference(ctx context.Context, caller auth.Caller, reference, email string) (*model.Booking, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("Booking reference cannot be empty")
	}

	b, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		s.cfg.Log.Error("Failed to get booking by reference", "reference", reference, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if err := s.authorizeRead(caller, b, email); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, caller auth.Caller, filter repository.BookingFilter, page, limit int) ([]*model.Booking, int64, error) {
	if !caller.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Only administrators may list bookings")
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := int64(page-1) * int64(limit)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"page", page,
				"limit", limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// UpdateStatus is the admin transition endpoint. The status machine guards
// every move; cancellations additionally require a reason.
func (s *bookingService) UpdateStatus(ctx context.Context, caller auth.Caller, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may update booking status")
	}
	return s.transition(ctx, id, update)
}

// Cancel lets the booking's owner cancel without admin rights. Guests prove
// ownership with the booking email; authenticated users must match the
// recorded user.
func (s *bookingService) Cancel(ctx context.Context, caller auth.Caller, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if !caller.IsAdmin() {
		if err := s.authorizeRead(caller, b, update.Email); err != nil {
			return nil, err
		}
	}

	update.Status = model.BookingCancelled
	return s.transition(ctx, id, update)
}

func (s *bookingService) transition(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid status update", map[string]any{"error": err.Error()})
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if !b.Status.CanTransition(update.Status) {
		return nil, apperrors.InvalidTransition(string(b.Status), string(update.Status))
	}

	previous := b.Status
	b.Status = update.Status
	if update.Status == model.BookingCancelled {
		now := time.Now().UTC().Truncate(time.Millisecond)
		b.CancellationReason = strings.TrimSpace(update.Reason)
		b.CancellationDate = &now
	}

	if _, err := s.repo.UpdateStatus(ctx, id, previous, b); err != nil {
		if errors.Is(err, bookingserrors.ErrStaleStatus) {
			return nil, apperrors.Conflict("Booking status changed concurrently, please retry")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.publish(ctx, events.New(events.BookingStatusChanged, b.ID, map[string]any{
		"reference": b.Reference,
		"from":      previous,
		"to":        b.Status,
	}))

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"reference", b.Reference,
		"from", previous,
		"to", b.Status,
	)

	return b, nil
}

// authorizeRead enforces booking ownership: admins see everything, the
// recorded user sees their own, and guests must present the booking email.
func (s *bookingService) authorizeRead(caller auth.Caller, b *model.Booking, email string) error {
	if caller.IsAdmin() {
		return nil
	}
	if !caller.IsGuest() && b.UserID != "" && b.UserID == caller.ID {
		return nil
	}
	if email != "" && strings.EqualFold(sanitizer.NormalizeEmail(email), b.CustomerInfo.Email) {
		return nil
	}
	return apperrors.Forbidden("Booking access requires the booking email")
}

func (s *bookingService) snapshot(ctx context.Context, product *model.Product) model.ProductSnapshot {
	snap := model.ProductSnapshot{
		Title:   product.Title,
		Slug:    product.Slug,
		Pricing: product.Pricing,
	}

	refs, err := s.categories.FindRefs(ctx, []string{product.CategoryID})
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve category type for snapshot",
			"product", product.ID,
			"category", product.CategoryID,
			"error", err,
		)
		return snap
	}
	if ref, ok := refs[product.CategoryID]; ok {
		snap.CategoryType = ref.Type
	}
	return snap
}

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", event.Type,
			"entity", event.EntityID,
			"error", err,
		)
	}
}

func (s *bookingService) translateLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error("Failed to load booking", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve booking", err)
}

func totalPrice(pricing model.Pricing, participants model.Participants) model.Money {
	currency := pricing.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	// Per-trip transfers charge a flat rate regardless of headcount.
	if pricing.PerTrip > 0 {
		return model.Money{Amount: pricing.PerTrip, Currency: currency}
	}

	amount := pricing.Adult*float64(participants.Adults) + pricing.Child*float64(participants.Children)
	return model.Money{Amount: amount, Currency: currency}
}

func newReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VN-" + strings.ToUpper(raw[:10])
}
