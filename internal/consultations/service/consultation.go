package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"vntrips/internal/auth"
	consultationserrors "vntrips/internal/consultations/errors"
	"vntrips/internal/consultations/repository"
	"vntrips/internal/consultations/validator"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/events"
	"vntrips/pkg/model"
	"vntrips/pkg/sanitizer"
)

type ConsultationService interface {
	Create(ctx context.Context, c *model.Consultation) error
	GetByID(ctx context.Context, caller auth.Caller, id string) (*model.Consultation, error)
	List(ctx context.Context, caller auth.Caller, filter repository.ConsultationFilter, page, limit int) ([]*model.Consultation, int64, error)
	UpdateStatus(ctx context.Context, caller auth.Caller, id string, status model.ConsultationStatus, priority model.ConsultationPriority) (*model.Consultation, error)
	AddNote(ctx context.Context, caller auth.Caller, id string, note model.AdminNote) (*model.Consultation, error)
	AddContact(ctx context.Context, caller auth.Caller, id string, record model.ContactRecord) (*model.Consultation, error)
}

type consultationService struct {
	repo      repository.ConsultationRepository
	publisher events.Publisher
	validator *validator.ConsultationValidator
	cfg       *config.Config
}

func NewConsultationService(
	repo repository.ConsultationRepository,
	publisher events.Publisher,
	validator *validator.ConsultationValidator,
	cfg *config.Config,
) ConsultationService {
	return &consultationService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Create is the public lead-capture entry point. Status and priority always
// start at their defaults regardless of what the payload carries.
func (s *consultationService) Create(ctx context.Context, c *model.Consultation) error {
	c.CustomerInfo = sanitizer.NormalizeCustomerInfo(c.CustomerInfo)
	c.Subject = sanitizer.TrimAndNormalize(c.Subject)
	c.Message = strings.TrimSpace(c.Message)
	c.Status = model.ConsultationNew
	c.Priority = model.PriorityMedium
	c.AdminNotes = []model.AdminNote{}
	c.ContactHistory = []model.ContactRecord{}

	if err := s.validator.Validate(c); err != nil {
		s.cfg.Log.Warn("Consultation validation failed",
			"email", c.CustomerInfo.Email,
			"error", err,
		)
		return apperrors.Validation("Consultation validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.cfg.Log.Error("Failed to create consultation",
			"email", c.CustomerInfo.Email,
			"error", err,
		)
		return apperrors.Internal("Failed to create consultation", err)
	}

	s.publish(ctx, events.New(events.ConsultationCreated, c.ID, map[string]any{
		"subject": c.Subject,
	}))

	s.cfg.Log.Info("Consultation created successfully", "id", c.ID)
	return nil
}

func (s *consultationService) GetByID(ctx context.Context, caller auth.Caller, id string) (*model.Consultation, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may view consultations")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Consultation ID cannot be empty")
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	return c, nil
}

func (s *consultationService) List(ctx context.Context, caller auth.Caller, filter repository.ConsultationFilter, page, limit int) ([]*model.Consultation, int64, error) {
	if !caller.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Only administrators may list consultations")
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := int64(page-1) * int64(limit)

	var count int64
	var consultations []*model.Consultation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count consultations", "error", err)
			errCount = apperrors.Internal("Failed to count consultations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		consultations, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list consultations",
				"page", page,
				"limit", limit,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve consultations", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return consultations, count, nil
}

func (s *consultationService) UpdateStatus(ctx context.Context, caller auth.Caller, id string, status model.ConsultationStatus, priority model.ConsultationPriority) (*model.Consultation, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may update consultations")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Consultation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	if status != existing.Status && !existing.Status.CanTransition(status) {
		return nil, apperrors.InvalidTransition(string(existing.Status), string(status))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status, priority)
	if err != nil {
		if errors.Is(err, consultationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Consultation", id)
		}
		s.cfg.Log.Error("Failed to update consultation status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update consultation", err)
	}

	s.cfg.Log.Info("Consultation status updated",
		"id", id,
		"from", existing.Status,
		"to", status,
	)
	return updated, nil
}

func (s *consultationService) AddNote(ctx context.Context, caller auth.Caller, id string, note model.AdminNote) (*model.Consultation, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may annotate consultations")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Consultation ID cannot be empty")
	}

	note.Note = strings.TrimSpace(note.Note)
	note.Author = caller.ID
	note.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := s.validator.ValidateNote(&note); err != nil {
		return nil, apperrors.Validation("Invalid note", map[string]any{"error": err.Error()})
	}

	updated, err := s.repo.PushNote(ctx, id, note)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	return updated, nil
}

func (s *consultationService) AddContact(ctx context.Context, caller auth.Caller, id string, record model.ContactRecord) (*model.Consultation, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators may record contacts")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Consultation ID cannot be empty")
	}

	record.Summary = strings.TrimSpace(record.Summary)
	if record.ContactedAt.IsZero() {
		record.ContactedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if err := s.validator.ValidateContact(&record); err != nil {
		return nil, apperrors.Validation("Invalid contact record", map[string]any{"error": err.Error()})
	}

	updated, err := s.repo.PushContact(ctx, id, record)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}
	return updated, nil
}

func (s *consultationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish consultation event",
			"type", event.Type,
			"entity", event.EntityID,
			"error", err,
		)
	}
}

func (s *consultationService) translateLookupError(err error, id string) error {
	if errors.Is(err, consultationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Consultation", id)
	}
	if errors.Is(err, consultationserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid consultation ID format")
	}
	s.cfg.Log.Error("Failed to load consultation", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve consultation", err)
}
