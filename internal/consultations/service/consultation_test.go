package service

import (
	"context"
	"testing"

	"vntrips/internal/auth"
	consultationserrors "vntrips/internal/consultations/errors"
	"vntrips/internal/consultations/repository"
	"vntrips/internal/consultations/validator"
	"vntrips/pkg/config"
	apperrors "vntrips/pkg/errors"
	"vntrips/pkg/events"
	"vntrips/pkg/logger"
	"vntrips/pkg/model"
)

type mockConsultationRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Consultation, error)

	createdConsultation *model.Consultation
	pushedNotes         []model.AdminNote
	pushedContacts      []model.ContactRecord
	updatedStatus       model.ConsultationStatus
}

func (m *mockConsultationRepository) Create(ctx context.Context, c *model.Consultation) error {
	c.ID = "65a000000000000000000401"
	m.createdConsultation = c
	return nil
}

func (m *mockConsultationRepository) FindByID(ctx context.Context, id string) (*model.Consultation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, consultationserrors.ErrNotFound
}

func (m *mockConsultationRepository) Find(ctx context.Context, filter repository.ConsultationFilter, limit int, offset int64) ([]*model.Consultation, error) {
	return []*model.Consultation{}, nil
}

func (m *mockConsultationRepository) Count(ctx context.Context, filter repository.ConsultationFilter) (int64, error) {
	return 0, nil
}

func (m *mockConsultationRepository) UpdateStatus(ctx context.Context, id string, status model.ConsultationStatus, priority model.ConsultationPriority) (*model.Consultation, error) {
	m.updatedStatus = status
	return &model.Consultation{ID: id, Status: status, Priority: priority}, nil
}

func (m *mockConsultationRepository) PushNote(ctx context.Context, id string, note model.AdminNote) (*model.Consultation, error) {
	m.pushedNotes = append(m.pushedNotes, note)
	return &model.Consultation{ID: id, AdminNotes: m.pushedNotes}, nil
}

func (m *mockConsultationRepository) PushContact(ctx context.Context, id string, record model.ContactRecord) (*model.Consultation, error) {
	m.pushedContacts = append(m.pushedContacts, record)
	return &model.Consultation{ID: id, ContactHistory: m.pushedContacts}, nil
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

func newTestService(repo *mockConsultationRepository, pub events.Publisher) ConsultationService {
	return NewConsultationService(repo, pub, validator.NewConsultationValidator(), testConfig())
}

func validConsultation() *model.Consultation {
	return &model.Consultation{
		CustomerInfo: model.CustomerInfo{
			Name:  "Jamie Tran",
			Email: "jamie.tran@example.com",
			Phone: "+84912345678",
		},
		Subject: "Family trip in December",
		Message: "We are planning a ten day trip with two kids. What would you suggest?",
	}
}

func TestCreate_ForcesDefaultsAndPublishes(t *testing.T) {
	repo := &mockConsultationRepository{}
	pub := &recordingPublisher{}
	svc := newTestService(repo, pub)

	c := validConsultation()
	// Clients cannot smuggle workflow state into the intake payload.
	c.Status = model.ConsultationCompleted
	c.Priority = model.PriorityHigh
	c.AdminNotes = []model.AdminNote{{Note: "injected", Author: "attacker"}}

	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.Status != model.ConsultationNew {
		t.Errorf("status = %q, want new", c.Status)
	}
	if c.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", c.Priority)
	}
	if len(c.AdminNotes) != 0 {
		t.Errorf("admin notes not cleared: %+v", c.AdminNotes)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.ConsultationCreated {
		t.Errorf("expected one consultation.created event, got %+v", pub.published)
	}
}

func TestCreate_RejectsMissingSubject(t *testing.T) {
	svc := newTestService(&mockConsultationRepository{}, &recordingPublisher{})

	c := validConsultation()
	c.Subject = ""

	err := svc.Create(context.Background(), c)
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
}

func TestUpdateStatus_FollowsProgression(t *testing.T) {
	repo := &mockConsultationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Consultation, error) {
			return &model.Consultation{ID: id, Status: model.ConsultationNew}, nil
		},
	}
	svc := newTestService(repo, &recordingPublisher{})

	if _, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000401",
		model.ConsultationContacted, ""); err != nil {
		t.Fatalf("new -> contacted should be allowed: %v", err)
	}

	_, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000401",
		model.ConsultationCompleted, "")
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("new -> completed: code = %q, want %q", appErr.Code, apperrors.CodeInvalidTransition)
	}
}

func TestUpdateStatus_CancellableFromAnyNonTerminalState(t *testing.T) {
	for _, from := range []model.ConsultationStatus{
		model.ConsultationNew, model.ConsultationContacted, model.ConsultationInProgress,
	} {
		repo := &mockConsultationRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Consultation, error) {
				return &model.Consultation{ID: id, Status: from}, nil
			},
		}
		svc := newTestService(repo, &recordingPublisher{})

		if _, err := svc.UpdateStatus(context.Background(), admin(), "65a000000000000000000401",
			model.ConsultationCancelled, ""); err != nil {
			t.Errorf("%s -> cancelled should be allowed: %v", from, err)
		}
	}
}

func TestAddNote_StampsAuthorAndTime(t *testing.T) {
	repo := &mockConsultationRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Consultation, error) {
			return &model.Consultation{ID: id, Status: model.ConsultationNew}, nil
		},
	}
	svc := newTestService(repo, &recordingPublisher{})

	_, err := svc.AddNote(context.Background(), admin(), "65a000000000000000000401",
		model.AdminNote{Note: "  customer prefers morning calls  "})
	if err != nil {
		t.Fatalf("AddNote returned error: %v", err)
	}
	note := repo.pushedNotes[0]
	if note.Note != "customer prefers morning calls" {
		t.Errorf("note = %q, not trimmed", note.Note)
	}
	if note.Author != admin().ID {
		t.Errorf("author = %q, want caller id", note.Author)
	}
	if note.CreatedAt.IsZero() {
		t.Error("note timestamp not stamped")
	}
}

func TestAddContact_RejectsUnknownChannel(t *testing.T) {
	svc := newTestService(&mockConsultationRepository{}, &recordingPublisher{})

	_, err := svc.AddContact(context.Background(), admin(), "65a000000000000000000401",
		model.ContactRecord{Channel: "pigeon", Summary: "sent a bird"})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
}

func TestAdminGates(t *testing.T) {
	svc := newTestService(&mockConsultationRepository{}, &recordingPublisher{})
	guest := auth.Guest()

	if _, err := svc.GetByID(context.Background(), guest, "65a000000000000000000401"); apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Error("GetByID should be admin-only")
	}
	if _, _, err := svc.List(context.Background(), guest, repository.ConsultationFilter{}, 1, 10); apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Error("List should be admin-only")
	}
	if _, err := svc.AddNote(context.Background(), guest, "65a000000000000000000401", model.AdminNote{Note: "x"}); apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Error("AddNote should be admin-only")
	}
}
