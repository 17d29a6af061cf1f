package model

import "testing"

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingRefunded, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingRefunded, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
		{BookingRefunded, BookingConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	for _, s := range []BookingStatus{BookingCompleted, BookingCancelled, BookingRefunded} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestConsultationStatusTransitions(t *testing.T) {
	if !ConsultationNew.CanTransition(ConsultationContacted) {
		t.Error("new -> contacted should be allowed")
	}
	if ConsultationNew.CanTransition(ConsultationInProgress) {
		t.Error("new -> in-progress skips a step")
	}
	if !ConsultationInProgress.CanTransition(ConsultationCompleted) {
		t.Error("in-progress -> completed should be allowed")
	}
	for _, s := range []ConsultationStatus{ConsultationNew, ConsultationContacted, ConsultationInProgress} {
		if !s.CanTransition(ConsultationCancelled) {
			t.Errorf("%s -> cancelled should be allowed", s)
		}
	}
	if ConsultationCompleted.CanTransition(ConsultationCancelled) {
		t.Error("completed is terminal")
	}
	if ConsultationCancelled.CanTransition(ConsultationContacted) {
		t.Error("cancelled is terminal")
	}
}

func TestCategoryTypeValid(t *testing.T) {
	if !TypeVietnamTours.Valid() || !TypeTransferServices.Valid() {
		t.Error("canonical types should be valid")
	}
	if CategoryType("cruises").Valid() {
		t.Error("unknown type should be invalid")
	}
}
