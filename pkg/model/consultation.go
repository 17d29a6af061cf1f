package model

import "time"

type ConsultationPriority string

const (
	PriorityLow    ConsultationPriority = "low"
	PriorityMedium ConsultationPriority = "medium"
	PriorityHigh   ConsultationPriority = "high"
)

type AdminNote struct {
	Note      string    `json:"note" bson:"note" validate:"required,max=2000"`
	Author    string    `json:"author" bson:"author" validate:"required"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type ContactRecord struct {
	Channel     string    `json:"channel" bson:"channel" validate:"required,oneof=email phone whatsapp other"`
	Summary     string    `json:"summary" bson:"summary" validate:"required,max=2000"`
	ContactedAt time.Time `json:"contactedAt" bson:"contacted_at"`
}

// Consultation is an independent lead-capture entity. AdminNotes and
// ContactHistory are append-only.
type Consultation struct {
	ID               string               `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CustomerInfo     CustomerInfo         `json:"customerInfo" bson:"customer_info"`
	Subject          string               `json:"subject" bson:"subject" validate:"required,min=2,max=200"`
	Message          string               `json:"message" bson:"message" validate:"required,min=2,max=5000"`
	PreferredContact string               `json:"preferredContact,omitempty" bson:"preferred_contact,omitempty" validate:"omitempty,oneof=email phone whatsapp"`
	Status           ConsultationStatus   `json:"status" bson:"status" validate:"omitempty,oneof=new contacted in-progress completed cancelled"`
	Priority         ConsultationPriority `json:"priority" bson:"priority" validate:"omitempty,oneof=low medium high"`
	AdminNotes       []AdminNote          `json:"adminNotes" bson:"admin_notes"`
	ContactHistory   []ContactRecord      `json:"contactHistory" bson:"contact_history"`
	CreatedAt        time.Time            `json:"createdAt" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time            `json:"updatedAt" bson:"updated_at" validate:"omitempty"`
}
