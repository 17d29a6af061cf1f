package model

import "time"

type CustomerInfo struct {
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Phone   string `json:"phone" bson:"phone" validate:"required,min=6,max=20"`
	Country string `json:"country,omitempty" bson:"country,omitempty" validate:"omitempty,max=60"`
}

// ProductSnapshot is the denormalized view of the booked product, kept so a
// booking still renders correctly after the product changes or disappears.
type ProductSnapshot struct {
	Title        LocalizedText `json:"title" bson:"title"`
	Slug         string        `json:"slug" bson:"slug"`
	CategoryType CategoryType  `json:"categoryType" bson:"category_type"`
	Pricing      Pricing       `json:"pricing" bson:"pricing"`
}

type Participants struct {
	Adults   int `json:"adults" bson:"adults" validate:"required,min=1,max=100"`
	Children int `json:"children" bson:"children" validate:"min=0,max=100"`
}

type Money struct {
	Amount   float64 `json:"amount" bson:"amount" validate:"min=0"`
	Currency string  `json:"currency" bson:"currency" validate:"omitempty,iso4217"`
}

type Booking struct {
	ID                 string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Reference          string          `json:"reference" bson:"reference" validate:"omitempty"`
	UserID             string          `json:"user,omitempty" bson:"user,omitempty" validate:"omitempty,mongodb"`
	CustomerInfo       CustomerInfo    `json:"customerInfo" bson:"customer_info"`
	ProductID          string          `json:"product" bson:"product" validate:"required,mongodb"`
	ProductSnapshot    ProductSnapshot `json:"productSnapshot" bson:"product_snapshot"`
	TravelDate         time.Time       `json:"travelDate" bson:"travel_date" validate:"required"`
	Participants       Participants    `json:"participants" bson:"participants"`
	TotalPrice         Money           `json:"totalPrice" bson:"total_price"`
	Status             BookingStatus   `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed completed cancelled refunded"`
	CancellationReason string          `json:"cancellationReason,omitempty" bson:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time      `json:"cancellationDate,omitempty" bson:"cancellation_date,omitempty"`
	Notes              string          `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt          time.Time       `json:"createdAt" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time       `json:"updatedAt" bson:"updated_at" validate:"omitempty"`
}

// BookingInput is the public creation payload. Snapshot, reference and status
// are assigned server-side.
type BookingInput struct {
	UserID       string       `json:"-"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	ProductID    string       `json:"product" validate:"required,mongodb"`
	TravelDate   time.Time    `json:"travelDate" validate:"required"`
	Participants Participants `json:"participants"`
	Notes        string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,oneof=pending confirmed completed cancelled refunded"`
	Reason string        `json:"reason,omitempty" validate:"omitempty,max=500"`
	// Email is the guest ownership challenge; ignored for authenticated callers.
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}
