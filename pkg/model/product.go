package model

import "time"

type Pricing struct {
	Adult    float64 `json:"adult" bson:"adult" validate:"min=0"`
	Child    float64 `json:"child" bson:"child" validate:"min=0"`
	Currency string  `json:"currency" bson:"currency" validate:"omitempty,iso4217"`
	PerTrip  float64 `json:"perTrip" bson:"per_trip" validate:"min=0"`
	PerKm    float64 `json:"perKm" bson:"per_km" validate:"min=0"`
}

type Duration struct {
	Days   int `json:"days" bson:"days" validate:"min=0,max=60"`
	Nights int `json:"nights" bson:"nights" validate:"min=0,max=60"`
}

type ItineraryDay struct {
	Day           int           `json:"day" bson:"day" validate:"required,min=1"`
	Title         LocalizedText `json:"title" bson:"title"`
	Description   LocalizedText `json:"description,omitempty" bson:"description,omitempty"`
	Meals         Meals         `json:"meals" bson:"meals"`
	Accommodation bool          `json:"accommodation" bson:"accommodation"`
}

type Meals struct {
	Breakfast bool `json:"breakfast" bson:"breakfast"`
	Lunch     bool `json:"lunch" bson:"lunch"`
	Dinner    bool `json:"dinner" bson:"dinner"`
}

type TransferRoute struct {
	From LocalizedText `json:"from" bson:"from"`
	To   LocalizedText `json:"to" bson:"to"`
}

// TransferService carries the transfer-only product metadata. Its vehicle type
// references the same canonical list as category transfer metadata.
type TransferService struct {
	Type          VehicleType   `json:"type" bson:"type" validate:"required,oneof=sedan suv van minibus bus limousine"`
	Seats         int           `json:"seats" bson:"seats" validate:"required,min=1,max=100"`
	Route         TransferRoute `json:"route" bson:"route"`
	Schedule      LocalizedText `json:"schedule,omitempty" bson:"schedule,omitempty"`
	BookingPolicy LocalizedText `json:"bookingPolicy,omitempty" bson:"booking_policy,omitempty"`
}

type Rating struct {
	Average float64 `json:"average" bson:"average" validate:"min=0,max=5"`
	Count   int     `json:"count" bson:"count" validate:"min=0"`
}

// Product is a bookable catalog item. Whether it is a tour or a transfer is
// inherited from its category's type, not stored on the product itself.
type Product struct {
	ID               string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Slug             string           `json:"slug" bson:"slug" validate:"omitempty,slug"`
	Title            LocalizedText    `json:"title" bson:"title"`
	Description      LocalizedText    `json:"description,omitempty" bson:"description,omitempty"`
	ShortDescription LocalizedText    `json:"shortDescription,omitempty" bson:"short_description,omitempty"`
	Location         LocalizedText    `json:"location,omitempty" bson:"location,omitempty"`
	CategoryID       string           `json:"category" bson:"category" validate:"required,mongodb"`
	Pricing          Pricing          `json:"pricing" bson:"pricing"`
	Duration         *Duration        `json:"duration,omitempty" bson:"duration,omitempty"`
	TransferService  *TransferService `json:"transferService,omitempty" bson:"transfer_service,omitempty"`
	Images           []Image          `json:"images" bson:"images" validate:"omitempty,dive"`
	Highlights       []LocalizedText  `json:"highlights" bson:"highlights"`
	Itinerary        []ItineraryDay   `json:"itinerary" bson:"itinerary" validate:"omitempty,dive"`
	Included         []LocalizedText  `json:"included" bson:"included"`
	Excluded         []LocalizedText  `json:"excluded" bson:"excluded"`
	IsActive         bool             `json:"isActive" bson:"is_active"`
	IsFeatured       bool             `json:"isFeatured" bson:"is_featured"`
	SortOrder        int              `json:"sortOrder" bson:"sort_order" validate:"omitempty,min=0"`
	Rating           Rating           `json:"rating" bson:"rating"`
	CreatedAt        time.Time        `json:"createdAt" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updated_at" validate:"omitempty"`

	// Populated on reads, never persisted.
	Category *CategoryRef `json:"categoryRef,omitempty" bson:"-"`
}

type ProductUpdate struct {
	Title            *LocalizedText   `json:"title,omitempty"`
	Description      *LocalizedText   `json:"description,omitempty"`
	ShortDescription *LocalizedText   `json:"shortDescription,omitempty"`
	Location         *LocalizedText   `json:"location,omitempty"`
	CategoryID       string           `json:"category,omitempty" validate:"omitempty,mongodb"`
	Pricing          *Pricing         `json:"pricing,omitempty"`
	Duration         *Duration        `json:"duration,omitempty"`
	TransferService  *TransferService `json:"transferService,omitempty"`
	Images           *[]Image         `json:"images,omitempty" validate:"omitempty,dive"`
	Highlights       *[]LocalizedText `json:"highlights,omitempty"`
	Itinerary        *[]ItineraryDay  `json:"itinerary,omitempty" validate:"omitempty,dive"`
	Included         *[]LocalizedText `json:"included,omitempty"`
	Excluded         *[]LocalizedText `json:"excluded,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	IsFeatured       *bool            `json:"isFeatured,omitempty"`
	SortOrder        *int             `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
}
