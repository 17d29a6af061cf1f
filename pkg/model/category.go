package model

import "time"

// TransferMeta is the transfer-only metadata on a category. Required when the
// category type is transfer-services, absent otherwise.
type TransferMeta struct {
	Seats       int         `json:"seats" bson:"seats" validate:"required,min=1,max=100"`
	VehicleType VehicleType `json:"vehicleType" bson:"vehicle_type" validate:"required,oneof=sedan suv van minibus bus limousine"`
}

type Category struct {
	ID            string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Slug          string         `json:"slug" bson:"slug" validate:"omitempty,slug"`
	Name          LocalizedText  `json:"name" bson:"name"`
	Description   LocalizedText  `json:"description,omitempty" bson:"description,omitempty"`
	Type          CategoryType   `json:"type" bson:"type" validate:"required,oneof=vietnam-tours transfer-services"`
	Parent        string         `json:"parent,omitempty" bson:"parent,omitempty" validate:"omitempty,mongodb"`
	Subcategories []string       `json:"subcategories" bson:"subcategories" validate:"omitempty,dive,mongodb"`
	Level         int            `json:"level" bson:"level" validate:"min=0,max=2"`
	Region        Region         `json:"region" bson:"region" validate:"omitempty,oneof=north central south all"`
	IsActive      bool           `json:"isActive" bson:"is_active"`
	SortOrder     int            `json:"sortOrder" bson:"sort_order" validate:"omitempty,min=0"`
	Images        []Image        `json:"images" bson:"images" validate:"omitempty,dive"`
	Transfer      *TransferMeta  `json:"transfer,omitempty" bson:"transfer,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updated_at" validate:"omitempty"`

	// Populated on hierarchy reads only, never persisted.
	Children []*Category `json:"children,omitempty" bson:"-"`
}

type CategoryUpdate struct {
	Name        *LocalizedText `json:"name,omitempty"`
	Description *LocalizedText `json:"description,omitempty"`
	Region      Region         `json:"region,omitempty" validate:"omitempty,oneof=north central south all"`
	IsActive    *bool          `json:"isActive,omitempty"`
	SortOrder   *int           `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Images      *[]Image       `json:"images,omitempty" validate:"omitempty,dive"`
	Transfer    *TransferMeta  `json:"transfer,omitempty"`
}

// CategoryRef is the minimal projection attached to catalog listings.
type CategoryRef struct {
	ID   string        `json:"id" bson:"_id"`
	Name LocalizedText `json:"name" bson:"name"`
	Slug string        `json:"slug" bson:"slug"`
	Type CategoryType  `json:"type" bson:"type"`
}
