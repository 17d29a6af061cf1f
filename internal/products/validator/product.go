package validator

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"vntrips/pkg/model"
	"vntrips/pkg/slug"

	"github.com/go-playground/validator/v10"
)

// maxShortDescription bounds each language of the teaser text.
const maxShortDescription = 300

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type ProductValidator struct {
	validate *validator.Validate
}

func NewProductValidator() *ProductValidator {
	v := validator.New()

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})

	return &ProductValidator{
		validate: v,
	}
}

// Validate checks structural rules plus the domain rules that depend on the
// category the product is filed under.
func (v *ProductValidator) Validate(p *model.Product, categoryType model.CategoryType) error {
	if err := v.validate.Struct(p); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(p, categoryType)
}

func (v *ProductValidator) ValidateUpdate(u *model.ProductUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	if u.Title != nil && u.Title.En == "" {
		return ValidationErrors{{Field: "title.en", Message: "english title cannot be cleared"}}
	}
	return nil
}

func (v *ProductValidator) validateBusinessRules(p *model.Product, categoryType model.CategoryType) error {
	var errs ValidationErrors

	if p.Title.En == "" {
		errs = append(errs, ValidationError{Field: "title.en", Message: "english title is required"})
	}
	if p.Title.Vi == "" {
		errs = append(errs, ValidationError{Field: "title.vi", Message: "vietnamese title is required"})
	}
	if utf8.RuneCountInString(p.ShortDescription.En) > maxShortDescription {
		errs = append(errs, ValidationError{Field: "shortDescription.en", Message: fmt.Sprintf("short description is limited to %d characters", maxShortDescription)})
	}
	if utf8.RuneCountInString(p.ShortDescription.Vi) > maxShortDescription {
		errs = append(errs, ValidationError{Field: "shortDescription.vi", Message: fmt.Sprintf("short description is limited to %d characters", maxShortDescription)})
	}

	switch categoryType {
	case model.TypeVietnamTours:
		if p.Duration == nil {
			errs = append(errs, ValidationError{Field: "duration", Message: "duration is required for tours"})
		}
		if p.TransferService != nil {
			errs = append(errs, ValidationError{Field: "transferService", Message: "transfer metadata is only valid for transfer products"})
		}
		if p.Pricing.Adult <= 0 {
			errs = append(errs, ValidationError{Field: "pricing.adult", Message: "adult price must be positive"})
		}
	case model.TypeTransferServices:
		if p.TransferService == nil {
			errs = append(errs, ValidationError{Field: "transferService", Message: "transfer metadata is required for transfer products"})
		}
		if len(p.Itinerary) > 0 {
			errs = append(errs, ValidationError{Field: "itinerary", Message: "itineraries are only valid for tour products"})
		}
		if p.Pricing.Adult <= 0 && p.Pricing.PerTrip <= 0 && p.Pricing.PerKm <= 0 {
			errs = append(errs, ValidationError{Field: "pricing", Message: "a per-person, per-trip or per-km price is required"})
		}
	}

	if p.Duration != nil && p.Duration.Nights > p.Duration.Days {
		errs = append(errs, ValidationError{Field: "duration.nights", Message: "nights cannot exceed days"})
	}

	for i, day := range p.Itinerary {
		if day.Day != i+1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("itinerary[%d].day", i),
				Message: "itinerary days must be numbered consecutively from 1",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("failed on the %q rule", err.Tag()),
		})
	}

	return validationErrors
}
