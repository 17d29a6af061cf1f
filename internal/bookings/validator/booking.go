package validator

import (
	"errors"
	"fmt"
	"time"

	"vntrips/pkg/model"

	"github.com/go-playground/validator/v10"
)

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

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
	}
}

func (v *BookingValidator) ValidateInput(input *model.BookingInput) error {
	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if err := v.validate.Struct(input.CustomerInfo); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			errs = append(errs, translate(validationErrs)...)
		}
	}
	if input.Participants.Adults < 1 {
		errs = append(errs, ValidationError{Field: "participants.adults", Message: "at least one adult is required"})
	}
	if input.TravelDate.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		errs = append(errs, ValidationError{Field: "travelDate", Message: "travel date cannot be in the past"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	if update.Status == model.BookingCancelled && update.Reason == "" {
		return ValidationErrors{{Field: "reason", Message: "a reason is required when cancelling"}}
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
