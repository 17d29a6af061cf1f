package validator

import (
	"errors"
	"fmt"

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

type ConsultationValidator struct {
	validate *validator.Validate
}

func NewConsultationValidator() *ConsultationValidator {
	return &ConsultationValidator{
		validate: validator.New(),
	}
}

func (v *ConsultationValidator) Validate(c *model.Consultation) error {
	if err := v.validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	if err := v.validate.Struct(c.CustomerInfo); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			errs = append(errs, translate(validationErrs)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ConsultationValidator) ValidateNote(note *model.AdminNote) error {
	if err := v.validate.Struct(note); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ConsultationValidator) ValidateContact(record *model.ContactRecord) error {
	if err := v.validate.Struct(record); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
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
