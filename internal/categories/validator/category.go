package validator

import (
	"errors"
	"fmt"

	"vntrips/pkg/model"
	"vntrips/pkg/slug"

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

type CategoryValidator struct {
	validate *validator.Validate
}

func NewCategoryValidator() *CategoryValidator {
	v := validator.New()

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})

	return &CategoryValidator{
		validate: v,
	}
}

func (v *CategoryValidator) Validate(c *model.Category) error {
	if err := v.validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(c)
}

func (v *CategoryValidator) ValidateUpdate(u *model.CategoryUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	if u.Name != nil && u.Name.En == "" {
		return ValidationErrors{{Field: "name.en", Message: "english name cannot be cleared"}}
	}
	return nil
}

func (v *CategoryValidator) validateBusinessRules(c *model.Category) error {
	var errs ValidationErrors

	if c.Name.En == "" {
		errs = append(errs, ValidationError{Field: "name.en", Message: "english name is required"})
	}
	if c.Name.Vi == "" {
		errs = append(errs, ValidationError{Field: "name.vi", Message: "vietnamese name is required"})
	}

	if c.Type == model.TypeTransferServices && c.Transfer == nil {
		errs = append(errs, ValidationError{Field: "transfer", Message: "transfer metadata is required for transfer-services categories"})
	}
	if c.Type == model.TypeVietnamTours && c.Transfer != nil {
		errs = append(errs, ValidationError{Field: "transfer", Message: "transfer metadata is only valid for transfer-services categories"})
	}
	if c.Transfer != nil {
		if c.Transfer.Seats < 1 || c.Transfer.Seats > 100 {
			errs = append(errs, ValidationError{Field: "transfer.seats", Message: "seats must be between 1 and 100"})
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
