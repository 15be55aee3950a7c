package validator

import (
	"errors"
	"fmt"
	"strings"

	"aurabook/internal/availability"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"

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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CatalogValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCatalogValidator(log *logger.Logger) *CatalogValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}

	return &CatalogValidator{validate: v, logger: log}
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, _, err := availability.ParseHHMM(fl.Field().String())
	return err == nil
}

func (v *CatalogValidator) ValidateStaff(staff *model.Staff) error {
	if err := v.validate.Struct(staff); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	for day, windows := range staff.WorkingHours {
		for _, w := range windows {
			if w.Start >= w.End {
				return ValidationErrors{ValidationError{
					Field:   "WorkingHours",
					Message: fmt.Sprintf("%s: window start %q must be before end %q", day, w.Start, w.End),
				}}
			}
		}
	}
	return nil
}

func (v *CatalogValidator) ValidateStaffUpdate(update *model.StaffUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CatalogValidator) ValidateService(svc *model.Service) error {
	if err := v.validate.Struct(svc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if svc.Price.IsNegative() {
		return ValidationErrors{ValidationError{
			Field:   "Price",
			Message: "price must not be negative",
		}}
	}
	return nil
}

func (v *CatalogValidator) ValidateServiceUpdate(update *model.ServiceUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if update.Price != nil && update.Price.IsNegative() {
		return ValidationErrors{ValidationError{
			Field:   "Price",
			Message: "price must not be negative",
		}}
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "hhmm":
			message = fmt.Sprintf("%s must be in HH:MM 24h format", err.Field())
		case "iso4217":
			message = fmt.Sprintf("%s must be a valid ISO 4217 currency code", err.Field())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
