package validator

import (
	"errors"
	"fmt"
	"strings"

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

type GiftCardValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewGiftCardValidator(log *logger.Logger) *GiftCardValidator {
	return &GiftCardValidator{validate: validator.New(), logger: log}
}

func (v *GiftCardValidator) ValidateIssueRequest(req *model.IssueRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if req.Value.Amount <= 0 {
		return ValidationErrors{ValidationError{
			Field:   "Value",
			Message: "value must be positive",
		}}
	}
	return nil
}

func (v *GiftCardValidator) ValidateRedemption(amount model.Money) error {
	if amount.Amount <= 0 {
		return ValidationErrors{ValidationError{
			Field:   "Amount",
			Message: "redemption amount must be positive",
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
		case "iso4217":
			message = fmt.Sprintf("%s must be a valid ISO 4217 currency code", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
