// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pennywise/internal/recurrence"
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// DateLayouts are the accepted date string formats, most specific last.
var DateLayouts = []string{"2006-01-02", time.RFC3339}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("recurrence_frequency", validateRecurrenceFrequency)
	_ = v.RegisterValidation("date_string", validateDateString)
}

// validateCurrencyCode checks the code's shape only; whether it is supported
// is decided by the currency converter.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodeRegex.MatchString(fl.Field().String())
}

func validateRecurrenceFrequency(fl validator.FieldLevel) bool {
	_, err := recurrence.StepMonths(fl.Field().String())
	return err == nil
}

func validateDateString(fl validator.FieldLevel) bool {
	_, ok := ParseDate(fl.Field().String())
	return ok
}

// ParseDate parses s with DateLayouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
