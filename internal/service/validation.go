package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/A7maad1/LSA/internal/models"
	appErrors "github.com/A7maad1/LSA/pkg/errors"
)

var (
	emailPattern         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern         = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,20}$`)
	moroccanPhonePattern = regexp.MustCompile(`^(\+212|0)([5-9]\d{8})$`)
	massarPattern        = regexp.MustCompile(`^\d{11}$`)
	isoDatePattern       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// NewValidator returns a validator with the site's custom tags registered.
// Field errors are reported with their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the massar, certstatus, isodate, simpleemail and phone tags.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("massar", func(fl validator.FieldLevel) bool {
		return ValidMassar(fl.Field().String())
	})
	_ = v.RegisterValidation("certstatus", func(fl validator.FieldLevel) bool {
		return models.CertificateStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
}

// ValidEmail checks the loose local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidPhone accepts 7 to 20 digits, spaces and +-() characters.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// ValidMoroccanPhone accepts +212 or 0 followed by nine digits starting 5-9.
func ValidMoroccanPhone(phone string) bool {
	return moroccanPhonePattern.MatchString(strings.ReplaceAll(phone, " ", ""))
}

// ValidMassar checks an 11-digit student identifier.
func ValidMassar(massar string) bool {
	return massarPattern.MatchString(strings.TrimSpace(massar))
}

// ValidDate accepts an ISO date, optionally followed by a time part.
func ValidDate(date string) bool {
	if !isoDatePattern.MatchString(date) {
		return false
	}
	if _, err := time.Parse("2006-01-02", date[:10]); err != nil {
		return false
	}
	return true
}

// validationError converts validator output into a typed validation error
// naming the offending fields.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fields: "+strings.Join(parts, ", "))
}

// gatewayError keeps typed backend errors intact and wraps anything else as internal.
func gatewayError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
