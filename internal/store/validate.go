package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"lifethoughts/internal/catalog"
)

// ErrInvalidPreferences is returned when a preference update fails
// validation. The stored preferences are left unchanged.
var ErrInvalidPreferences = errors.New("invalid preferences")

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return catalog.ThemeTag(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fontscale", func(fl validator.FieldLevel) bool {
		return IsFontScale(fl.Field().Float())
	})
	return v
}

// IsFontScale reports whether s is one of FontScales.
func IsFontScale(s float64) bool {
	for _, allowed := range FontScales {
		if diff := s - allowed; diff > -1e-9 && diff < 1e-9 {
			return true
		}
	}
	return false
}

// ValidatePreferences checks p against the allowed values.
func ValidatePreferences(p Preferences) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidPreferences, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "select at least one theme"
	case "unique":
		return "themes must not repeat"
	case "theme":
		return fmt.Sprintf("unknown theme %q", fe.Value())
	case "clock":
		return fmt.Sprintf("notification time %q must be HH:MM", fe.Value())
	case "oneof":
		return fmt.Sprintf("theme mode %q must be light, dark or system", fe.Value())
	case "fontscale":
		return fmt.Sprintf("font scale %v must be one of 0.9, 1.0, 1.1, 1.2", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
