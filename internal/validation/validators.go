package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,32}$`)
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("status", validateStatus); err != nil {
		panic(fmt.Sprintf("failed to register status validator: %v", err))
	}
	if err := Validate.RegisterValidation("username", validateUsername); err != nil {
		panic(fmt.Sprintf("failed to register username validator: %v", err))
	}
}

func validatePriority(fl validator.FieldLevel) bool {
	switch model.Priority(fl.Field().String()) {
	case model.PriorityHigh, model.PriorityMid, model.PriorityLow:
		return true
	default:
		return false
	}
}

func validateStatus(fl validator.FieldLevel) bool {
	switch model.Status(fl.Field().String()) {
	case model.StatusPending, model.StatusCompleted:
		return true
	default:
		return false
	}
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// ValidateUsername reports why a username cannot be registered.
func ValidateUsername(name string) error {
	if name == "" {
		return errors.New("username cannot be empty")
	}
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("invalid username %q (1-32 of letters, digits, '_', '.', '-')", name)
	}
	return nil
}

// Struct validates s and flattens validator errors into one readable error.
func Struct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "priority", "status", "username":
		return fmt.Sprintf("invalid %s: %v", field, fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}
