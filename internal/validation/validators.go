// Package validation holds the request bodies accepted by the API and the
// shared validator that checks them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/benvon/toolhub/internal/apperrors"
)

const (
	// MaxSelectedPreferences bounds a single preferences save.
	MaxSelectedPreferences = 100
	// MaxIDLength bounds tool and option ids.
	MaxIDLength = 128
	// MaxDescriptionLength bounds free-text suggestion input.
	MaxDescriptionLength = 2000
)

// Validate is a shared validator instance. Field names in errors use the json
// tag so messages match what clients sent.
var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := Validate.RegisterValidation("notblank", validateNotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validator: %v", err))
	}
}

// SavePreferencesRequest is the body of POST /preferences. An empty selection
// is valid and clears the recommendation.
type SavePreferencesRequest struct {
	SelectedPreferences []string `json:"selectedPreferences" validate:"required,max=100,dive,notblank,max=128"`
}

// RecordUseRequest is the body of POST /recent-tools.
type RecordUseRequest struct {
	ToolID string `json:"toolId" validate:"required,notblank,max=128"`
}

// SuggestRequest is the body of POST /preferences/suggest.
type SuggestRequest struct {
	Description string `json:"description" validate:"required,notblank,max=2000"`
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates v and converts the first failure into an
// *apperrors.ValidationError.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("", "invalid request")
	}
	fe := fieldErrs[0]
	return apperrors.Validation(fieldName(fe), describe(fe))
}

// fieldName drops the struct prefix, leaving e.g. "selectedPreferences[2]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
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

// SanitizeIDs trims every id and drops empties, keeping order.
func SanitizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = SanitizeText(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
