package crudkit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a single failed rule.
type ValidationError struct {
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message"         yaml:"message"`
}

// ValidationResult is the ordered outcome of validating one value.
type ValidationResult struct {
	Errors []ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// IsValid reports whether no rule failed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Messages returns the error messages in order.
func (r ValidationResult) Messages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		messages = append(messages, e.Message)
	}

	return messages
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrValidationFailed with the first message.
func (r ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrValidationFailed, r.Errors[0].Message)
}

// Invalid builds a failed result from messages.
func Invalid(messages ...string) ValidationResult {
	errs := make([]ValidationError, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, ValidationError{Message: m})
	}

	return ValidationResult{Errors: errs}
}

// Validator checks a value before it is sent to the backend.
type Validator interface {
	Validate(ctx context.Context, value interface{}) ValidationResult
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, value interface{}) ValidationResult

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, value interface{}) ValidationResult {
	return f(ctx, value)
}

// EmptyValidator accepts everything.
type EmptyValidator struct{}

// Validate always returns a valid result.
func (EmptyValidator) Validate(ctx context.Context, value interface{}) ValidationResult {
	return ValidationResult{}
}

// orEmpty substitutes EmptyValidator for a nil validator.
func orEmpty(v Validator) Validator {
	if v == nil {
		return EmptyValidator{}
	}

	return v
}

// StructValidator evaluates `validate` struct tags with go-playground/validator.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a StructValidator. Field names in messages come
// from the json tag when present.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}

		return name
	})

	return &StructValidator{validate: v}
}

// Engine exposes the underlying validator for registering custom rules.
func (s *StructValidator) Engine() *validator.Validate {
	return s.validate
}

// Validate runs the struct rules on value.
func (s *StructValidator) Validate(ctx context.Context, value interface{}) ValidationResult {
	err := s.validate.StructCtx(ctx, value)
	if err == nil {
		return ValidationResult{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Invalid(err.Error())
	}

	result := ValidationResult{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Namespace(),
			Message: fieldMessage(fe),
		})
	}

	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag())
	}
}

// BlobValidator checks attachment metadata.
type BlobValidator struct {
	// MaxSize rejects blobs larger than this many bytes. Zero disables the check.
	MaxSize int64
	// AllowedTypes restricts the MIME type. Empty allows any type.
	AllowedTypes []string
	// RequireInputName rejects blobs without a form field name.
	RequireInputName bool
}

// Validate checks a BlobData or *BlobData.
func (b BlobValidator) Validate(ctx context.Context, value interface{}) ValidationResult {
	var blob BlobData

	switch v := value.(type) {
	case BlobData:
		blob = v
	case *BlobData:
		if v == nil {
			return Invalid(ErrNilBlobData.Error())
		}

		blob = *v
	default:
		return Invalid(fmt.Sprintf("expected blob data, got %T", value))
	}

	var result ValidationResult

	if strings.TrimSpace(blob.Name) == "" {
		result.Errors = append(result.Errors, ValidationError{Field: "name", Message: "file name is required"})
	}

	if b.RequireInputName && strings.TrimSpace(blob.InputName) == "" {
		result.Errors = append(result.Errors, ValidationError{Field: "inputName", Message: "input name is required for " + blob.Name})
	}

	if blob.Data == nil {
		result.Errors = append(result.Errors, ValidationError{Field: "data", Message: "file content is required for " + blob.Name})
	}

	if b.MaxSize > 0 && blob.Size > b.MaxSize {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("%s exceeds the maximum size of %d bytes", blob.Name, b.MaxSize),
		})
	}

	if len(b.AllowedTypes) > 0 && !typeAllowed(blob.Type, b.AllowedTypes) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("%s has type %q which is not allowed", blob.Name, blob.Type),
		})
	}

	return result
}

// typeAllowed matches exact types and "prefix/*" wildcards.
func typeAllowed(contentType string, allowed []string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))

	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == contentType {
			return true
		}

		if prefix, ok := strings.CutSuffix(candidate, "/*"); ok && strings.HasPrefix(contentType, prefix+"/") {
			return true
		}
	}

	return false
}
