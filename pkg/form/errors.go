package form

import "errors"

// Static errors for err113 compliance.
var (
	ErrServiceRequired    = errors.New("form service is required")
	ErrInvalidState       = errors.New("operation not allowed in the current form state")
	ErrIdentifierRequired = errors.New("identifier is required")
	ErrUnknownState       = errors.New("unknown form state")
)
