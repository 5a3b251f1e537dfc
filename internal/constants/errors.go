package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIConfigured  = errors.New("no API endpoint configured, use 'crudkit config set api <url>'")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrNotAuthenticated = errors.New("not authenticated, use 'crudkit login' first")
)

// Argument errors.
var (
	ErrInvalidKeyValue     = errors.New("expected key=value")
	ErrInvalidAttachment   = errors.New("expected field=path for --attach")
	ErrIdentifierRequired  = errors.New("at least one --id key=value is required")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrOutputFileRequired  = errors.New("--out is required for binary downloads")
	ErrEmptyToken          = errors.New("token must not be empty")
	ErrOperationUnfinished = errors.New("operation did not complete")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)

// Operation errors.
var (
	ErrOperationFailed = errors.New("operation failed")
	ErrRequiredField   = errors.New("required field is missing")
)
