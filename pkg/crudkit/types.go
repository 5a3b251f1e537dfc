package crudkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// APIResponseStatus is the outcome flag of the backend response envelope.
type APIResponseStatus string

const (
	// StatusSucceeded marks an envelope whose operation completed.
	StatusSucceeded APIResponseStatus = "Succeeded"

	// StatusFailed marks an envelope whose operation was rejected.
	StatusFailed APIResponseStatus = "Failed"
)

// Succeeded reports whether the status is StatusSucceeded. Any other value,
// including an absent status, counts as a failure.
func (s APIResponseStatus) Succeeded() bool {
	return s == StatusSucceeded
}

// UnmarshalJSON accepts the status as a string in any case or as the numeric
// form 1 (succeeded) / 0 (failed).
func (s *APIResponseStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string

		err := json.Unmarshal(data, &raw)
		if err != nil {
			return fmt.Errorf("parsing response status: %w", err)
		}

		switch strings.ToLower(raw) {
		case "succeeded", "success", "1":
			*s = StatusSucceeded
		case "failed", "failure", "0":
			*s = StatusFailed
		default:
			*s = APIResponseStatus(raw)
		}

		return nil
	}

	var code int

	err := json.Unmarshal(data, &code)
	if err != nil {
		return fmt.Errorf("parsing response status: %w", err)
	}

	if code == 1 {
		*s = StatusSucceeded
	} else {
		*s = StatusFailed
	}

	return nil
}

// APIResponse is the envelope returned by the backend for every CRUD call.
type APIResponse[T any] struct {
	Status        APIResponseStatus `json:"status"                  yaml:"status"`
	Message       string            `json:"message,omitempty"       yaml:"message,omitempty"`
	ErrorMessages []string          `json:"errorMessages,omitempty" yaml:"errorMessages,omitempty"`
	Data          T                 `json:"data"                    yaml:"data"`
}

// Succeeded reports whether the envelope status is StatusSucceeded.
func (r APIResponse[T]) Succeeded() bool {
	return r.Status.Succeeded()
}

func (APIResponse[T]) isEnvelope() {}

// envelope is implemented by every APIResponse instantiation.
type envelope interface {
	isEnvelope()
}

// FailedResponse builds a failed envelope from validation messages. The first
// message becomes the summary.
func FailedResponse[T any](messages ...string) APIResponse[T] {
	resp := APIResponse[T]{Status: StatusFailed}
	if len(messages) > 0 {
		resp.Message = messages[0]
		resp.ErrorMessages = messages
	}

	return resp
}

// SucceededResponse wraps data in a succeeded envelope.
func SucceededResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{Status: StatusSucceeded, Data: data}
}

// ResponseResult carries either a response value or the error raised while
// producing it. Exactly one of the two is meaningful.
type ResponseResult[T any] struct {
	Response T
	Err      error
}

// NewResult wraps a successfully produced value.
func NewResult[T any](response T) ResponseResult[T] {
	return ResponseResult[T]{Response: response}
}

// NewException wraps an error; the response holds the zero value.
func NewException[T any](err error) ResponseResult[T] {
	return ResponseResult[T]{Err: err}
}

// Succeeded reports whether the call completed without an error.
func (r ResponseResult[T]) Succeeded() bool {
	return r.Err == nil
}

// HasException reports whether the call raised an error.
func (r ResponseResult[T]) HasException() bool {
	return r.Err != nil
}

// Succeeded reports whether an envelope result completed without an error
// and the backend flagged it as succeeded.
func Succeeded[T any](r ResponseResult[APIResponse[T]]) bool {
	return r.Succeeded() && r.Response.Succeeded()
}

// Identifier wraps the key data that addresses a record on the backend.
type Identifier[T any] struct {
	Model T `json:"model" yaml:"model" mapstructure:"model"`
}

// NewIdentifier wraps model in an Identifier.
func NewIdentifier[T any](model T) Identifier[T] {
	return Identifier[T]{Model: model}
}

// Paged is one page of a listing.
type Paged[T any] struct {
	PageIndex       int  `json:"pageIndex"       yaml:"pageIndex"`
	PageSize        int  `json:"pageSize"        yaml:"pageSize"`
	TotalCount      int  `json:"totalCount"      yaml:"totalCount"`
	TotalPages      int  `json:"totalPages"      yaml:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage" yaml:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"     yaml:"hasNextPage"`
	Data            T    `json:"data"            yaml:"data"`
}

// BlobData is a pending file attachment.
type BlobData struct {
	// LastModified is the modification time reported by the source.
	LastModified time.Time
	// Name is the file name sent as the multipart filename.
	Name string
	// InputName is the form field the file belongs to.
	InputName string
	// Size is the declared size in bytes.
	Size int64
	// Type is the MIME type of the content.
	Type string
	// Data supplies the file content.
	Data io.Reader
}

// UserBlob describes an attachment stored by the backend.
type UserBlob struct {
	ID          string    `json:"id"                    yaml:"id"`
	Name        string    `json:"name"                  yaml:"name"`
	InputName   string    `json:"inputName,omitempty"   yaml:"inputName,omitempty"`
	ContentType string    `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty"        yaml:"size,omitempty"`
	URL         string    `json:"url,omitempty"         yaml:"url,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"   yaml:"createdAt,omitempty"`
}

// RecordWithBlobs is the composite payload returned by a multipart create.
type RecordWithBlobs[T any] struct {
	Record T          `json:"record" yaml:"record"`
	Blobs  []UserBlob `json:"blobs"  yaml:"blobs"`
}

// RecordUpdateWithBlobs is the composite payload returned by a multipart
// update: the stored record, its current blobs and the blobs it replaced.
type RecordUpdateWithBlobs[T any] struct {
	Record       T          `json:"record"       yaml:"record"`
	Blobs        []UserBlob `json:"blobs"        yaml:"blobs"`
	RemovedBlobs []UserBlob `json:"removedBlobs" yaml:"removedBlobs"`
}
