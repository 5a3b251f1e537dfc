package crudkit

import (
	"context"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

// Endpoints holds the paths of one resource's CRUD actions.
type Endpoints struct {
	GetOne          string
	GetPaged        string
	Add             string
	Update          string
	Delete          string
	AddWithBlobs    string
	UpdateWithBlobs string
}

// DefaultEndpoints returns the conventional paths for resource under /api,
// e.g. /api/users/GetOne.
func DefaultEndpoints(resource string) Endpoints {
	return EndpointsWithPrefix(constants.DefaultAPIPrefix, resource)
}

// EndpointsWithPrefix returns the conventional paths for resource under prefix.
func EndpointsWithPrefix(prefix, resource string) Endpoints {
	base := strings.TrimRight(prefix, "/") + "/" + strings.Trim(resource, "/") + "/"

	return Endpoints{
		GetOne:          base + constants.ActionGetOne,
		GetPaged:        base + constants.ActionGetPaged,
		Add:             base + constants.ActionAdd,
		Update:          base + constants.ActionUpdate,
		Delete:          base + constants.ActionDelete,
		AddWithBlobs:    base + constants.ActionAddWithBlobs,
		UpdateWithBlobs: base + constants.ActionUpdateWithBlobs,
	}
}

// HTTPService performs the CRUD actions of one resource over a Transport.
type HTTPService[T, TID any] struct {
	transport     Transport
	endpoints     Endpoints
	blobValidator Validator
}

// ServiceOption configures an HTTPService.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	blobValidator Validator
}

// WithBlobValidator sets the validator applied to every attachment.
func WithBlobValidator(validator Validator) ServiceOption {
	return func(o *serviceOptions) {
		o.blobValidator = validator
	}
}

// NewHTTPService creates a service for endpoints.
func NewHTTPService[T, TID any](transport Transport, endpoints Endpoints, opts ...ServiceOption) (*HTTPService[T, TID], error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}

	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return &HTTPService[T, TID]{
		transport:     transport,
		endpoints:     endpoints,
		blobValidator: orEmpty(options.blobValidator),
	}, nil
}

// Endpoints returns the paths used by the service.
func (s *HTTPService[T, TID]) Endpoints() Endpoints {
	return s.endpoints
}

// GetOne fetches the record addressed by id. The identifier travels in the
// query string, e.g. model.id=7.
func (s *HTTPService[T, TID]) GetOne(ctx context.Context, id Identifier[TID], validator Validator) ResponseResult[APIResponse[T]] {
	return SendValidatedJSON[T](ctx, s.transport, http.MethodGet, s.endpoints.GetOne, id, validator)
}

// GetPaged fetches one page of records.
func (s *HTTPService[T, TID]) GetPaged(ctx context.Context, params *QueryParams) ResponseResult[APIResponse[Paged[[]T]]] {
	return GetJSONResult[APIResponse[Paged[[]T]]](ctx, s.transport, s.endpoints.GetPaged, params.ToValues())
}

// Add creates record.
func (s *HTTPService[T, TID]) Add(ctx context.Context, record T, validator Validator) ResponseResult[APIResponse[T]] {
	return SendValidatedJSON[T](ctx, s.transport, http.MethodPost, s.endpoints.Add, record, validator)
}

// Update replaces record.
func (s *HTTPService[T, TID]) Update(ctx context.Context, record T, validator Validator) ResponseResult[APIResponse[T]] {
	return SendValidatedJSON[T](ctx, s.transport, http.MethodPut, s.endpoints.Update, record, validator)
}

// Delete removes the record addressed by id and returns it.
func (s *HTTPService[T, TID]) Delete(ctx context.Context, id Identifier[TID], validator Validator) ResponseResult[APIResponse[T]] {
	return SendValidatedJSON[T](ctx, s.transport, http.MethodDelete, s.endpoints.Delete, id, validator)
}

// AddWithBlobs creates record and uploads blobs in one multipart request.
func (s *HTTPService[T, TID]) AddWithBlobs(
	ctx context.Context,
	record T,
	validator Validator,
	blobs []BlobData,
) ResponseResult[APIResponse[RecordWithBlobs[T]]] {
	return SendValidatedJSONWithBlobs[RecordWithBlobs[T]](
		ctx, s.transport, http.MethodPost, s.endpoints.AddWithBlobs, record, validator, blobs, s.blobValidator)
}

// UpdateWithBlobs replaces record and uploads blobs in one multipart request.
func (s *HTTPService[T, TID]) UpdateWithBlobs(
	ctx context.Context,
	record T,
	validator Validator,
	blobs []BlobData,
) ResponseResult[APIResponse[RecordUpdateWithBlobs[T]]] {
	return SendValidatedJSONWithBlobs[RecordUpdateWithBlobs[T]](
		ctx, s.transport, http.MethodPut, s.endpoints.UpdateWithBlobs, record, validator, blobs, s.blobValidator)
}
