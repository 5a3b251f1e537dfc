package form

import (
	"context"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// Service is the backend a Form drives. crudkit.HTTPService implements it.
type Service[T, TID any] interface {
	GetOne(ctx context.Context, id crudkit.Identifier[TID], validator crudkit.Validator) crudkit.ResponseResult[crudkit.APIResponse[T]]
	Add(ctx context.Context, record T, validator crudkit.Validator) crudkit.ResponseResult[crudkit.APIResponse[T]]
	Update(ctx context.Context, record T, validator crudkit.Validator) crudkit.ResponseResult[crudkit.APIResponse[T]]
	Delete(ctx context.Context, id crudkit.Identifier[TID], validator crudkit.Validator) crudkit.ResponseResult[crudkit.APIResponse[T]]
	AddWithBlobs(
		ctx context.Context,
		record T,
		validator crudkit.Validator,
		blobs []crudkit.BlobData,
	) crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordWithBlobs[T]]]
	UpdateWithBlobs(
		ctx context.Context,
		record T,
		validator crudkit.Validator,
		blobs []crudkit.BlobData,
	) crudkit.ResponseResult[crudkit.APIResponse[crudkit.RecordUpdateWithBlobs[T]]]
}
