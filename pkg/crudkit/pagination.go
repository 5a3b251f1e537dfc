package crudkit

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

// PaginationClient fetches a single page.
type PaginationClient[T any] interface {
	GetPaged(ctx context.Context, params *QueryParams) ResponseResult[APIResponse[Paged[[]T]]]
}

// PaginationOptions bounds a multi-page walk.
type PaginationOptions struct {
	PageSize int
	MaxPages int
}

// DefaultPaginationOptions returns default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.DefaultPageSize,
		MaxPages: constants.DefaultMaxPages,
	}
}

// ForEachPage walks pages starting at params.PageIndex (or 1) until a page
// reports no next page or MaxPages pages were read. A failed envelope stops
// the walk with an error wrapping ErrPageFailed.
func ForEachPage[T any](
	ctx context.Context,
	client PaginationClient[T],
	params *QueryParams,
	options *PaginationOptions,
	fn func(page Paged[[]T]) error,
) error {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	query := QueryParams{PageIndex: 1}
	if params != nil {
		query = *params
	}

	if query.PageIndex < 1 {
		query.PageIndex = 1
	}

	if query.PageSize == 0 && options.PageSize > 0 {
		query.PageSize = options.PageSize
	}

	for pages := 0; options.MaxPages <= 0 || pages < options.MaxPages; pages++ {
		result := client.GetPaged(ctx, &query)
		if result.HasException() {
			return fmt.Errorf("fetching page %d: %w", query.PageIndex, result.Err)
		}

		if !result.Response.Succeeded() {
			return fmt.Errorf("%w: page %d: %s", ErrPageFailed, query.PageIndex, result.Response.Message)
		}

		page := result.Response.Data

		err := fn(page)
		if err != nil {
			return err
		}

		if !page.HasNextPage {
			return nil
		}

		query.PageIndex++
	}

	return nil
}

// FetchAllPages collects the records of every page.
func FetchAllPages[T any](ctx context.Context, client PaginationClient[T], params *QueryParams, options *PaginationOptions) ([]T, error) {
	var all []T

	err := ForEachPage(ctx, client, params, options, func(page Paged[[]T]) error {
		all = append(all, page.Data...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}
