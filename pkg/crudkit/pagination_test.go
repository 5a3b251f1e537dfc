package crudkit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

var errStop = errors.New("stop")

// MockPaginationClient implements PaginationClient for testing.
type MockPaginationClient struct {
	pages     map[int]crudkit.ResponseResult[crudkit.APIResponse[crudkit.Paged[[]user]]]
	requested []crudkit.QueryParams
}

func (m *MockPaginationClient) GetPaged(
	ctx context.Context,
	params *crudkit.QueryParams,
) crudkit.ResponseResult[crudkit.APIResponse[crudkit.Paged[[]user]]] {
	m.requested = append(m.requested, *params)

	page, ok := m.pages[params.PageIndex]
	if !ok {
		return crudkit.NewResult(crudkit.SucceededResponse(crudkit.Paged[[]user]{PageIndex: params.PageIndex}))
	}

	return page
}

func page(index int, hasNext bool, users ...user) crudkit.ResponseResult[crudkit.APIResponse[crudkit.Paged[[]user]]] {
	return crudkit.NewResult(crudkit.SucceededResponse(crudkit.Paged[[]user]{
		PageIndex:   index,
		HasNextPage: hasNext,
		Data:        users,
	}))
}

func threePages() *MockPaginationClient {
	return &MockPaginationClient{
		pages: map[int]crudkit.ResponseResult[crudkit.APIResponse[crudkit.Paged[[]user]]]{
			1: page(1, true, user{ID: 1}, user{ID: 2}),
			2: page(2, true, user{ID: 3}),
			3: page(3, false, user{ID: 4}),
		},
	}
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	client := threePages()

	all, err := crudkit.FetchAllPages[user](context.Background(), client, crudkit.NewQueryParams().WithSearch("a"), nil)
	require.NoError(t, err)
	assert.Equal(t, []user{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, all)

	require.Len(t, client.requested, 3)
	assert.Equal(t, 25, client.requested[0].PageSize)
	assert.Equal(t, "a", client.requested[2].Search)
	assert.Equal(t, 3, client.requested[2].PageIndex)
}

func TestForEachPage_MaxPages(t *testing.T) {
	t.Parallel()

	client := threePages()

	var indexes []int

	err := crudkit.ForEachPage[user](context.Background(), client, nil, &crudkit.PaginationOptions{PageSize: 2, MaxPages: 2},
		func(page crudkit.Paged[[]user]) error {
			indexes = append(indexes, page.PageIndex)

			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indexes)
	assert.Equal(t, 2, client.requested[0].PageSize)
}

func TestForEachPage_Errors(t *testing.T) {
	t.Parallel()

	t.Run("callback error stops", func(t *testing.T) {
		t.Parallel()

		client := threePages()

		err := crudkit.ForEachPage[user](context.Background(), client, nil, nil, func(crudkit.Paged[[]user]) error {
			return errStop
		})
		require.ErrorIs(t, err, errStop)
		assert.Len(t, client.requested, 1)
	})

	t.Run("exception", func(t *testing.T) {
		t.Parallel()

		client := threePages()
		client.pages[2] = crudkit.NewException[crudkit.APIResponse[crudkit.Paged[[]user]]](errStop)

		_, err := crudkit.FetchAllPages[user](context.Background(), client, nil, nil)
		require.ErrorIs(t, err, errStop)
		assert.Contains(t, err.Error(), "fetching page 2")
	})

	t.Run("failed envelope", func(t *testing.T) {
		t.Parallel()

		client := threePages()
		client.pages[1] = crudkit.NewResult(crudkit.FailedResponse[crudkit.Paged[[]user]]("not allowed"))

		_, err := crudkit.FetchAllPages[user](context.Background(), client, nil, nil)
		require.ErrorIs(t, err, crudkit.ErrPageFailed)
		assert.Contains(t, err.Error(), "not allowed")
	})
}
