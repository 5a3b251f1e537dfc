package crudkit_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

func TestQueryParams_ToValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *crudkit.QueryParams
		expected url.Values
	}{
		{
			name:     "nil params",
			params:   nil,
			expected: url.Values{},
		},
		{
			name:     "first page",
			params:   crudkit.NewQueryParams(),
			expected: url.Values{"pageIndex": {"1"}},
		},
		{
			name: "everything",
			params: crudkit.NewQueryParams().
				WithPage(3, 50).
				WithOrderBy("-name").
				WithSearch("ann").
				WithFilter("role", "admin"),
			expected: url.Values{
				"pageIndex": {"3"},
				"pageSize":  {"50"},
				"orderBy":   {"-name"},
				"search":    {"ann"},
				"role":      {"admin"},
			},
		},
		{
			name:     "filter on zero value",
			params:   (&crudkit.QueryParams{}).WithFilter("active", "true"),
			expected: url.Values{"active": {"true"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.params.ToValues())
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestToQueryString(t *testing.T) {
	t.Parallel()

	type filter struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	type search struct {
		Filter filter   `json:"filter"`
		Tags   []string `json:"tags"`
		Limit  *int     `json:"limit"`
		Skip   *int     `json:"skip"`
	}

	limit := 10

	tests := []struct {
		name     string
		input    interface{}
		expected url.Values
	}{
		{
			name:     "nil",
			input:    nil,
			expected: url.Values{},
		},
		{
			name:     "identifier",
			input:    crudkit.NewIdentifier(userID{ID: 7}),
			expected: url.Values{"model.id": {"7"}},
		},
		{
			name:     "pointer to identifier",
			input:    &crudkit.Identifier[userID]{Model: userID{ID: 8}},
			expected: url.Values{"model.id": {"8"}},
		},
		{
			name: "nested struct with slice and pointers",
			input: search{
				Filter: filter{Name: "ann", Active: true},
				Tags:   []string{"a", "b"},
				Limit:  &limit,
			},
			expected: url.Values{
				"filter.name":   {"ann"},
				"filter.active": {"true"},
				"tags":          {"a", "b"},
				"limit":         {"10"},
			},
		},
		{
			name:  "top level slice binds by index",
			input: []userID{{ID: 1}, {ID: 2}},
			expected: url.Values{
				"[0].id": {"1"},
				"[1].id": {"2"},
			},
		},
		{
			name:     "map",
			input:    map[string]interface{}{"page": 2, "q": "x"},
			expected: url.Values{"page": {"2"}, "q": {"x"}},
		},
		{
			name:     "string map",
			input:    map[string]string{"a": "b"},
			expected: url.Values{"a": {"b"}},
		},
		{
			name:     "url values pass through",
			input:    url.Values{"a": {"1", "2"}},
			expected: url.Values{"a": {"1", "2"}},
		},
		{
			name:     "query params",
			input:    crudkit.NewQueryParams().WithPage(2, 10),
			expected: url.Values{"pageIndex": {"2"}, "pageSize": {"10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values, err := crudkit.ToQueryString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestToQueryString_Invalid(t *testing.T) {
	t.Parallel()

	_, err := crudkit.ToQueryString(42)
	require.ErrorIs(t, err, crudkit.ErrInvalidQueryValue)

	_, err = crudkit.ToQueryString(func() {})
	require.ErrorIs(t, err, crudkit.ErrInvalidQueryValue)

	_, err = crudkit.ToQueryString(map[string]interface{}{"ch": make(chan int)})
	require.ErrorIs(t, err, crudkit.ErrInvalidQueryValue)
}
