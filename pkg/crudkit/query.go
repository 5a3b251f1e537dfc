package crudkit

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// QueryParams represents the listing query accepted by GetPaged endpoints.
type QueryParams struct {
	PageIndex int
	PageSize  int
	OrderBy   string
	Search    string
	Filters   map[string]string
}

// NewQueryParams creates query params for the first page.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		PageIndex: 1,
		Filters:   make(map[string]string),
	}
}

// WithPage sets the page index and size.
func (q *QueryParams) WithPage(index, size int) *QueryParams {
	q.PageIndex = index
	q.PageSize = size

	return q
}

// WithOrderBy sets the sort expression.
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithSearch sets the free text search.
func (q *QueryParams) WithSearch(search string) *QueryParams {
	q.Search = search

	return q
}

// WithFilter adds a filter parameter.
func (q *QueryParams) WithFilter(key, value string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}

	q.Filters[key] = value

	return q
}

// ToValues converts QueryParams to url.Values. Zero fields are omitted.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.PageIndex > 0 {
		values.Set("pageIndex", strconv.Itoa(q.PageIndex))
	}

	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	if q.OrderBy != "" {
		values.Set("orderBy", q.OrderBy)
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	for key, value := range q.Filters {
		values.Set(key, value)
	}

	return values
}

// ToQueryString flattens v into query parameters. Structs and maps are
// decoded with their json names and nested values use dotted keys, so
// Identifier{Model: User{ID: 7}} becomes "model.id=7". Slices repeat the key.
func ToQueryString(v interface{}) (url.Values, error) {
	switch q := v.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return q, nil
	case QueryParams:
		return q.ToValues(), nil
	case *QueryParams:
		return q.ToValues(), nil
	case map[string]string:
		values := url.Values{}
		for key, value := range q {
			values.Set(key, value)
		}

		return values, nil
	}

	values := url.Values{}

	// Top level lists bind by index: [0].id=1&[1].id=2.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			err := addQueryValue(values, "["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
		}

		return values, nil
	}

	fields, err := decodeToMap(v)
	if err != nil {
		return nil, err
	}

	err = flattenQuery(values, "", fields)
	if err != nil {
		return nil, err
	}

	return values, nil
}

func decodeToMap(v interface{}) (map[string]interface{}, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return map[string]interface{}{}, nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: %T", ErrInvalidQueryValue, v)
	}

	fields := make(map[string]interface{})

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &fields,
	})
	if err != nil {
		return nil, fmt.Errorf("creating query decoder: %w", err)
	}

	err = decoder.Decode(rv.Interface())
	if err != nil {
		return nil, fmt.Errorf("decoding query value: %w", err)
	}

	return fields, nil
}

func flattenQuery(values url.Values, prefix string, fields map[string]interface{}) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		err := addQueryValue(values, name, fields[key])
		if err != nil {
			return err
		}
	}

	return nil
}

func addQueryValue(values url.Values, name string, value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string:
		values.Add(name, v)

		return nil
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return fmt.Errorf("encoding query parameter %s: %w", name, err)
		}

		values.Add(name, string(text))

		return nil
	case fmt.Stringer:
		values.Add(name, v.String())

		return nil
	case map[string]interface{}:
		return flattenQuery(values, name, v)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return addQueryValue(values, name, rv.Elem().Interface())
	case reflect.Struct, reflect.Map:
		nested, err := decodeToMap(value)
		if err != nil {
			return err
		}

		return flattenQuery(values, name, nested)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			values.Add(name, string(rv.Bytes()))

			return nil
		}

		for i := range rv.Len() {
			err := addQueryValue(values, name, rv.Index(i).Interface())
			if err != nil {
				return err
			}
		}

		return nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("%w: %s is a %s", ErrInvalidQueryValue, name, rv.Kind())
	default:
		values.Add(name, fmt.Sprint(value))

		return nil
	}
}
