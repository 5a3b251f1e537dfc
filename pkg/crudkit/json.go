package crudkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// newJSONRequest builds a request carrying content. GET requests send the
// content in the query string, other methods as a JSON body.
func newJSONRequest(method, path string, content interface{}) (*Request, error) {
	req := &Request{Method: method, Path: path}

	if content == nil {
		return req, nil
	}

	if method == http.MethodGet {
		query, err := ToQueryString(content)
		if err != nil {
			return nil, err
		}

		req.Query = query

		return req, nil
	}

	req.Body = content

	return req, nil
}

func roundTrip(ctx context.Context, t Transport, req *Request) ([]byte, error) {
	if t == nil {
		return nil, ErrTransportRequired
	}

	resp, err := t.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func decodeBody[T any](body []byte) (T, error) {
	var result T

	if len(body) == 0 {
		return result, nil
	}

	err := json.Unmarshal(body, &result)
	if err != nil {
		return result, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func sendDecoded[T any](ctx context.Context, t Transport, req *Request) (T, error) {
	body, err := roundTrip(ctx, t, req)
	if err != nil {
		var zero T

		return zero, err
	}

	return decodeBody[T](body)
}

// GetJSON sends a GET request and decodes the JSON response. query may be
// nil, url.Values, QueryParams or any value accepted by ToQueryString.
func GetJSON[T any](ctx context.Context, t Transport, path string, query interface{}) (T, error) {
	req, err := newJSONRequest(http.MethodGet, path, query)
	if err != nil {
		var zero T

		return zero, err
	}

	return sendDecoded[T](ctx, t, req)
}

// GetJSONResult is GetJSON with the error captured in the result.
func GetJSONResult[T any](ctx context.Context, t Transport, path string, query interface{}) ResponseResult[T] {
	return resultOf(GetJSON[T](ctx, t, path, query))
}

// SendJSON sends content with method and decodes the JSON response.
func SendJSON[T any](ctx context.Context, t Transport, method, path string, content interface{}) (T, error) {
	req, err := newJSONRequest(method, path, content)
	if err != nil {
		var zero T

		return zero, err
	}

	return sendDecoded[T](ctx, t, req)
}

// SendJSONNoContent sends content and discards the response body.
func SendJSONNoContent(ctx context.Context, t Transport, method, path string, content interface{}) error {
	req, err := newJSONRequest(method, path, content)
	if err != nil {
		return err
	}

	_, err = roundTrip(ctx, t, req)

	return err
}

// SendJSONResult is SendJSON with the error captured in the result.
func SendJSONResult[T any](ctx context.Context, t Transport, method, path string, content interface{}) ResponseResult[T] {
	return resultOf(SendJSON[T](ctx, t, method, path, content))
}

// PostJSON sends content as a POST request.
func PostJSON[T any](ctx context.Context, t Transport, path string, content interface{}) (T, error) {
	return SendJSON[T](ctx, t, http.MethodPost, path, content)
}

// PostJSONResult is PostJSON with the error captured in the result.
func PostJSONResult[T any](ctx context.Context, t Transport, path string, content interface{}) ResponseResult[T] {
	return SendJSONResult[T](ctx, t, http.MethodPost, path, content)
}

// PutJSON sends content as a PUT request.
func PutJSON[T any](ctx context.Context, t Transport, path string, content interface{}) (T, error) {
	return SendJSON[T](ctx, t, http.MethodPut, path, content)
}

// PutJSONResult is PutJSON with the error captured in the result.
func PutJSONResult[T any](ctx context.Context, t Transport, path string, content interface{}) ResponseResult[T] {
	return SendJSONResult[T](ctx, t, http.MethodPut, path, content)
}

// DeleteJSON sends content as the body of a DELETE request.
func DeleteJSON[T any](ctx context.Context, t Transport, path string, content interface{}) (T, error) {
	return SendJSON[T](ctx, t, http.MethodDelete, path, content)
}

// DeleteJSONResult is DeleteJSON with the error captured in the result.
func DeleteJSONResult[T any](ctx context.Context, t Transport, path string, content interface{}) ResponseResult[T] {
	return SendJSONResult[T](ctx, t, http.MethodDelete, path, content)
}

// SendValidatedJSON validates content and sends it only when it passes. A
// failed validation is returned as a Failed envelope without any request.
func SendValidatedJSON[TResp, TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	content TContent,
	validator Validator,
) ResponseResult[APIResponse[TResp]] {
	result := orEmpty(validator).Validate(ctx, content)
	if !result.IsValid() {
		return NewResult(FailedResponse[TResp](result.Messages()...))
	}

	return SendJSONResult[APIResponse[TResp]](ctx, t, method, path, content)
}

// SendValidatedJSONRange validates every element of contents and sends the
// whole slice only when all pass. An empty slice is a failure.
func SendValidatedJSONRange[TResp, TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	contents []TContent,
	validator Validator,
) ResponseResult[APIResponse[TResp]] {
	failed, ok := validateRange(ctx, contents, validator)
	if !ok {
		return NewResult(FailedResponse[TResp](failed...))
	}

	return SendJSONResult[APIResponse[TResp]](ctx, t, method, path, contents)
}

// validateRange returns the messages of the first failing element.
func validateRange[TContent any](ctx context.Context, contents []TContent, validator Validator) ([]string, bool) {
	if len(contents) == 0 {
		return []string{ErrEmptyContent.Error()}, false
	}

	validator = orEmpty(validator)

	for _, content := range contents {
		result := validator.Validate(ctx, content)
		if !result.IsValid() {
			return result.Messages(), false
		}
	}

	return nil, true
}
