package crudkit

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

// EncodeBase64 encodes data with the standard padded alphabet.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard base64. Surrounding whitespace and the quotes
// of a JSON string body are ignored.
func DecodeBase64(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if len(encoded) >= 2 && encoded[0] == '"' && encoded[len(encoded)-1] == '"' {
		encoded = encoded[1 : len(encoded)-1]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBase64, err)
	}

	return data, nil
}

// DownloadBlobAsBytes reads the whole response body.
func DownloadBlobAsBytes(ctx context.Context, t Transport, method, path string) ([]byte, error) {
	return SendJSONDownloadBlobAsBytes(ctx, t, method, path, nil)
}

// DownloadBlobAsBytesResult is DownloadBlobAsBytes with the error captured in
// the result.
func DownloadBlobAsBytesResult(ctx context.Context, t Transport, method, path string) ResponseResult[[]byte] {
	return resultOf(DownloadBlobAsBytes(ctx, t, method, path))
}

// SendJSONDownloadBlobAsBytes sends content like SendJSON and returns the raw
// response body.
func SendJSONDownloadBlobAsBytes(ctx context.Context, t Transport, method, path string, content interface{}) ([]byte, error) {
	req, err := newJSONRequest(downloadMethod(method), path, content)
	if err != nil {
		return nil, err
	}

	req.Headers = map[string]string{constants.HeaderAccept: "*/*"}

	return roundTrip(ctx, t, req)
}

// SendJSONDownloadBlobAsBytesResult is SendJSONDownloadBlobAsBytes with the
// error captured in the result.
func SendJSONDownloadBlobAsBytesResult(ctx context.Context, t Transport, method, path string, content interface{}) ResponseResult[[]byte] {
	return resultOf(SendJSONDownloadBlobAsBytes(ctx, t, method, path, content))
}

// SendValidatedJSONDownloadBlobAsBytes validates content before downloading.
func SendValidatedJSONDownloadBlobAsBytes[TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	content TContent,
	validator Validator,
) ResponseResult[APIResponse[[]byte]] {
	result := orEmpty(validator).Validate(ctx, content)
	if !result.IsValid() {
		return NewResult(FailedResponse[[]byte](result.Messages()...))
	}

	return bytesEnvelope(SendJSONDownloadBlobAsBytes(ctx, t, method, path, content))
}

// SendValidatedJSONRangeDownloadBlobAsBytes validates every element of
// contents before downloading. An empty slice is a failure.
func SendValidatedJSONRangeDownloadBlobAsBytes[TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	contents []TContent,
	validator Validator,
) ResponseResult[APIResponse[[]byte]] {
	failed, ok := validateRange(ctx, contents, validator)
	if !ok {
		return NewResult(FailedResponse[[]byte](failed...))
	}

	return bytesEnvelope(SendJSONDownloadBlobAsBytes(ctx, t, method, path, contents))
}

func bytesEnvelope(data []byte, err error) ResponseResult[APIResponse[[]byte]] {
	if err != nil {
		return resultOf(APIResponse[[]byte]{}, err)
	}

	return NewResult(SucceededResponse(data))
}

// DownloadBlobAsStream returns the unread response body. The caller must
// close it.
func DownloadBlobAsStream(ctx context.Context, t Transport, method, path string) (io.ReadCloser, error) {
	return SendJSONDownloadBlobAsStream(ctx, t, method, path, nil)
}

// DownloadBlobAsStreamResult is DownloadBlobAsStream with the error captured
// in the result.
func DownloadBlobAsStreamResult(ctx context.Context, t Transport, method, path string) ResponseResult[io.ReadCloser] {
	return resultOf(DownloadBlobAsStream(ctx, t, method, path))
}

// SendJSONDownloadBlobAsStream sends content like SendJSON and returns the
// unread response body.
func SendJSONDownloadBlobAsStream(ctx context.Context, t Transport, method, path string, content interface{}) (io.ReadCloser, error) {
	if t == nil {
		return nil, ErrTransportRequired
	}

	req, err := newJSONRequest(downloadMethod(method), path, content)
	if err != nil {
		return nil, err
	}

	req.Headers = map[string]string{constants.HeaderAccept: "*/*"}

	resp, err := t.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// SendJSONDownloadBlobAsStreamResult is SendJSONDownloadBlobAsStream with the
// error captured in the result.
func SendJSONDownloadBlobAsStreamResult(ctx context.Context, t Transport, method, path string, content interface{}) ResponseResult[io.ReadCloser] {
	return resultOf(SendJSONDownloadBlobAsStream(ctx, t, method, path, content))
}

// SendValidatedJSONDownloadBlobAsStream validates content before opening the
// download.
func SendValidatedJSONDownloadBlobAsStream[TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	content TContent,
	validator Validator,
) ResponseResult[APIResponse[io.ReadCloser]] {
	result := orEmpty(validator).Validate(ctx, content)
	if !result.IsValid() {
		return NewResult(FailedResponse[io.ReadCloser](result.Messages()...))
	}

	return streamEnvelope(SendJSONDownloadBlobAsStream(ctx, t, method, path, content))
}

// SendValidatedJSONRangeDownloadBlobAsStream validates every element of
// contents before opening the download. An empty slice is a failure.
func SendValidatedJSONRangeDownloadBlobAsStream[TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	contents []TContent,
	validator Validator,
) ResponseResult[APIResponse[io.ReadCloser]] {
	failed, ok := validateRange(ctx, contents, validator)
	if !ok {
		return NewResult(FailedResponse[io.ReadCloser](failed...))
	}

	return streamEnvelope(SendJSONDownloadBlobAsStream(ctx, t, method, path, contents))
}

func streamEnvelope(body io.ReadCloser, err error) ResponseResult[APIResponse[io.ReadCloser]] {
	if err != nil {
		return resultOf(APIResponse[io.ReadCloser]{}, err)
	}

	return NewResult(SucceededResponse(body))
}

// DownloadBlobAsBase64 downloads the body and encodes it as base64.
func DownloadBlobAsBase64(ctx context.Context, t Transport, method, path string) (string, error) {
	return SendJSONDownloadBlobAsBase64(ctx, t, method, path, nil)
}

// DownloadBlobAsBase64Result is DownloadBlobAsBase64 with the error captured
// in the result.
func DownloadBlobAsBase64Result(ctx context.Context, t Transport, method, path string) ResponseResult[string] {
	return resultOf(DownloadBlobAsBase64(ctx, t, method, path))
}

// SendJSONDownloadBlobAsBase64 sends content and encodes the response body as
// base64.
func SendJSONDownloadBlobAsBase64(ctx context.Context, t Transport, method, path string, content interface{}) (string, error) {
	data, err := SendJSONDownloadBlobAsBytes(ctx, t, method, path, content)
	if err != nil {
		return "", err
	}

	return EncodeBase64(data), nil
}

// SendJSONDownloadBlobAsBase64Result is SendJSONDownloadBlobAsBase64 with the
// error captured in the result.
func SendJSONDownloadBlobAsBase64Result(ctx context.Context, t Transport, method, path string, content interface{}) ResponseResult[string] {
	return resultOf(SendJSONDownloadBlobAsBase64(ctx, t, method, path, content))
}

// DownloadBase64AsBytes downloads a base64 text body and decodes it.
func DownloadBase64AsBytes(ctx context.Context, t Transport, method, path string) ([]byte, error) {
	return SendJSONDownloadBase64AsBytes(ctx, t, method, path, nil)
}

// DownloadBase64AsBytesResult is DownloadBase64AsBytes with the error
// captured in the result.
func DownloadBase64AsBytesResult(ctx context.Context, t Transport, method, path string) ResponseResult[[]byte] {
	return resultOf(DownloadBase64AsBytes(ctx, t, method, path))
}

// SendJSONDownloadBase64AsBytes sends content and decodes the base64 text
// response.
func SendJSONDownloadBase64AsBytes(ctx context.Context, t Transport, method, path string, content interface{}) ([]byte, error) {
	data, err := SendJSONDownloadBlobAsBytes(ctx, t, method, path, content)
	if err != nil {
		return nil, err
	}

	return DecodeBase64(string(data))
}

// SendJSONDownloadBase64AsBytesResult is SendJSONDownloadBase64AsBytes with
// the error captured in the result.
func SendJSONDownloadBase64AsBytesResult(ctx context.Context, t Transport, method, path string, content interface{}) ResponseResult[[]byte] {
	return resultOf(SendJSONDownloadBase64AsBytes(ctx, t, method, path, content))
}

// ReadAllAndClose drains a download stream.
func ReadAllAndClose(body io.ReadCloser) ([]byte, error) {
	defer func() { _ = body.Close() }()

	var buf bytes.Buffer

	_, err := io.Copy(&buf, body)
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}

	return buf.Bytes(), nil
}

// downloadMethod defaults an empty method to GET.
func downloadMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}

	return method
}
