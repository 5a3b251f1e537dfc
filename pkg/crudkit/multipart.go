package crudkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// FormData builds a multipart/form-data body. The first error stops the
// builder and is reported by Encode.
type FormData struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	parts  int
	err    error
}

// NewFormData creates an empty multipart body.
func NewFormData() *FormData {
	form := &FormData{}
	form.writer = multipart.NewWriter(&form.buf)

	return form
}

// Len returns the number of parts added so far.
func (f *FormData) Len() int {
	return f.parts
}

// AddField adds a plain text field.
func (f *FormData) AddField(name, value string) *FormData {
	if f.err != nil {
		return f
	}

	err := f.writer.WriteField(name, value)
	if err != nil {
		f.err = fmt.Errorf("writing field %s: %w", name, err)

		return f
	}

	f.parts++

	return f
}

// AddJSON adds content serialized as a JSON part.
func (f *FormData) AddJSON(name string, content interface{}) *FormData {
	if f.err != nil {
		return f
	}

	data, err := json.Marshal(content)
	if err != nil {
		f.err = fmt.Errorf("encoding %s part: %w", name, err)

		return f
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(name)))
	header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	return f.writePart(name, header, bytes.NewReader(data))
}

// AddBlob adds one file part named after the blob's InputName with the
// blob's Name as filename. Blobs without an InputName use their Name.
func (f *FormData) AddBlob(blob BlobData) *FormData {
	if f.err != nil {
		return f
	}

	if blob.Data == nil {
		f.err = fmt.Errorf("%w: %s", ErrNilBlobData, blob.Name)

		return f
	}

	fieldName := blob.InputName
	if fieldName == "" {
		fieldName = blob.Name
	}

	contentType := blob.Type
	if contentType == "" {
		contentType = constants.ContentTypeOctet
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(blob.Name)))
	header.Set(constants.HeaderContentType, contentType)

	return f.writePart(fieldName, header, blob.Data)
}

// AddBlobs adds every blob in order.
func (f *FormData) AddBlobs(blobs []BlobData) *FormData {
	for _, blob := range blobs {
		f.AddBlob(blob)
	}

	return f
}

func (f *FormData) writePart(name string, header textproto.MIMEHeader, content io.Reader) *FormData {
	part, err := f.writer.CreatePart(header)
	if err != nil {
		f.err = fmt.Errorf("creating part %s: %w", name, err)

		return f
	}

	_, err = io.Copy(part, content)
	if err != nil {
		f.err = fmt.Errorf("writing part %s: %w", name, err)

		return f
	}

	f.parts++

	return f
}

// Encode closes the body and returns it with its content type. The builder
// must not be used afterwards.
func (f *FormData) Encode() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}

	err := f.writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return f.buf.Bytes(), f.writer.FormDataContentType(), nil
}

func newFormRequest(method, path string, form *FormData) (*Request, error) {
	if form == nil {
		form = NewFormData()
	}

	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}

	return &Request{Method: method, Path: path, RawBody: body, ContentType: contentType}, nil
}

// SendFormData sends form and decodes the JSON response.
func SendFormData[T any](ctx context.Context, t Transport, method, path string, form *FormData) (T, error) {
	req, err := newFormRequest(method, path, form)
	if err != nil {
		var zero T

		return zero, err
	}

	return sendDecoded[T](ctx, t, req)
}

// SendFormDataResult is SendFormData with the error captured in the result.
func SendFormDataResult[T any](ctx context.Context, t Transport, method, path string, form *FormData) ResponseResult[T] {
	return resultOf(SendFormData[T](ctx, t, method, path, form))
}

// validateBlobs returns the messages of the first failing blob.
func validateBlobs(ctx context.Context, blobs []BlobData, validator Validator) ([]string, bool) {
	validator = orEmpty(validator)

	for _, blob := range blobs {
		result := validator.Validate(ctx, blob)
		if !result.IsValid() {
			return result.Messages(), false
		}
	}

	return nil, true
}

// SendBlobData validates every blob and uploads them as one multipart
// request. If any blob fails, nothing is sent and a Failed envelope is
// returned. The response body is decoded as TResp and wrapped in a Succeeded
// envelope.
func SendBlobData[TResp any](
	ctx context.Context,
	t Transport,
	method, path string,
	blobs []BlobData,
	validator Validator,
) (APIResponse[TResp], error) {
	failed, ok := validateBlobs(ctx, blobs, validator)
	if !ok {
		return FailedResponse[TResp](failed...), nil
	}

	data, err := SendFormData[TResp](ctx, t, method, path, NewFormData().AddBlobs(blobs))
	if err != nil {
		return APIResponse[TResp]{}, err
	}

	return SucceededResponse(data), nil
}

// SendBlobDataResult is SendBlobData with the error captured in the result.
func SendBlobDataResult[TResp any](
	ctx context.Context,
	t Transport,
	method, path string,
	blobs []BlobData,
	validator Validator,
) ResponseResult[APIResponse[TResp]] {
	return resultOf(SendBlobData[TResp](ctx, t, method, path, blobs, validator))
}

// SendJSONWithFormData sends content next to the parts of form. GET requests
// carry content in the query string; other methods add it as a JSON part
// named "content".
func SendJSONWithFormData[T any](
	ctx context.Context,
	t Transport,
	method, path string,
	content interface{},
	form *FormData,
) (T, error) {
	var zero T

	if form == nil {
		form = NewFormData()
	}

	var query url.Values

	if method == http.MethodGet {
		values, err := ToQueryString(content)
		if err != nil {
			return zero, err
		}

		query = values
	} else if content != nil {
		form.AddJSON(constants.JSONPartName, content)
	}

	req, err := newFormRequest(method, path, form)
	if err != nil {
		return zero, err
	}

	req.Query = query

	return sendDecoded[T](ctx, t, req)
}

// SendJSONWithFormDataResult is SendJSONWithFormData with the error captured
// in the result.
func SendJSONWithFormDataResult[T any](
	ctx context.Context,
	t Transport,
	method, path string,
	content interface{},
	form *FormData,
) ResponseResult[T] {
	return resultOf(SendJSONWithFormData[T](ctx, t, method, path, content, form))
}

// SendValidatedJSONWithBlobs validates content and then every blob before
// anything is sent, and uploads them together. The backend must answer with
// an envelope.
func SendValidatedJSONWithBlobs[TResp, TContent any](
	ctx context.Context,
	t Transport,
	method, path string,
	content TContent,
	validator Validator,
	blobs []BlobData,
	blobValidator Validator,
) ResponseResult[APIResponse[TResp]] {
	result := orEmpty(validator).Validate(ctx, content)
	if !result.IsValid() {
		return NewResult(FailedResponse[TResp](result.Messages()...))
	}

	failed, ok := validateBlobs(ctx, blobs, blobValidator)
	if !ok {
		return NewResult(FailedResponse[TResp](failed...))
	}

	return SendJSONWithFormDataResult[APIResponse[TResp]](ctx, t, method, path, content, NewFormData().AddBlobs(blobs))
}
