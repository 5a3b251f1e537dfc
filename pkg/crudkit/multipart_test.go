package crudkit_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

type part struct {
	name        string
	filename    string
	contentType string
	body        string
}

func readParts(t *testing.T, r *http.Request) []part {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(r.Body, params["boundary"])

	var parts []part

	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			return parts
		}

		require.NoError(t, err)

		body, err := io.ReadAll(p)
		require.NoError(t, err)

		parts = append(parts, part{
			name:        p.FormName(),
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			body:        string(body),
		})
	}
}

func TestFormData(t *testing.T) {
	t.Parallel()

	form := crudkit.NewFormData().
		AddField("note", "hello").
		AddJSON("content", user{Name: "ann"}).
		AddBlob(crudkit.BlobData{Name: "a.txt", InputName: "files", Type: "text/plain", Data: strings.NewReader("A")})

	assert.Equal(t, 3, form.Len())

	body, contentType, err := form.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, string(body), `name="files"; filename="a.txt"`)

	failed := crudkit.NewFormData().
		AddBlob(crudkit.BlobData{Name: "empty.bin"}).
		AddField("after", "ignored")

	_, _, err = failed.Encode()
	require.ErrorIs(t, err, crudkit.ErrNilBlobData)
	assert.Equal(t, 0, failed.Len())
}

func TestSendBlobData(t *testing.T) {
	t.Parallel()

	var received []part

	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		received = readParts(t, r)
		writeJSON(t, w, http.StatusOK, []crudkit.UserBlob{{ID: "1", Name: "a.txt"}, {ID: "2", Name: "b.bin"}})
	})

	blobs := []crudkit.BlobData{
		{Name: "a.txt", InputName: "docs", Type: "text/plain", Data: strings.NewReader("A")},
		{Name: "b.bin", Data: strings.NewReader("B")},
	}

	resp, err := crudkit.SendBlobData[[]crudkit.UserBlob](
		context.Background(), transport, http.MethodPost, "/api/files/Upload", blobs, crudkit.BlobValidator{})
	require.NoError(t, err)
	require.True(t, resp.Succeeded())
	assert.Len(t, resp.Data, 2)

	assert.Equal(t, []part{
		{name: "docs", filename: "a.txt", contentType: "text/plain", body: "A"},
		{name: "b.bin", filename: "b.bin", contentType: "application/octet-stream", body: "B"},
	}, received)
}

func TestSendBlobData_InvalidBlobStopsUpload(t *testing.T) {
	t.Parallel()

	requests := 0
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	blobs := []crudkit.BlobData{
		{Name: "a.txt", Size: 1, Data: strings.NewReader("A")},
		{Name: "huge.bin", Size: 100, Data: strings.NewReader("B")},
	}

	result := crudkit.SendBlobDataResult[[]crudkit.UserBlob](
		context.Background(), transport, http.MethodPost, "/upload", blobs, crudkit.BlobValidator{MaxSize: 10})

	assert.False(t, result.HasException())
	assert.False(t, crudkit.Succeeded(result))
	assert.Equal(t, "huge.bin exceeds the maximum size of 10 bytes", result.Response.Message)
	assert.Zero(t, requests)
}

func TestSendJSONWithFormData(t *testing.T) {
	t.Parallel()

	t.Run("content travels as json part", func(t *testing.T) {
		t.Parallel()

		var received []part

		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			received = readParts(t, r)
			writeJSON(t, w, http.StatusOK, map[string]string{"ok": "yes"})
		})

		form := crudkit.NewFormData().AddField("kind", "avatar")

		resp, err := crudkit.SendJSONWithFormData[map[string]string](
			context.Background(), transport, http.MethodPost, "/upload", user{Name: "ann"}, form)
		require.NoError(t, err)
		assert.Equal(t, "yes", resp["ok"])

		require.Len(t, received, 2)
		assert.Equal(t, "kind", received[0].name)
		assert.Equal(t, "content", received[1].name)
		assert.Equal(t, "application/json", received[1].contentType)

		var content user

		require.NoError(t, json.Unmarshal([]byte(received[1].body), &content))
		assert.Equal(t, "ann", content.Name)
	})

	t.Run("get sends content in the query", func(t *testing.T) {
		t.Parallel()

		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "3", r.URL.Query().Get("model.id"))
			writeJSON(t, w, http.StatusOK, map[string]string{})
		})

		result := crudkit.SendJSONWithFormDataResult[map[string]string](
			context.Background(), transport, http.MethodGet, "/search", crudkit.NewIdentifier(userID{ID: 3}), nil)
		assert.False(t, result.HasException())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSendValidatedJSONWithBlobs(t *testing.T) {
	t.Parallel()

	t.Run("uploads content and blobs together", func(t *testing.T) {
		t.Parallel()

		var received []part

		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			received = readParts(t, r)
			writeJSON(t, w, http.StatusOK, crudkit.SucceededResponse(crudkit.RecordWithBlobs[user]{
				Record: user{ID: 1, Name: "ann"},
				Blobs:  []crudkit.UserBlob{{ID: "b1", Name: "a.png"}},
			}))
		})

		result := crudkit.SendValidatedJSONWithBlobs[crudkit.RecordWithBlobs[user]](
			context.Background(), transport, http.MethodPost, "/api/users/AddWithBlobs",
			user{Name: "ann"}, crudkit.NewStructValidator(),
			[]crudkit.BlobData{{Name: "a.png", InputName: "avatar", Type: "image/png", Data: strings.NewReader("png")}},
			crudkit.BlobValidator{AllowedTypes: []string{"image/*"}})

		require.True(t, crudkit.Succeeded(result))
		assert.Equal(t, 1, result.Response.Data.Record.ID)
		assert.Equal(t, "b1", result.Response.Data.Blobs[0].ID)

		require.Len(t, received, 2)
		assert.Equal(t, "avatar", received[0].name)
		assert.Equal(t, "image/png", received[0].contentType)
		assert.Equal(t, "content", received[1].name)
	})

	t.Run("invalid content", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendValidatedJSONWithBlobs[crudkit.RecordWithBlobs[user]](
			context.Background(), nil, http.MethodPost, "/x", user{}, crudkit.NewStructValidator(), nil, nil)

		assert.False(t, result.HasException())
		assert.Equal(t, "name is required", result.Response.Message)
	})

	t.Run("invalid blob", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendValidatedJSONWithBlobs[crudkit.RecordWithBlobs[user]](
			context.Background(), nil, http.MethodPost, "/x", user{Name: "a"}, nil,
			[]crudkit.BlobData{{Name: "a.txt", Type: "text/plain", Data: strings.NewReader("A")}},
			crudkit.BlobValidator{AllowedTypes: []string{"image/*"}})

		assert.False(t, result.HasException())
		assert.Equal(t, `a.txt has type "text/plain" which is not allowed`, result.Response.Message)
	})

	t.Run("rejection envelope", func(t *testing.T) {
		t.Parallel()

		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusUnprocessableEntity, crudkit.FailedResponse[crudkit.RecordWithBlobs[user]]("duplicate"))
		})

		result := crudkit.SendValidatedJSONWithBlobs[crudkit.RecordWithBlobs[user]](
			context.Background(), transport, http.MethodPut, "/x", user{Name: "a"}, nil, nil, nil)

		assert.False(t, result.HasException())
		assert.Equal(t, []string{"duplicate"}, result.Response.ErrorMessages)
	})
}
