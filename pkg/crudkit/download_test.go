package crudkit_test

import (
	"bytes"
	"context"
	"math/rand/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

var fileBytes = []byte{0x00, 0x01, 0xfe, 0xff, 'h', 'i'}

func fileServer(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/files/raw", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(fileBytes)
	})
	mux.HandleFunc("/files/base64", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"` + crudkit.EncodeBase64(fileBytes) + `"`))
	})
	mux.HandleFunc("/files/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte("exported"))
	})
	mux.HandleFunc("/files/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	return mux
}

func TestBase64(t *testing.T) {
	t.Parallel()

	encoded := crudkit.EncodeBase64([]byte("hello"))
	assert.Equal(t, "aGVsbG8=", encoded)

	for _, input := range []string{"aGVsbG8=", " aGVsbG8=\n", `"aGVsbG8="`} {
		decoded, err := crudkit.DecodeBase64(input)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), decoded)
	}

	_, err := crudkit.DecodeBase64("not base64!")
	require.ErrorIs(t, err, crudkit.ErrInvalidBase64)
}

func TestBase64RoundTrip(t *testing.T) {
	t.Parallel()

	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	rng := rand.New(rand.NewPCG(1, 2))

	randomBytes := func(n int) []byte {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(rng.UintN(256))
		}

		return data
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "single byte", input: []byte{0xff}},
		{name: "two bytes", input: []byte{0x00, 0x80}},
		{name: "text", input: []byte("hello, world")},
		{name: "file bytes", input: fileBytes},
		{name: "all byte values", input: allBytes},
		{name: "random 1", input: randomBytes(1)},
		{name: "random 31", input: randomBytes(31)},
		{name: "random 1024", input: randomBytes(1024)},
		{name: "random 4099", input: randomBytes(4099)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decoded, err := crudkit.DecodeBase64(crudkit.EncodeBase64(tt.input))
			require.NoError(t, err)
			require.Len(t, decoded, len(tt.input))
			assert.True(t, bytes.Equal(tt.input, decoded))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDownloads(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, fileServer(t).ServeHTTP)
	ctx := context.Background()

	t.Run("bytes", func(t *testing.T) {
		t.Parallel()

		data, err := crudkit.DownloadBlobAsBytes(ctx, transport, "", "/files/raw")
		require.NoError(t, err)
		assert.Equal(t, fileBytes, data)
	})

	t.Run("bytes with content", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendJSONDownloadBlobAsBytesResult(ctx, transport, http.MethodPost, "/files/export", user{Name: "a"})
		require.False(t, result.HasException())
		assert.Equal(t, "exported", string(result.Response))
	})

	t.Run("stream", func(t *testing.T) {
		t.Parallel()

		body, err := crudkit.DownloadBlobAsStream(ctx, transport, http.MethodGet, "/files/raw")
		require.NoError(t, err)

		data, err := crudkit.ReadAllAndClose(body)
		require.NoError(t, err)
		assert.Equal(t, fileBytes, data)
	})

	t.Run("as base64", func(t *testing.T) {
		t.Parallel()

		encoded, err := crudkit.DownloadBlobAsBase64(ctx, transport, "", "/files/raw")
		require.NoError(t, err)
		assert.Equal(t, crudkit.EncodeBase64(fileBytes), encoded)
	})

	t.Run("base64 body as bytes", func(t *testing.T) {
		t.Parallel()

		result := crudkit.DownloadBase64AsBytesResult(ctx, transport, "", "/files/base64")
		require.False(t, result.HasException())
		assert.Equal(t, fileBytes, result.Response)
	})

	t.Run("invalid base64 body", func(t *testing.T) {
		t.Parallel()

		_, err := crudkit.SendJSONDownloadBase64AsBytes(ctx, transport, "", "/files/raw", nil)
		require.ErrorIs(t, err, crudkit.ErrInvalidBase64)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := crudkit.DownloadBlobAsBytes(ctx, transport, "", "/files/missing")
		assert.True(t, crudkit.IsNotFound(err))

		_, err = crudkit.DownloadBlobAsStream(ctx, transport, "", "/files/missing")
		assert.True(t, crudkit.IsNotFound(err))

		result := crudkit.DownloadBlobAsBase64Result(ctx, transport, "", "/files/missing")
		assert.True(t, result.HasException())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestValidatedDownloads(t *testing.T) {
	t.Parallel()

	transport := newTestTransport(t, fileServer(t).ServeHTTP)
	ctx := context.Background()
	validator := crudkit.NewStructValidator()

	t.Run("bytes", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendValidatedJSONDownloadBlobAsBytes(ctx, transport, http.MethodPost, "/files/export", user{Name: "a"}, validator)
		require.True(t, crudkit.Succeeded(result))
		assert.Equal(t, "exported", string(result.Response.Data))

		invalid := crudkit.SendValidatedJSONDownloadBlobAsBytes(ctx, transport, http.MethodPost, "/files/export", user{}, validator)
		assert.False(t, crudkit.Succeeded(invalid))
		assert.Equal(t, "name is required", invalid.Response.Message)
	})

	t.Run("bytes range", func(t *testing.T) {
		t.Parallel()

		empty := crudkit.SendValidatedJSONRangeDownloadBlobAsBytes(ctx, transport, http.MethodPost, "/files/export", []user{}, validator)
		assert.Equal(t, "content is null or empty", empty.Response.Message)

		ok := crudkit.SendValidatedJSONRangeDownloadBlobAsBytes(ctx, transport, http.MethodPost, "/files/export", []user{{Name: "a"}}, validator)
		assert.True(t, crudkit.Succeeded(ok))
	})

	t.Run("stream", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendValidatedJSONDownloadBlobAsStream(ctx, transport, http.MethodPost, "/files/export", user{Name: "a"}, validator)
		require.True(t, crudkit.Succeeded(result))

		data, err := crudkit.ReadAllAndClose(result.Response.Data)
		require.NoError(t, err)
		assert.Equal(t, "exported", string(data))

		invalid := crudkit.SendValidatedJSONRangeDownloadBlobAsStream(ctx, transport, http.MethodPost, "/files/export", []user{{}}, validator)
		assert.False(t, crudkit.Succeeded(invalid))
		assert.Nil(t, invalid.Response.Data)
	})

	t.Run("missing file is an exception", func(t *testing.T) {
		t.Parallel()

		result := crudkit.SendValidatedJSONDownloadBlobAsStream(ctx, transport, http.MethodGet, "/files/missing", userID{ID: 1}, nil)
		assert.True(t, result.HasException())
		assert.True(t, crudkit.IsNotFound(result.Err))
	})
}
