package crudclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/crudkit/pkg/crudclient"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type userKey struct {
	ID int `json:"id"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := crudclient.New(nil)
		require.ErrorIs(t, err, crudkit.ErrConfigRequired)
	})

	t.Run("requires endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := crudclient.New(&crudkit.Config{})
		require.ErrorIs(t, err, crudkit.ErrAPIEndpointRequired)
	})

	t.Run("creates transport with config", func(t *testing.T) {
		t.Parallel()

		transport, err := crudclient.New(&crudkit.Config{APIEndpoint: "api.example.com"})
		require.NoError(t, err)
		assert.NotNil(t, transport)
	})

	t.Run("skip TLS outside dev mode", func(t *testing.T) {
		t.Parallel()

		_, err := crudclient.New(&crudkit.Config{APIEndpoint: "https://api.example.com", SkipTLSVerify: true})
		require.ErrorIs(t, err, crudkit.ErrSkipTLSOnlyInDev)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	transport, err := crudclient.NewWithEndpoint("https://api.example.com")
	require.NoError(t, err)
	assert.NotNil(t, transport)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport, err := crudclient.NewWithToken(server.URL, "test-token")
	require.NoError(t, err)

	resp, err := transport.Do(context.Background(), &crudkit.Request{Method: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNew_ConfigOptions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "raw-jwt", request.Header.Get("Authorization"))
		assert.Equal(t, "tests/1.0", request.Header.Get("User-Agent"))
		assert.Equal(t, "acme", request.Header.Get("X-Tenant"))
		assert.NotEmpty(t, request.Header.Get("X-Request-ID"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport, err := crudclient.New(&crudkit.Config{
		APIEndpoint:  server.URL + "/",
		AccessToken:  "raw-jwt",
		RawToken:     true,
		UserAgent:    "tests/1.0",
		HTTPTimeout:  5 * time.Second,
		Headers:      map[string]string{"X-Tenant": "acme"},
		Interceptors: crudkit.NewInterceptorChain().AddRequestInterceptor(crudkit.RequestIDInterceptor()),
	})
	require.NoError(t, err)

	_, err = transport.Do(context.Background(), &crudkit.Request{Method: http.MethodGet, Path: "/api/users/GetPaged"})
	require.NoError(t, err)
}

func TestNewService(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/users/GetOne", request.URL.Path)
		assert.Equal(t, "7", request.URL.Query().Get("model.id"))
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"status":"Succeeded","data":{"id":7,"name":"ada"}}`))
	}))
	defer server.Close()

	service, err := crudclient.NewService[user, userKey](&crudkit.Config{APIEndpoint: server.URL}, crudkit.DefaultEndpoints("users"))
	require.NoError(t, err)

	result := service.GetOne(context.Background(), crudkit.NewIdentifier(userKey{ID: 7}), nil)
	require.True(t, crudkit.Succeeded(result))
	assert.Equal(t, user{ID: 7, Name: "ada"}, result.Response.Data)
}
