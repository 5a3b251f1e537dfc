package crudkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/crudkit/internal/http"
)

type user struct {
	ID    int    `json:"id"              validate:"gte=0"`
	Name  string `json:"name"            validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type userID struct {
	ID int `json:"id"`
}

func newTestTransport(t *testing.T, handler http.HandlerFunc) *internalhttp.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return internalhttp.NewClient(server.URL, nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}
