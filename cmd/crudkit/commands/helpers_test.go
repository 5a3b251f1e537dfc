package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// useTestConfig points viper at a temporary config file and api endpoint.
// Tests using it must not run in parallel because viper is global.
func useTestConfig(t *testing.T, apiEndpoint string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)
	viper.Set("output", "json")

	if apiEndpoint != "" {
		viper.Set("api", apiEndpoint)
	}

	return configFile
}

func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// backend serves a users resource holding one record with id 7.
type backend struct {
	t        *testing.T
	requests []string
	deleted  bool
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{t: t}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	return b, server
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	switch r.URL.Path {
	case "/api/users/GetOne":
		if r.URL.Query().Get("model.id") != "7" {
			writeEnvelope(b.t, w, http.StatusNotFound, map[string]interface{}{
				"status": "Failed", "message": "user not found",
			})

			return
		}

		writeEnvelope(b.t, w, http.StatusOK, map[string]interface{}{
			"status": "Succeeded",
			"data":   map[string]interface{}{"id": 7, "name": "Ada"},
		})
	case "/api/users/Add":
		var record map[string]interface{}

		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&record))

		record["id"] = 8

		writeEnvelope(b.t, w, http.StatusOK, map[string]interface{}{"status": "Succeeded", "data": record})
	case "/api/users/Update":
		var record map[string]interface{}

		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&record))
		writeEnvelope(b.t, w, http.StatusOK, map[string]interface{}{"status": "Succeeded", "data": record})
	case "/api/users/Delete":
		b.deleted = true

		writeEnvelope(b.t, w, http.StatusOK, map[string]interface{}{
			"status": "Succeeded",
			"data":   map[string]interface{}{"id": 7, "name": "Ada"},
		})
	case "/api/users/GetPaged":
		writeEnvelope(b.t, w, http.StatusOK, map[string]interface{}{
			"status": "Succeeded",
			"data": map[string]interface{}{
				"pageIndex":  1,
				"pageSize":   2,
				"totalCount": 2,
				"totalPages": 1,
				"data": []map[string]interface{}{
					{"id": 7, "name": "Ada"},
					{"id": 8, "name": "Grace"},
				},
			},
		})
	case "/files/report":
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("report body"))
	default:
		http.NotFound(w, r)
	}
}
