package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffJSONSubset(t *testing.T) {
	var exp, act interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":{"deletedCount":1}}`), &exp))
	require.NoError(t, json.Unmarshal([]byte(`{"status":200,"success":true,"data":{"deletedCount":1}}`), &act))
	assert.Empty(t, DiffJSON("", exp, act))

	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":{"deletedCount":0}}`), &act))
	diffs := DiffJSON("", exp, act)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0], "data.deletedCount")
}

func TestRunFileCapturesValues(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"insertedId":"abc"}}`))
	})
	mux.HandleFunc("/items/abc", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok:ann@example.com" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"abc"}}`))
	})

	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"name":"create","requestMethod":"POST","requestUrl":"/items","requestBody":{},"expectedCode":201,
	   "capture":{"itemId":"data.insertedId"}},
	  {"name":"read","requestUrl":"/items/{{itemId}}","caller":"ann@example.com","expectedCode":200,
	   "expectedBody":{"data":{"id":"{{itemId}}"}}}
	]`), 0o644))

	RunFile(t, mux, path, Options{Token: func(email string) (string, error) { return "tok:" + email, nil }})
}

func TestLoadFileValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"x","requestUrl":"/"}]`), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "expectedCode is required")
}
