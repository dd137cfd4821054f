package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Options customizes a run.
type Options struct {
	// Token signs a bearer token for a scenario's caller.
	Token func(email string) (string, error)
	// Vars seeds the placeholder table used by {{name}} substitutions.
	Vars map[string]string
}

var placeholder = regexp.MustCompile(`\{\{([A-Za-z0-9_.-]+)\}\}`)

// RunFile runs every scenario in path, in order, as subtests of t.
func RunFile(t *testing.T, handler http.Handler, path string, opts Options) {
	t.Helper()

	scenarios, err := LoadFile(path)
	require.NoError(t, err)

	vars := map[string]string{}
	for k, v := range opts.Vars {
		vars[k] = v
	}

	for _, s := range scenarios {
		ok := t.Run(s.Name, func(t *testing.T) {
			runScenario(t, handler, s, opts, vars)
		})
		if !ok {
			// later steps depend on this one
			return
		}
	}
}

func runScenario(t *testing.T, handler http.Handler, s *Scenario, opts Options, vars map[string]string) {
	t.Helper()

	var body io.Reader
	if len(s.RequestBody) > 0 {
		body = strings.NewReader(expand(string(s.RequestBody), vars))
	}
	req := httptest.NewRequest(s.RequestMethod, expand(s.RequestURL, vars), body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v, vars))
	}
	if s.Caller != "" {
		require.NotNil(t, opts.Token, "scenario %q has a caller but no Token func", s.Name)
		tok, err := opts.Token(s.Caller)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())
	AssertJSONSubset(t, s, []byte(expand(string(s.ExpectedBody), vars)), rec.Body.Bytes())

	if len(s.Capture) == 0 {
		return
	}
	var decoded interface{}
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&decoded))
	for name, path := range s.Capture {
		v, ok := lookup(decoded, path)
		require.True(t, ok, "[%s] capture %q: no value at %q", s.Name, name, path)
		vars[name] = fmt.Sprint(v)
	}
}

func expand(s string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := vars[m[2:len(m)-2]]; ok {
			return v
		}
		return m
	})
}

// lookup walks a dotted path such as "data.0.insertedId".
func lookup(v interface{}, path string) (interface{}, bool) {
	for _, key := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			v = next
		case []interface{}:
			var i int
			if _, err := fmt.Sscanf(key, "%d", &i); err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}
