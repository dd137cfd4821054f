package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistroboss/bistro/pkg/apperr"
)

type key struct{}

func allow(r *http.Request) Outcome {
	return Continue(context.WithValue(r.Context(), key{}, "seen"))
}

func deny(*http.Request) Outcome {
	return Halt(apperr.Forbidden())
}

func TestMiddlewareContinue(t *testing.T) {
	var got interface{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Context().Value(key{})
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	Guard(allow).Middleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "seen", got)
}

func TestMiddlewareHaltWritesOnceAndSkipsNext(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	Guard(deny).Middleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/menu/1", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "forbidden", body["error"])
	assert.Equal(t, "forbidden access", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestAllThreadsContextAndStopsAtFirstHalt(t *testing.T) {
	var sawValue interface{}
	probe := func(r *http.Request) Outcome {
		sawValue = r.Context().Value(key{})
		return Continue(r.Context())
	}

	out := All(allow, probe)(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, out.Halted())
	assert.Equal(t, "seen", sawValue)
	assert.Equal(t, "seen", out.Context().Value(key{}))

	reached := false
	after := func(r *http.Request) Outcome {
		reached = true
		return Continue(r.Context())
	}
	out = All(allow, deny, after)(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, out.Halted())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(out.Err()))
	assert.False(t, reached)
}
