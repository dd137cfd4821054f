package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/auth"
	appctx "github.com/bistroboss/bistro/pkg/ctx"
	"github.com/bistroboss/bistro/pkg/middleware"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
}

func TestParamAndQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/menu/{id}", appctx.Wrap(func(c *appctx.Context) {
		c.String(http.StatusOK, "%s:%s", c.Param("id"), c.Query("category"))
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menu/abc?category=soup", nil))
	assert.Equal(t, "abc:soup", rec.Body.String())
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	cases := []struct {
		name   string
		body   string
		ok     bool
		status int
	}{
		{"valid", `{"name":"John","email":"john@example.com"}`, true, 0},
		{"malformed", `{"name":`, false, http.StatusBadRequest},
		{"empty", ``, false, http.StatusBadRequest},
		{"invalid fields", `{"name":"","email":"nope"}`, false, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got bool
			appctx.Wrap(func(c *appctx.Context) {
				var in input
				got = c.BindJSON(&in)
			})(rec, req)

			assert.Equal(t, tc.ok, got)
			if !tc.ok {
				assert.Equal(t, tc.status, rec.Code)
			}
		})
	}
}

func TestFailAndEmail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		_, ok := c.MustEmail()
		assert.False(t, ok)
	})(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{Email: "a@example.com"}))
	appctx.Wrap(func(c *appctx.Context) {
		email, ok := c.MustEmail()
		assert.True(t, ok)
		assert.Equal(t, "a@example.com", email)
		c.Fail(apperr.NotFound("menu item not found"))
		assert.Equal(t, http.StatusNotFound, c.WrittenStatus())
	})(rec, req)

	body := decode(t, rec)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "menu item not found", body["message"])
}
