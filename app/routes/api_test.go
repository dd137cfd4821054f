package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/app/routes"
	"github.com/bistroboss/bistro/config"
	_ "github.com/bistroboss/bistro/database/migrations"
	"github.com/bistroboss/bistro/pkg/app"
	"github.com/bistroboss/bistro/pkg/auth"
	"github.com/bistroboss/bistro/pkg/cache"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/payment"
	"github.com/bistroboss/bistro/pkg/router"
	"github.com/bistroboss/bistro/pkg/storage"
	"github.com/bistroboss/bistro/pkg/testkit"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	t       *testing.T
	store   *docstore.MemoryStore
	issuer  *auth.Issuer
	handler http.Handler
}

func newTestApp(t *testing.T, requireAuthOnIntent bool) *testApp {
	t.Helper()
	disk, err := storage.Open(storage.Options{Driver: "local", LocalRoot: t.TempDir(), LocalURL: "/storage"})
	require.NoError(t, err)

	c := &app.Container{
		Store:     docstore.NewMemoryStore(),
		Cache:     cache.Nop{},
		Processor: payment.NewSandbox(),
		Disk:      disk,
		Issuer:    auth.NewIssuer("test-secret", time.Hour),
		HTTP: config.HTTPOptions{
			AllowedOrigins:             []string{"http://localhost:3000"},
			RequireAuthOnPaymentIntent: requireAuthOnIntent,
		},
	}
	require.NoError(t, app.Migrate(context.Background(), c.Store))
	return &testApp{
		t:       t,
		store:   c.Store.(*docstore.MemoryStore),
		issuer:  c.Issuer,
		handler: c.Handler(func(r *router.Router) { routes.RegisterAPI(r, c) }),
	}
}

func (a *testApp) token(email string) string {
	tok, err := a.issuer.Issue(auth.IdentityClaims{Email: email})
	require.NoError(a.t, err)
	return tok
}

func (a *testApp) user(email, role string) string {
	id, err := repositories.NewUserRepository(a.store).Create(context.Background(), models.User{Email: email, Role: role})
	require.NoError(a.t, err)
	return id
}

func (a *testApp) do(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t, true)

	rec, _ := a.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bistro is serving", rec.Body.String())

	rec, env := a.do(http.MethodGet, "/menu", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, env = a.do(http.MethodPost, "/jwt", "", `{"email":"ann@example.com","name":"Ann"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeData[map[string]string](t, env)["token"]
	claims, err := a.issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Email)

	rec, env = a.do(http.MethodPost, "/jwt", "", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_failed", env.Error)

	rec, env = a.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error)
}

func TestRegisterTwice(t *testing.T) {
	a := newTestApp(t, true)

	rec, _ := a.do(http.MethodPost, "/users", "", `{"name":"Ann","email":"ann@example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := a.do(http.MethodPost, "/users", "", `{"name":"Ann","email":"ann@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User Is already Registered!", decodeData[map[string]string](t, env)["message"])
}

func TestAuthGateway(t *testing.T) {
	a := newTestApp(t, true)

	rec, env := a.do(http.MethodGet, "/carts?email=ann@example.com", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", env.Error)

	rec, env = a.do(http.MethodGet, "/carts?email=ann@example.com", "garbage", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden access", env.Message)

	expired := auth.NewIssuer("test-secret", time.Hour).WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	old, err := expired.Issue(auth.IdentityClaims{Email: "ann@example.com"})
	require.NoError(t, err)
	rec, _ = a.do(http.MethodGet, "/carts?email=ann@example.com", old, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = a.do(http.MethodGet, "/carts?email=ann@example.com", a.token("ann@example.com"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestMemberCannotDeleteMenu(t *testing.T) {
	a := newTestApp(t, true)
	a.user("ann@example.com", models.RoleMember)
	a.user("boss@example.com", models.RoleAdmin)

	menu := repositories.NewMenuRepository(a.store)
	id, err := menu.Create(context.Background(), models.MenuItem{Name: "Tom Yum", Category: "soup", Price: 9})
	require.NoError(t, err)

	rec, env := a.do(http.MethodDelete, "/menu/"+id, a.token("ann@example.com"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	items, err := menu.All(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1, "rejected request did not reach the handler")

	rec, env = a.do(http.MethodDelete, "/menu/"+id, a.token("ghost@example.com"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "unknown users are members")

	rec, env = a.do(http.MethodDelete, "/menu/"+id, a.token("boss@example.com"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deletedCount":1}`, string(env.Data))
}

func TestAdminRoutes(t *testing.T) {
	a := newTestApp(t, true)
	annID := a.user("ann@example.com", models.RoleMember)
	a.user("boss@example.com", models.RoleAdmin)
	boss := a.token("boss@example.com")
	ann := a.token("ann@example.com")

	rec, _ := a.do(http.MethodPost, "/menu", boss, `{"name":"Pad Thai","category":"noodles","price":11.5}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := a.do(http.MethodGet, "/menu?category=noodles", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]models.MenuItem](t, env), 1)

	for _, path := range []string{"/users", "/admin-stats", "/orders-stats"} {
		rec, _ = a.do(http.MethodGet, path, ann, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		rec, _ = a.do(http.MethodGet, path, boss, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec, env = a.do(http.MethodGet, "/users/admin/ann@example.com", ann, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":false}`, string(env.Data))

	rec, _ = a.do(http.MethodPatch, "/users/admin/"+annID, boss, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = a.do(http.MethodGet, "/users/admin/ann@example.com", ann, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":true}`, string(env.Data))

	rec, env = a.do(http.MethodGet, "/users/admin/ann@example.com", boss, "")
	assert.JSONEq(t, `{"admin":false}`, string(env.Data), "only the caller's own status is reported")
}

func TestPaymentFlow(t *testing.T) {
	a := newTestApp(t, true)
	ann := a.token("ann@example.com")
	const item = "64b7f0c2a1b2c3d4e5f60718"

	rec, env := a.do(http.MethodPost, "/carts", ann, `{"menuItemId":"`+item+`","name":"Tom Yum","price":12.34}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cartID := decodeData[map[string]string](t, env)["insertedId"]

	rec, _ = a.do(http.MethodPost, "/create-payment-intent", "", `{"price":12.34}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = a.do(http.MethodPost, "/create-payment-intent", ann, `{"price":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = a.do(http.MethodPost, "/create-payment-intent", ann, `{"price":12.34}`)
	require.Equal(t, http.StatusOK, rec.Code)
	intent := decodeData[struct {
		ClientSecret string `json:"clientSecret"`
		Amount       int64  `json:"amount"`
		IntentID     string `json:"intentId"`
	}](t, env)
	assert.EqualValues(t, 1234, intent.Amount)
	assert.NotEmpty(t, intent.ClientSecret)

	body := `{"price":12.34,"transactionId":"` + intent.IntentID + `","cartIds":["` + cartID + `"],"menuItemIds":["` + item + `"]}`
	rec, env = a.do(http.MethodPost, "/payments", ann, body)
	require.Equal(t, http.StatusCreated, rec.Code, string(env.Data))

	rec, _ = a.do(http.MethodPost, "/payments", ann, body)
	assert.Equal(t, http.StatusOK, rec.Code, "replayed transaction returns the stored record")

	rec, env = a.do(http.MethodGet, "/carts?email=ann@example.com", ann, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, env = a.do(http.MethodGet, "/payments", ann, "")
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decodeData[[]models.Payment](t, env)
	require.Len(t, paid, 1)
	assert.Equal(t, 12.34, paid[0].Price)

	forged := `{"price":99,"transactionId":"` + intent.IntentID + `x"}`
	rec, env = a.do(http.MethodPost, "/payments", ann, forged)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Error)
}

func TestPaymentIntentOpenWhenConfigured(t *testing.T) {
	a := newTestApp(t, false)

	rec, env := a.do(http.MethodPost, "/create-payment-intent", "", `{"price":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := decodeData[map[string]any](t, env)["intentId"].(string)

	rec, env = a.do(http.MethodPost, "/payments", a.token("ann@example.com"), `{"price":5,"transactionId":"`+id+`"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "an intent created anonymously is not bound to a payer")
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/payments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMenuAdminScenarios(t *testing.T) {
	a := newTestApp(t, true)
	a.user("ann@example.com", models.RoleMember)
	a.user("boss@example.com", models.RoleAdmin)

	testkit.RunFile(t, a.handler, "testdata/menu_admin.json", testkit.Options{
		Token: func(email string) (string, error) {
			return a.issuer.Issue(auth.IdentityClaims{Email: email})
		},
	})
}
