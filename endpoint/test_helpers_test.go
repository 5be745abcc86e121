package endpoint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ariebrainware/clinic-care/middleware"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/ariebrainware/clinic-care/views"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSessionSecret = "endpoint-test-secret-0123456789abcdef"

// failingStore wraps the memory store and fails selected calls.
type failingStore struct {
	*store.MemoryStore
	failCreateUser    bool
	failListMedicines bool
}

func (f *failingStore) CreateUser(ctx context.Context, user *model.User) error {
	if f.failCreateUser {
		return errors.New("write concern timeout")
	}
	return f.MemoryStore.CreateUser(ctx, user)
}

func (f *failingStore) ListMedicines(ctx context.Context, patientID primitive.ObjectID, newestFirst bool) ([]model.Medicine, error) {
	if f.failListMedicines {
		return nil, errors.New("connection reset")
	}
	return f.MemoryStore.ListMedicines(ctx, patientID, newestFirst)
}

func newTestRouter(t *testing.T, st store.Store, limit middleware.RateLimitConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("APPENV", "test")
	util.SetSessionSecret(testSessionSecret)

	tmpl, err := views.Load()
	require.NoError(t, err)
	if limit.Limit == 0 {
		limit.Limit = 10000
	}
	r, err := SetupRouter(RouterOptions{
		Store:     st,
		Sessions:  util.NewMemorySessionStore(),
		Templates: tmpl,
		Logger:    zerolog.Nop(),
		RateLimit: limit,
	})
	require.NoError(t, err)
	return r
}

func setupEndpointTest(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return newTestRouter(t, st, middleware.RateLimitConfig{}), st
}

// testClient replays cookies between requests like a browser.
type testClient struct {
	t       *testing.T
	r       http.Handler
	ip      string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, r http.Handler) *testClient {
	return &testClient{t: t, r: r, ip: "192.0.2.10", cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = tc.ip + ":5555"
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(tc.cookies, c.Name)
			continue
		}
		tc.cookies[c.Name] = c
	}
	return w
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (tc *testClient) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

// flashOf returns the flash message set by a response, if any.
func flashOf(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == util.FlashCookieName && c.MaxAge >= 0 {
			msg, err := url.QueryUnescape(c.Value)
			if err != nil {
				return c.Value
			}
			return msg
		}
	}
	return ""
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func signup(tc *testClient, email, password, role, name, patientID string) *httptest.ResponseRecorder {
	return tc.post("/signup", url.Values{
		"email":     {email},
		"password":  {password},
		"role":      {role},
		"name":      {name},
		"patientId": {patientID},
	})
}

func login(tc *testClient, email, password string) *httptest.ResponseRecorder {
	return tc.post("/login", url.Values{"email": {email}, "password": {password}})
}

// seedPatient stores a patient record directly.
func seedPatient(t *testing.T, st store.Store, code, name string, vitals model.Vitals) *model.Patient {
	t.Helper()
	p, err := model.NewPatient(code, name)
	require.NoError(t, err)
	p.Vitals = vitals
	require.NoError(t, st.CreatePatient(context.Background(), &p))
	return &p
}

// loggedInDoctor signs up a doctor for the patient with code and logs them in.
func loggedInDoctor(t *testing.T, r http.Handler, email, code string) *testClient {
	t.Helper()
	tc := newClient(t, r)
	w := signup(tc, email, "doctor-pass", model.RoleDoctor, "", code)
	require.Equal(t, "Signup successful, please log in", flashOf(w))
	assertRedirect(t, login(tc, email, "doctor-pass"), "/doctor/dashboard")
	return tc
}
