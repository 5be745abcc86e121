package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/clinic-care/config"
	"github.com/ariebrainware/clinic-care/model"
	"github.com/ariebrainware/clinic-care/store"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-0123456789"

func setGinTestMode() {
	gin.SetMode(gin.TestMode)
}

func setupRedisMock(t *testing.T) redismock.ClientMock {
	rdb, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(rdb)
	t.Cleanup(func() {
		config.ResetRedisClientForTest()
	})
	return mock
}

type testEnv struct {
	store    *store.MemoryStore
	sessions *util.MemorySessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	setGinTestMode()
	util.SetSessionSecret(testSecret)
	return &testEnv{store: store.NewMemoryStore(), sessions: util.NewMemorySessionStore()}
}

// router wires the identity chain in front of the given handlers.
func (e *testEnv) router(path string, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(StoreMiddleware(e.store), SessionStoreMiddleware(e.sessions), LoadIdentity(), LoadFlash())
	r.GET(path, handlers...)
	return r
}

func (e *testEnv) createPatient(t *testing.T, code string) *model.Patient {
	t.Helper()
	p, err := model.NewPatient(code, "Pat "+code)
	require.NoError(t, err)
	require.NoError(t, e.store.CreatePatient(context.Background(), &p))
	return &p
}

func (e *testEnv) createUser(t *testing.T, email, role string, patient *model.Patient) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "x", Role: role}
	if patient != nil {
		id := patient.ID
		u.Patient = &id
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// cookieFor opens a session for user and returns the signed cookie.
func (e *testEnv) cookieFor(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()
	sid, err := e.sessions.Create(context.Background(), user.ID.Hex(), time.Hour)
	require.NoError(t, err)
	raw, err := util.SignSessionID(sid, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: util.SessionCookieName, Value: raw}
}

func do(r http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.168.1.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func httptestRequestWithOrigin(r http.Handler, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", origin)
	r.ServeHTTP(w, req)
	return w
}
