package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wedding-guests/internal/authz"
	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	impl "wedding-guests/internal/service/impl"
	"wedding-guests/internal/store"
	httpx "wedding-guests/internal/transport/http"
	"wedding-guests/pkg/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSigningKey = "router-test-secret"
	testIssuer     = "wedding-guests-test"
	testAudience   = "admin"
)

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T, opts httpx.Options) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := db.OpenGorm(db.Config{Driver: db.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	st := store.New(gdb)
	require.NoError(t, st.Migrate(context.Background()))

	pw := impl.NewPasswordServiceBcrypt(bcrypt.MinCost)
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     testIssuer,
		Audience:   testAudience,
		AccessTTL:  time.Hour,
		SigningKey: []byte(testSigningKey),
	})
	adminHash, err := pw.Hash("letmein")
	require.NoError(t, err)

	gs := impl.NewGuestServiceImpl(st, pw, domain.DefaultCeremonyTypes)
	as := impl.NewAdminServiceImpl("ops", adminHash, pw, ts)
	guard := authz.NewGuard(ts, httpx.RejectUnauthorized)

	return &testServer{handler: httpx.NewRouter(gs, as, guard, opts)}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/admin/login", "", dto.AdminLoginRequest{Username: "ops", Password: "letmein"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tr dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	require.NotEmpty(t, tr.AccessToken)
	return tr.AccessToken
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er), w.Body.String())
	return er
}

func TestGuestLifecycle(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})

	w := srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "A", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	var created dto.GuestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.Guest)
	assert.Equal(t, "a@x.com", created.Guest.Email)
	require.Len(t, created.Guest.Responses, 2)
	for _, r := range created.Guest.Responses {
		assert.Equal(t, domain.RSVPPending, r.Response)
		assert.Nil(t, r.ResponseDate)
	}

	w = srv.do(t, http.MethodPost, "/guests/login", "", dto.LoginRequest{Email: "a@x.com", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), `"Login successful"`)

	token := srv.adminToken(t)

	w = srv.do(t, http.MethodDelete, "/guests/email/a@x.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, "/guests", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list dto.GuestListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	for _, g := range list.Guests {
		assert.NotEqual(t, "a@x.com", g.Email)
	}

	w = srv.do(t, http.MethodGet, "/guests/email/a@x.com", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, httpx.CodeNotFound, decodeError(t, w).Error)
}

func TestListEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})
	w := srv.do(t, http.MethodGet, "/guests", srv.adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"guests":[]}`, w.Body.String())
}

func TestCreateGuestErrors(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})

	w := srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "A", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, httpx.CodeInvalidInput, decodeError(t, w).Error)

	w = srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "A", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "B", "email": "A@X.com", "password": "pw2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, httpx.CodeDuplicateEmail, decodeError(t, w).Error)

	req := httptest.NewRequest(http.MethodPost, "/guests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a token on self-registration is optional but must be valid when sent
	w = srv.do(t, http.MethodPost, "/guests", "forged", map[string]any{"name": "C", "email": "c@x.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httpx.CodeInvalidCredential, decodeError(t, w).Error)

	w = srv.do(t, http.MethodPost, "/guests", srv.adminToken(t), map[string]any{"name": "C", "email": "c@x.com", "password": "pw"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLoginErrorsAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})
	w := srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "A", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)

	wrong := srv.do(t, http.MethodPut, "/guests", "", dto.LoginRequest{Email: "a@x.com", Password: "nope"})
	unknown := srv.do(t, http.MethodPut, "/guests", "", dto.LoginRequest{Email: "ghost@x.com", Password: "pw"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, httpx.CodeInvalidCredentials, decodeError(t, wrong).Error)

	w = srv.do(t, http.MethodPut, "/guests", "", dto.LoginRequest{Email: "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRejectBadTokens(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})

	w := srv.do(t, http.MethodGet, "/guests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httpx.CodeMissingCredential, decodeError(t, w).Error)

	claims := impl.AdminClaims{
		Role: impl.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)

	parts := strings.Split(srv.adminToken(t), ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	for name, tok := range map[string]string{"expired": expired, "tampered": tampered, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/guests", tok, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, httpx.CodeInvalidCredential, decodeError(t, w).Error)
		})
	}

	w = srv.do(t, http.MethodPost, "/admin/login", "", dto.AdminLoginRequest{Username: "ops", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httpx.CodeInvalidCredentials, decodeError(t, w).Error)
}

func TestDeleteGuestErrors(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})
	token := srv.adminToken(t)

	w := srv.do(t, http.MethodDelete, "/guests/email/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, httpx.CodeInvalidInput, decodeError(t, w).Error)

	w = srv.do(t, http.MethodDelete, "/guests/email/nobody@x.com", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, httpx.CodeNotFound, decodeError(t, w).Error)
}

func TestRespondRoute(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})
	token := srv.adminToken(t)
	w := srv.do(t, http.MethodPost, "/guests", "", map[string]any{"name": "A", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodPut, "/guests/email/a@x.com/responses/civil", token, dto.RespondRequest{Response: "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out dto.CeremonyResponseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.Response)
	assert.Equal(t, domain.RSVPAccepted, out.Response.Response)
	assert.NotNil(t, out.Response.ResponseDate)

	w = srv.do(t, http.MethodPut, "/guests/email/a@x.com/responses/brunch", token, dto.RespondRequest{Response: "accepted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPut, "/guests/email/a@x.com/responses/civil", "", dto.RespondRequest{Response: "declined"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServer(t, httpx.Options{LoginRateLimit: 1, LoginRateWindow: time.Minute})

	first := srv.do(t, http.MethodPost, "/guests/login", "", dto.LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, first.Code)

	second := srv.do(t, http.MethodPost, "/guests/login", "", dto.LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, httpx.CodeRateLimited, decodeError(t, second).Error)
}

func TestHealthAndRequestIDs(t *testing.T) {
	srv := newTestServer(t, httpx.Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}
