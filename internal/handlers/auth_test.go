package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trendai/apiserver/internal/kvstore"
	"github.com/trendai/apiserver/internal/services"
)

const testJWTSecret = "test-secret"

func newAuthRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend(), nil, nil)
	authService := services.NewAuthService(store, services.PlainScheme{}, 0, nil)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authService, testJWTSecret)
	})
	return router
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignUpAndLoginEndpoints(t *testing.T) {
	router := newAuthRouter(t)

	rec := postJSON(t, router, "/auth/signup", CredentialsRequest{Email: "a@x.com", Password: "pw123456"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var signedUp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signedUp))
	require.NotEmpty(t, signedUp.Token)
	require.Equal(t, "a@x.com", signedUp.User.Email)

	// Duplicate sign-up conflicts.
	rec = postJSON(t, router, "/auth/signup", CredentialsRequest{Email: "a@x.com", Password: "other"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password and unknown email both come back unauthorized.
	rec = postJSON(t, router, "/auth/login", CredentialsRequest{Email: "a@x.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = postJSON(t, router, "/auth/login", CredentialsRequest{Email: "b@x.com", Password: "pw123456"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, router, "/auth/login", CredentialsRequest{Email: "a@x.com", Password: "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loggedIn))
	require.Equal(t, signedUp.User.ID, loggedIn.User.ID)
}

func TestMeAndLogout(t *testing.T) {
	router := newAuthRouter(t)

	// Signed out.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, router, "/auth/signup", CredentialsRequest{Email: "a@x.com", Password: "pw123456"})
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/auth/logout", struct{}{})
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMiddleware(t *testing.T) {
	router := newAuthRouter(t)
	router.With(RequireAuth(testJWTSecret)).Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		subject, err := userIDFromContext(r.Context())
		require.NoError(t, err)
		writeJSON(w, http.StatusOK, map[string]string{"subject": subject})
	})

	// Missing and malformed tokens are rejected.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A token from sign-up passes and carries the user id.
	rec = postJSON(t, router, "/auth/signup", CredentialsRequest{Email: "a@x.com", Password: "pw123456"})
	var signedUp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signedUp))

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signedUp.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, signedUp.User.ID, body["subject"])
}
