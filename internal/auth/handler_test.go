package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/videostream/videostream/internal/testing/guard"
)

type fakeUploader struct {
	fail bool
}

func (f fakeUploader) UploadImage(_ context.Context, prefix string, _ multipart.File, header *multipart.FileHeader) (string, error) {
	if f.fail {
		return "", io.ErrUnexpectedEOF
	}
	return "https://media.test/" + prefix + "/" + header.Filename, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _ := newTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := Gate{Service: svc, Logger: logger}
	handler := NewHandler(logger, svc, gate, fakeUploader{}, false)

	r := chi.NewRouter()
	r.Route("/api/v1/users", handler.MountRoutes)
	return r, svc
}

func multipartRegisterBody(t *testing.T, fields map[string]string, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if withAvatar {
		part, err := writer.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func registerViaHTTP(t *testing.T, router http.Handler) {
	t.Helper()
	body, contentType := multipartRegisterBody(t, map[string]string{
		"fullName": "Clara Oswald",
		"email":    "clara@example.com",
		"username": "clara",
		"password": "souffle girl",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func loginViaHTTP(t *testing.T, router http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"clara","password":"souffle girl"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func TestRegisterLoginRefreshFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	registerViaHTTP(t, router)

	loginRec := loginViaHTTP(t, router)

	var loginBody struct {
		User struct {
			Username string `json:"username"`
			Avatar   string `json:"avatar"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &loginBody))
	assert.Equal(t, "clara", loginBody.User.Username)
	assert.NotEmpty(t, loginBody.User.Avatar)
	assert.NotEmpty(t, loginBody.AccessToken)
	assert.NotEmpty(t, loginBody.RefreshToken)

	cookies := loginRec.Result().Cookies()
	names := map[string]*http.Cookie{}
	for _, c := range cookies {
		names[c.Name] = c
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
	assert.True(t, names["accessToken"].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, names["accessToken"].SameSite)

	// Refresh with the cookie rotates the pair.
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refreshReq.AddCookie(names["refreshToken"])
	refreshRec := httptest.NewRecorder()
	router.ServeHTTP(refreshRec, refreshReq)
	require.Equal(t, http.StatusOK, refreshRec.Code, refreshRec.Body.String())

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(refreshRec.Body.Bytes(), &pair))
	assert.NotEqual(t, loginBody.RefreshToken, pair.RefreshToken)

	// The old refresh token is consumed.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(names["refreshToken"])
	replayRec := httptest.NewRecorder()
	router.ServeHTTP(replayRec, replay)
	assert.Equal(t, http.StatusUnauthorized, replayRec.Code)
}

func TestRegisterRequiresAvatar(t *testing.T) {
	router, _ := newTestRouter(t)
	body, contentType := multipartRegisterBody(t, map[string]string{
		"fullName": "Clara Oswald",
		"email":    "clara@example.com",
		"username": "clara",
		"password": "souffle girl",
	}, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUnknownUserIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"ghost","password":"whatever"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	router, _ := newTestRouter(t)
	registerViaHTTP(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"clara","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookiesAndSession(t *testing.T) {
	router, _ := newTestRouter(t)
	registerViaHTTP(t, router)
	loginRec := loginViaHTTP(t, router)

	var access, refresh *http.Cookie
	for _, c := range loginRec.Result().Cookies() {
		switch c.Name {
		case "accessToken":
			access = c
		case "refreshToken":
			refresh = c
		}
	}
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	logoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	logoutReq.AddCookie(access)
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logoutReq)
	require.Equal(t, http.StatusOK, logoutRec.Code)

	for _, c := range logoutRec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0)
	}

	// The stored refresh token is gone.
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refreshReq.AddCookie(refresh)
	refreshRec := httptest.NewRecorder()
	router.ServeHTTP(refreshRec, refreshReq)
	assert.Equal(t, http.StatusUnauthorized, refreshRec.Code)
}

func TestLogoutWithoutTokenIs401(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
