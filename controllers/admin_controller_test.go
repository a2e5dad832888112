package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/multiblog/models"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	r, db := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/register", "", gin.H{
		"email": "a@x.com", "password": "p", "name": "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/api/v1/admin/register", "", gin.H{
		"email": "a@x.com", "password": "other", "name": "Imposter",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// First record is unchanged.
	var admin models.Admin
	require.NoError(t, db.Where("email = ?", "a@x.com").First(&admin).Error)
	assert.Equal(t, "A", admin.Name)

	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, body := range []gin.H{
		{"email": "", "password": "p", "name": "A"},
		{"email": "a@x.com", "password": "", "name": "A"},
		{"email": "a@x.com", "password": "p", "name": ""},
		{"email": "not-an-email", "password": "p", "name": "A"},
	} {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/register", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %v", body)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "a@x.com", "secret", "A")

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"email": "nobody@x.com", "password": "secret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRotatesSessionToken(t *testing.T) {
	r, _ := newTestRouter(t)
	_, t1 := registerAndLogin(t, r, "a@x.com", "secret", "A")

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", t1, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"email": "a@x.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &login)
	t2 := login.Token
	require.NotEqual(t, t1, t2)

	// The previous token stops authenticating; the new one works.
	rec = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", t2, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	r, _ := newTestRouter(t)
	_, token := registerAndLogin(t, r, "a@x.com", "secret", "A")

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileNeverExposesCredentials(t *testing.T) {
	r, _ := newTestRouter(t)
	_, token := registerAndLogin(t, r, "a@x.com", "secret", "A")

	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "session_token")
	assert.NotContains(t, body, token)
}

func TestAuthHeaderVariants(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "a@x.com", "secret", "A")

	// No header at all.
	rec := doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, header := range []string{"Token abc", "Bearer", "Bearer ", "bogus"} {
		req := newRawAuthRequest(http.MethodGet, "/api/v1/admin/profile", header)
		rec := serveRaw(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header: %q", header)
	}

	// Well-formed header but no admin holds this token.
	rec = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", "deadbeef", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
