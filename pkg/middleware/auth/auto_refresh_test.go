package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/pkg/authclient"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func newContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func echoUserID(c echo.Context) error {
	id, err := UserID(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, id.String())
}

func TestRequireAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	tok, err := tokens.SignAccessToken(userID.String(), "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	c, rec := newContext(&http.Cookie{Name: tokens.AccessCookie, Value: tok})
	mw := NewAutoRefreshMiddleware(secret, nil)

	require.NoError(t, mw.RequireAuth(echoUserID)(c))
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	c, _ := newContext()
	err := NewAutoRefreshMiddleware(secret, nil).RequireAuth(echoUserID)(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_ExpiredWithoutAuthClient(t *testing.T) {
	tok, err := tokens.SignAccessToken(uuid.NewString(), "user", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	c, _ := newContext(&http.Cookie{Name: tokens.AccessCookie, Value: tok})
	err = NewAutoRefreshMiddleware(secret, nil).RequireAuth(echoUserID)(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuth_RotatesExpiredToken(t *testing.T) {
	userID := uuid.New()
	expired, err := tokens.SignAccessToken(userID.String(), "user", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	fresh, err := tokens.SignAccessToken(userID.String(), "user", time.Now().Add(time.Minute), secret)
	require.NoError(t, err)

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(authclient.RefreshResponse{
			AccessToken:  fresh,
			RefreshToken: "rotated",
			AccessExp:    time.Now().Add(time.Minute).Unix(),
			RefreshExp:   time.Now().Add(time.Hour).Unix(),
		})
	}))
	defer authSrv.Close()

	c, rec := newContext(
		&http.Cookie{Name: tokens.AccessCookie, Value: expired},
		&http.Cookie{Name: tokens.RefreshCookie, Value: "refresh"},
	)
	mw := NewAutoRefreshMiddleware(secret, authclient.NewClient(authSrv.URL))

	require.NoError(t, mw.RequireAuth(echoUserID)(c))
	assert.Equal(t, userID.String(), rec.Body.String())
	assert.Contains(t, rec.Header().Values("Set-Cookie")[0], tokens.AccessCookie+"="+fresh)
}

func TestUserID_NotSet(t *testing.T) {
	c, _ := newContext()
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
