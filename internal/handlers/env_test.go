package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atabek/storefront/internal/auth"
	"github.com/atabek/storefront/internal/events"
	"github.com/atabek/storefront/internal/handlers"
	"github.com/atabek/storefront/internal/middleware"
	"github.com/atabek/storefront/internal/models"
	"github.com/atabek/storefront/internal/repo"
	"github.com/atabek/storefront/internal/tokens"
	httpserver "github.com/atabek/storefront/internal/transport/http"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
	Svc  *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// One in-memory database per connection, so keep a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderDetail{}))

	issuer, err := tokens.NewIssuer([]byte("test-secret"), "HS256", 15*time.Minute)
	require.NoError(t, err)

	gormRepo := repo.NewGormRepo(db)
	svc := auth.NewService(gormRepo, issuer, auth.NewBlacklist(15*time.Minute))
	producer := &events.Producer{}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Auth:           middleware.NewAuth(svc),
		AuthHandler:    &handlers.AuthHandler{Svc: svc, Producer: producer},
		UserHandler:    &handlers.UserHandler{Repo: gormRepo, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Repo: gormRepo, Producer: producer},
		OrderHandler:   &handlers.OrderHandler{Repo: gormRepo, Producer: producer},
	})

	return &testEnv{T: t, E: e, DB: db, Repo: gormRepo, Svc: svc}
}

func (env *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	env.T.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	env.T.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(data)
	}
	return env.do(method, path, token, body, echo.MIMEApplicationJSON)
}

func (env *testEnv) doForm(method, path string, form url.Values) *httptest.ResponseRecorder {
	env.T.Helper()
	return env.do(method, path, "", strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
}

func (env *testEnv) register(username, password string) models.User {
	env.T.Helper()

	rec := env.doJSON(http.MethodPost, "/users", "", map[string]string{
		"username":  username,
		"full_name": "Test " + username,
		"password":  password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (env *testEnv) loginAttempt(username, password string) *httptest.ResponseRecorder {
	env.T.Helper()
	return env.doForm(http.MethodPost, "/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

func (env *testEnv) login(username, password string) string {
	env.T.Helper()

	rec := env.doForm(http.MethodPost, "/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(env.T, "bearer", resp.TokenType)
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}

func (env *testEnv) promote(username string) {
	env.T.Helper()
	require.NoError(env.T, env.DB.Model(&models.User{}).
		Where("username = ?", username).
		Update("is_superuser", true).Error)
}
