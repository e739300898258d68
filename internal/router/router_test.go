package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/handlers"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/anonto42/future-media/backend/internal/testutil"
	"github.com/anonto42/future-media/backend/internal/validators"
	"github.com/anonto42/future-media/backend/pkg/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svcs := services.New(services.Deps{Repos: repositories.New(db), Tokens: tokens})

	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(nil)
	config.SetupMiddleware(e, nil)
	SetupRoutes(e, svcs, tokens, Options{HealthChecks: map[string]handlers.HealthCheck{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}})
	return &apiClient{t: t, e: e}
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return string(body.Code)
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (a *apiClient) register(username string) session {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var s session
	decode(a.t, rec, &s)
	return s
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
}

func TestErrorsUseCodeAndMessage(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")

	rec := api.do(http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/api/v1/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/posts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/api/v1/notifications?limit=0", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/api/v1/notifications?cursor=bogus", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestLikeFlowOverHTTP(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")

	rec := api.do(http.MethodPost, "/api/v1/posts", alice.Token, map[string]string{"caption": "sunset", "content_type": "text"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	decode(t, rec, &post)

	rec = api.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/v1/posts/"+post.ID+"/like", bob.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	decode(t, rec, &count)
	assert.EqualValues(t, 1, count.UnreadCount)

	rec = api.do(http.MethodGet, "/api/v1/notifications", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			SenderID string `json:"sender_id"`
			Target   struct {
				Kind string `json:"kind"`
				ID   string `json:"id"`
			} `json:"target"`
		} `json:"items"`
		NextCursor *string `json:"next_cursor"`
	}
	decode(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "LIKE", page.Items[0].Type)
	assert.Equal(t, bob.User.ID, page.Items[0].SenderID)
	assert.Equal(t, "post", page.Items[0].Target.Kind)
	assert.Equal(t, post.ID, page.Items[0].Target.ID)
	assert.Nil(t, page.NextCursor)

	rec = api.do(http.MethodPut, "/api/v1/notifications/"+page.Items[0].ID+"/read", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPut, "/api/v1/notifications/read-all", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Updated int64 `json:"updated"`
	}
	decode(t, rec, &updated)
	assert.EqualValues(t, 1, updated.Updated)

	rec = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice.Token, nil)
	decode(t, rec, &count)
	assert.Zero(t, count.UnreadCount)
}

func TestFollowAndFeedOverHTTP(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")

	rec := api.do(http.MethodPost, "/api/v1/users/"+alice.User.ID+"/follow", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/v1/users/"+alice.User.ID+"/follow", bob.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/v1/posts", alice.Token, map[string]string{"caption": "hello @bob", "content_type": "text"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/v1/feed?limit=10", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed struct {
		Items []struct {
			Caption string `json:"caption"`
		} `json:"items"`
	}
	decode(t, rec, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "hello @bob", feed.Items[0].Caption)

	rec = api.do(http.MethodGet, "/api/v1/notifications?only_unread=true", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox struct {
		Items []struct {
			Type string `json:"type"`
		} `json:"items"`
	}
	decode(t, rec, &inbox)
	var types []string
	for _, n := range inbox.Items {
		types = append(types, n.Type)
	}
	assert.ElementsMatch(t, []string{"NEW_POST", "MENTION"}, types)
}
