package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsefeed/backend/internal/model"
	"github.com/pulsefeed/backend/internal/password"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/store"
	"github.com/pulsefeed/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	st := store.NewMemory()
	issuer := token.NewJWT([]byte("test-secret"), time.Hour)
	authService := service.NewAuth(st, password.NewSaltedSHA256(), issuer)
	gateway := service.NewGateway(st, issuer)
	return NewRouter(st, authService, gateway)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "",
		model.AuthRequest{Username: "alice", Password: "password1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered model.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	// Duplicate username conflicts regardless of password.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "",
		model.AuthRequest{Username: "alice", Password: "other-password"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
		model.AuthRequest{Username: "alice", Password: "password1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, registered.ID, profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
		model.AuthRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejection(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/posts", "garbage",
		model.CreatePostRequest{Text: "hello"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostFlow(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "",
		model.AuthRequest{Username: "alice", Password: "password1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
		model.AuthRequest{Username: "alice", Password: "password1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	const n = 3
	var lastID string
	for i := 0; i < n; i++ {
		rec = doJSON(t, router, http.MethodPost, "/api/v1/posts", login.Token,
			model.CreatePostRequest{Text: fmt.Sprintf("post %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)

		var created model.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		lastID = created.ID.String()
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/posts?offset=0&limit=10", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, n)
	for i, post := range posts {
		assert.Equal(t, fmt.Sprintf("post %d", n-1-i), post.Text)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+lastID, login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/posts/not-a-uuid", login.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/posts", login.Token,
		model.CreatePostRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostsAreAuthorScoped(t *testing.T) {
	router := newTestRouter()

	tokens := map[string]string{}
	for _, user := range []string{"alice", "bob"} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "",
			model.AuthRequest{Username: user, Password: "password1"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "",
			model.AuthRequest{Username: user, Password: "password1"})
		require.Equal(t, http.StatusOK, rec.Code)

		var login model.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
		tokens[user] = login.Token
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/posts", tokens["alice"],
		model.CreatePostRequest{Text: "alice's post"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Bob cannot read alice's post and sees an empty listing.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/posts/"+created.ID.String(), tokens["bob"], nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/posts", tokens["bob"], nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Empty(t, posts)
}
