package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sociomate/auth"
	"sociomate/handlers"
	"sociomate/repository"
	"sociomate/routes"
	"sociomate/service"
	"sociomate/storage"
	"sociomate/views"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

// newAPI runs the real router over the in-memory backend.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	tokens := auth.NewTokens([]byte("client-test"), time.Hour)
	srv := httptest.NewUnstartedServer(nil)
	h := handlers.New(
		service.NewPosts(store, local),
		service.NewUsers(store, local, tokens, service.UsersOptions{}),
		views.NewRenderer("http://"+srv.Listener.Addr().String()),
		time.Second,
	)
	srv.Config.Handler = routes.SetupRouter(h, tokens, routes.Options{UploadDir: dir, MaxUploadBytes: 1 << 20})
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func signedIn(t *testing.T, srv *httptest.Server, name string) (*Client, *views.AuthUser) {
	t.Helper()
	c := New(srv.URL)
	u, err := c.Register(context.Background(), name, name+"@example.com", "password1")
	require.NoError(t, err)
	c.Token = u.Token
	return c, u
}

func TestClientRoundTrip(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	alice, a := signedIn(t, srv, "alice")
	bob, b := signedIn(t, srv, "bob")

	p, err := alice.CreatePost(ctx, "hello", &File{Name: "pic.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	require.NotNil(t, p.Image)
	assert.True(t, strings.HasPrefix(*p.Image, srv.URL+"/uploads/"))

	resp, err := http.Get(*p.Image)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	liked, err := bob.ToggleLike(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, liked.Likes)

	commented, err := bob.AddComment(ctx, p.ID, "nice")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)

	uncommented, err := alice.DeleteComment(ctx, p.ID, commented.Comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, uncommented.Comments)

	target, err := bob.ToggleFollow(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, target.Followers, 1)

	me, err := alice.UpdateProfile(ctx, ProfileUpdate{Bio: "hi there"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", me.Bio)
	assert.Equal(t, "alice", me.Username)

	mine, err := alice.UserPosts(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, alice.DeletePost(ctx, p.ID))
	all, err := bob.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClientErrors(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	alice, _ := signedIn(t, srv, "alice")
	bob, _ := signedIn(t, srv, "bob")

	p, err := alice.CreatePost(ctx, "mine", nil)
	require.NoError(t, err)

	err = bob.DeletePost(ctx, p.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "User not authorized", apiErr.Message)

	_, err = New(srv.URL).Posts(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = New(srv.URL).Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}
