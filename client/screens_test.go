package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedMutations(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	alice, _ := signedIn(t, srv, "alice")
	bob, b := signedIn(t, srv, "bob")

	_, err := alice.CreatePost(ctx, "first", nil)
	require.NoError(t, err)

	feed := NewFeed(bob)
	require.NoError(t, feed.Refresh(ctx))
	require.Len(t, feed.Posts, 1)

	mine, err := feed.Create(ctx, "second", nil)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, mine.ID, feed.Posts[0].ID, "new posts are prepended")

	first := feed.Posts[1].ID
	require.NoError(t, feed.Like(ctx, first))
	assert.Equal(t, []string{b.ID}, feed.Posts[1].Likes)

	require.NoError(t, feed.Comment(ctx, first, "nice"))
	require.Len(t, feed.Posts[1].Comments, 1)
	require.NoError(t, feed.Uncomment(ctx, first, feed.Posts[1].Comments[0].ID))
	assert.Empty(t, feed.Posts[1].Comments)

	before := append([]string(nil), feed.Posts[1].Likes...)
	err = feed.Delete(ctx, first)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr, "bob does not own alice's post")
	require.Len(t, feed.Posts, 2, "failed mutations keep the prior state")
	assert.Equal(t, before, feed.Posts[1].Likes)

	require.NoError(t, feed.Delete(ctx, mine.ID))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, first, feed.Posts[0].ID)
}

func TestProfileScreen(t *testing.T) {
	srv := newAPI(t)
	ctx := context.Background()
	alice, a := signedIn(t, srv, "alice")
	bob, b := signedIn(t, srv, "bob")

	_, err := alice.CreatePost(ctx, "hello", nil)
	require.NoError(t, err)

	screen := NewProfileScreen(bob, bob, nil, a.ID)
	require.NoError(t, screen.Load(ctx))
	assert.Equal(t, "alice", screen.Profile.Username)
	assert.Len(t, screen.Posts.Posts, 1)
	assert.False(t, screen.IsFollowedBy(b.ID))

	require.NoError(t, screen.ToggleFollow(ctx))
	assert.True(t, screen.IsFollowedBy(b.ID))
	require.NoError(t, screen.ToggleFollow(ctx))
	assert.False(t, screen.IsFollowedBy(b.ID))

	store := openStore(t, "")
	defer store.Close()
	state := NewState(store, srv.URL)
	require.NoError(t, state.SignIn(ctx, a))

	own := NewProfileScreen(alice, alice, state, a.ID)
	require.NoError(t, own.Load(ctx))
	require.NoError(t, own.Update(ctx, ProfileUpdate{Username: "alicia"}))
	assert.Equal(t, "alicia", own.Profile.Username)
	assert.Equal(t, "alicia", state.Session().User.Username)

	err = own.Update(ctx, ProfileUpdate{Username: "bob"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
	assert.Equal(t, "alicia", own.Profile.Username)
}
