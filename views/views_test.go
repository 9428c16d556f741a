package views

import (
	"encoding/json"
	"testing"
	"time"

	"sociomate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestURL(t *testing.T) {
	r := NewRenderer("http://localhost:5000/")

	assert.Nil(t, r.URL(""))
	assert.Equal(t, "http://localhost:5000/uploads/a.png", *r.URL("/uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", *r.URL("https://cdn.example.com/a.png"))
	assert.Equal(t, "http://elsewhere/a.png", *r.URL("http://elsewhere/a.png"))
}

func TestPostRewritesEveryURL(t *testing.T) {
	r := NewRenderer("http://localhost:5000")
	author := &models.UserSummary{ID: primitive.NewObjectID(), Username: "alice", ProfilePicture: "/uploads/alice.png"}
	commenter := &models.UserSummary{ID: primitive.NewObjectID(), Username: "bob", ProfilePicture: "https://cdn.example.com/bob.png"}
	liker := primitive.NewObjectID()

	p := &models.PopulatedPost{
		ID:        primitive.NewObjectID(),
		User:      author,
		Content:   "hello",
		Image:     "/uploads/post.png",
		Likes:     []primitive.ObjectID{liker},
		Comments:  []models.PopulatedComment{{ID: primitive.NewObjectID(), User: commenter, Content: "hi"}, {ID: primitive.NewObjectID(), Content: "orphan"}},
		CreatedAt: time.Now(),
	}

	out := r.Post(p)
	assert.Equal(t, "http://localhost:5000/uploads/post.png", *out.Image)
	assert.Equal(t, "http://localhost:5000/uploads/alice.png", *out.User.ProfilePicture)
	assert.Equal(t, "https://cdn.example.com/bob.png", *out.Comments[0].User.ProfilePicture)
	assert.Nil(t, out.Comments[1].User)
	assert.Equal(t, []string{liker.Hex()}, out.Likes)
}

func TestPostJSONShape(t *testing.T) {
	r := NewRenderer("http://localhost:5000")
	p := &models.PopulatedPost{ID: primitive.NewObjectID(), Content: "x"}

	data, err := json.Marshal(r.Post(p))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, p.ID.Hex(), raw["_id"])
	assert.Nil(t, raw["image"])
	assert.Equal(t, []any{}, raw["likes"])
	assert.Equal(t, []any{}, raw["comments"])
}

func TestProfileOmitsPassword(t *testing.T) {
	r := NewRenderer("http://localhost:5000")
	follower := models.UserSummary{ID: primitive.NewObjectID(), Username: "bob"}
	p := &models.Profile{
		User:      models.User{ID: primitive.NewObjectID(), Username: "alice", Email: "a@example.com", Password: "hash", ProfilePicture: "/uploads/a.png"},
		Followers: []models.UserSummary{follower},
	}

	data, err := json.Marshal(r.Profile(p))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "password")

	out := r.Profile(p)
	assert.Equal(t, "http://localhost:5000/uploads/a.png", *out.ProfilePicture)
	require.Len(t, out.Followers, 1)
	assert.Equal(t, "bob", out.Followers[0].Username)
	assert.NotNil(t, out.Following)
}

func TestAuth(t *testing.T) {
	r := NewRenderer("http://localhost:5000")
	u := &models.User{ID: primitive.NewObjectID(), Username: "alice", Password: "hash"}

	out := r.Auth(u, "tok")
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, u.ID.Hex(), out.ID)
	assert.Nil(t, out.ProfilePicture)
	assert.Empty(t, out.Followers)
}
