package repository

import (
	"context"
	"testing"
	"time"

	"sociomate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoPostStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find missing post", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch))

		_, err := store.FindPost(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("toggle like reports new state", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		postID, userID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: postID}, {Key: "likes", Value: bson.A{userID}}},
		}))

		liked, err := store.ToggleLike(ctx, postID, userID)
		require.NoError(mt, err)
		assert.True(mt, liked)
	})

	mt.Run("toggle like reports removal", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		postID, userID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: postID}, {Key: "likes", Value: bson.A{}}},
		}))

		liked, err := store.ToggleLike(ctx, postID, userID)
		require.NoError(mt, err)
		assert.False(mt, liked)
	})

	mt.Run("push comment on missing post", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.PushComment(ctx, primitive.NewObjectID(), models.Comment{ID: primitive.NewObjectID()})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete post", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		id := primitive.NewObjectID()
		require.NoError(mt, store.DeletePost(ctx, id))
		assert.ErrorIs(mt, store.DeletePost(ctx, id), ErrNotFound)
	})

	mt.Run("list posts populates authors", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		author, commenter := primitive.NewObjectID(), primitive.NewObjectID()
		postID := primitive.NewObjectID()
		doc := bson.D{
			{Key: "_id", Value: postID},
			{Key: "user", Value: author},
			{Key: "content", Value: "hello"},
			{Key: "image", Value: "/uploads/a.png"},
			{Key: "likes", Value: bson.A{commenter}},
			{Key: "comments", Value: bson.A{bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "user", Value: commenter},
				{Key: "content", Value: "hi"},
				{Key: "createdAt", Value: time.Now()},
			}}},
			{Key: "createdAt", Value: time.Now()},
			{Key: "authorDocs", Value: bson.A{bson.D{{Key: "_id", Value: author}, {Key: "username", Value: "alice"}}}},
			{Key: "commentAuthorDocs", Value: bson.A{bson.D{{Key: "_id", Value: commenter}, {Key: "username", Value: "bob"}}}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch, doc))

		posts, err := store.ListPosts(ctx, &author)
		require.NoError(mt, err)
		require.Len(mt, posts, 1)
		p := posts[0]
		assert.Equal(mt, postID, p.ID)
		assert.Equal(mt, "alice", p.User.Username)
		assert.Equal(mt, "/uploads/a.png", p.Image)
		require.Len(mt, p.Comments, 1)
		assert.Equal(mt, "bob", p.Comments[0].User.Username)
		assert.Equal(mt, []primitive.ObjectID{commenter}, p.Likes)
	})

	mt.Run("populated post missing", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.posts", mtest.FirstBatch))

		_, err := store.PopulatedPost(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert duplicate username", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: db.users index: username_1 dup key",
		}))

		err := store.InsertUser(ctx, &models.User{Username: "alice", Email: "a@example.com"})
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Equal(mt, "Username already taken", err.Error())
	})

	mt.Run("insert lower-cases email", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &models.User{Username: "alice", Email: "Alice@Example.com"}
		require.NoError(mt, store.InsertUser(ctx, u))
		assert.Equal(mt, "alice@example.com", u.Email)
		assert.False(mt, u.ID.IsZero())
		assert.NotNil(mt, u.Followers)
	})

	mt.Run("profile keeps follower order", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		id, f1, f2 := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		doc := bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "a@example.com"},
			{Key: "followers", Value: bson.A{f1, f2}},
			{Key: "following", Value: bson.A{}},
			{Key: "followerDocs", Value: bson.A{
				bson.D{{Key: "_id", Value: f2}, {Key: "username", Value: "carol"}},
				bson.D{{Key: "_id", Value: f1}, {Key: "username", Value: "bob"}},
			}},
			{Key: "followingDocs", Value: bson.A{}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, doc))

		profile, err := store.Profile(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "alice", profile.User.Username)
		require.Len(mt, profile.Followers, 2)
		assert.Equal(mt, "bob", profile.Followers[0].Username)
		assert.Equal(mt, "carol", profile.Followers[1].Username)
		assert.Empty(mt, profile.Following)
	})

	mt.Run("set follow writes both sides", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		require.NoError(mt, store.SetFollow(ctx, primitive.NewObjectID(), primitive.NewObjectID(), true))
	})

	mt.Run("set follow on missing target", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		err := store.SetFollow(ctx, primitive.NewObjectID(), primitive.NewObjectID(), false)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
