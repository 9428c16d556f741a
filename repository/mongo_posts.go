package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sociomate/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB-backed Store.
type MongoStore struct {
	users *mongo.Collection
	posts *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection(UsersCollection),
		posts: db.Collection(PostsCollection),
	}
}

var _ Store = (*MongoStore)(nil)

// populatedPostDoc is one row of the populate pipeline.
type populatedPostDoc struct {
	models.Post    `bson:",inline"`
	Authors        []models.UserSummary `bson:"authorDocs"`
	CommentAuthors []models.UserSummary `bson:"commentAuthorDocs"`
}

func (d *populatedPostDoc) populated() *models.PopulatedPost {
	authors := make(map[primitive.ObjectID]*models.UserSummary, len(d.Authors)+len(d.CommentAuthors))
	for i := range d.Authors {
		authors[d.Authors[i].ID] = &d.Authors[i]
	}
	for i := range d.CommentAuthors {
		authors[d.CommentAuthors[i].ID] = &d.CommentAuthors[i]
	}
	return models.Populate(&d.Post, authors)
}

// populatePipeline matches posts, sorts them newest first and joins the
// author and comment authors, keeping only summary fields.
func populatePipeline(match bson.D) mongo.Pipeline {
	summary := bson.D{{Key: "username", Value: 1}, {Key: "profilePicture", Value: 1}}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: summary}}}},
			{Key: "as", Value: "authorDocs"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "comments.user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: summary}}}},
			{Key: "as", Value: "commentAuthorDocs"},
		}}},
	}
}

func (s *MongoStore) aggregatePosts(ctx context.Context, match bson.D) ([]*models.PopulatedPost, error) {
	cursor, err := s.posts.Aggregate(ctx, populatePipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []populatedPostDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	out := make([]*models.PopulatedPost, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].populated())
	}
	return out, nil
}

func (s *MongoStore) InsertPost(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	if _, err := s.posts.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *MongoStore) FindPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) PopulatedPost(ctx context.Context, id primitive.ObjectID) (*models.PopulatedPost, error) {
	posts, err := s.aggregatePosts(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return posts[0], nil
}

func (s *MongoStore) ListPosts(ctx context.Context, author *primitive.ObjectID) ([]*models.PopulatedPost, error) {
	match := bson.D{}
	if author != nil {
		match = bson.D{{Key: "user", Value: *author}}
	}
	return s.aggregatePosts(ctx, match)
}

// ToggleLike uses a pipeline update so the presence check and the write are
// one atomic document operation.
func (s *MongoStore) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: likes},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
				}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
			}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "likes", Value: 1}})

	var p models.Post
	err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return p.LikedBy(userID), nil
}

func (s *MongoStore) PushComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": c},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("push comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) PullComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": commentID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("pull comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
