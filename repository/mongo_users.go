package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sociomate/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	u.Email = strings.ToLower(u.Email)

	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "username") {
			return Conflict("Username already taken")
		}
		return Conflict("User already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *MongoStore) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) UpdateUser(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Username != "" {
		set["username"] = upd.Username
	}
	if upd.Bio != "" {
		set["bio"] = upd.Bio
	}
	if upd.ProfilePicture != "" {
		set["profilePicture"] = upd.ProfilePicture
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, Conflict("Username already taken")
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

type profileDoc struct {
	models.User   `bson:",inline"`
	FollowerDocs  []models.UserSummary `bson:"followerDocs"`
	FollowingDocs []models.UserSummary `bson:"followingDocs"`
}

func (s *MongoStore) Profile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	summary := bson.A{bson.D{{Key: "$project", Value: bson.D{{Key: "username", Value: 1}, {Key: "profilePicture", Value: 1}}}}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$project", Value: bson.D{{Key: "password", Value: 0}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "followers"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: summary},
			{Key: "as", Value: "followerDocs"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "following"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: summary},
			{Key: "as", Value: "followingDocs"},
		}}},
	}

	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate profile: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []profileDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	d := docs[0]
	return &models.Profile{
		User:      d.User,
		Followers: orderSummaries(d.User.Followers, d.FollowerDocs),
		Following: orderSummaries(d.User.Following, d.FollowingDocs),
	}, nil
}

// SetFollow is not transactional: a failure between the two writes leaves a
// one-sided edge that the next toggle by the same follower repairs.
func (s *MongoStore) SetFollow(ctx context.Context, follower, target primitive.ObjectID, follow bool) error {
	op := "$addToSet"
	if !follow {
		op = "$pull"
	}
	now := time.Now()

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": follower},
		bson.M{op: bson.M{"following": target}, "$set": bson.M{"updatedAt": now}})
	if err != nil {
		return fmt.Errorf("update following: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	res, err = s.users.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{op: bson.M{"followers": follower}, "$set": bson.M{"updatedAt": now}})
	if err != nil {
		return fmt.Errorf("update followers: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
