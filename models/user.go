package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	Bio            string               `bson:"bio" json:"bio"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
}

// Summary projects u onto the fields a populated reference exposes.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return ContainsID(u.Following, id)
}

// Profile is a user without its password hash, with both sides of the
// follow graph resolved to summaries.
type Profile struct {
	User      User
	Followers []UserSummary
	Following []UserSummary
}

// UserUpdate is a partial profile edit. Empty fields keep their stored value.
type UserUpdate struct {
	Username       string
	Bio            string
	ProfilePicture string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == "" && u.Bio == "" && u.ProfilePicture == ""
}

// ContainsID is the linear membership check used for likes and follow edges.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids without any occurrence of id.
func RemoveID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
