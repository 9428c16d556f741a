package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxPostLength    = 500
	MaxCommentLength = 200
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Content   string               `bson:"content" json:"content"`
	Image     string               `bson:"image,omitempty" json:"image"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Comment returns the embedded comment with the given id, or nil.
func (p *Post) Comment(id primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// LikedBy reports whether id is in the post's likes.
func (p *Post) LikedBy(id primitive.ObjectID) bool {
	return ContainsID(p.Likes, id)
}

// PopulatedPost is a post with its author and comment authors resolved.
// A reference to a user that no longer exists resolves to nil.
type PopulatedPost struct {
	ID        primitive.ObjectID
	User      *UserSummary
	Content   string
	Image     string
	Likes     []primitive.ObjectID
	Comments  []PopulatedComment
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PopulatedComment struct {
	ID        primitive.ObjectID
	User      *UserSummary
	Content   string
	CreatedAt time.Time
}

// Populate resolves p against authors, keyed by user id.
func Populate(p *Post, authors map[primitive.ObjectID]*UserSummary) *PopulatedPost {
	out := &PopulatedPost{
		ID:        p.ID,
		User:      authors[p.User],
		Content:   p.Content,
		Image:     p.Image,
		Likes:     p.Likes,
		Comments:  make([]PopulatedComment, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if out.Likes == nil {
		out.Likes = []primitive.ObjectID{}
	}
	for _, c := range p.Comments {
		out.Comments = append(out.Comments, PopulatedComment{
			ID:        c.ID,
			User:      authors[c.User],
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}
