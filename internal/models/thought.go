package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reaction is a short reply embedded in its parent thought. It has no
// lifecycle of its own: created on append, never edited or removed.
type Reaction struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	ReactionBody string             `bson:"reaction_body" json:"reaction_body"`
	Username     string             `bson:"username" json:"username"`
}

type Thought struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	ThoughtText string `bson:"thought_text" json:"thought_text"`
	// Denormalized author username, not a live reference.
	Username string `bson:"username" json:"username"`

	Reactions []Reaction `bson:"reactions" json:"reactions"`
}

// ReactionCount is the length of the reaction sequence.
func (t *Thought) ReactionCount() int {
	return len(t.Reactions)
}
