package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Argon2id hash, never returned to clients

	// References to authored thoughts and to other users. Both are sets:
	// writes go through $addToSet so duplicates cannot appear.
	Thoughts []primitive.ObjectID `bson:"thoughts" json:"thoughts"`
	Friends  []primitive.ObjectID `bson:"friends" json:"friends"`
}

// FriendCount is the cardinality of the friends set.
func (u *User) FriendCount() int {
	return len(u.Friends)
}
