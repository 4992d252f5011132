package store

import (
	"context"
	"errors"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound: a lookup or targeted update matched no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUser: signup hit the unique index on username or email.
	ErrDuplicateUser = errors.New("username or email already in use")
)

// Store is the MongoDB data access layer. It operates on the shared
// database handle established at startup.
type Store struct{}

func New() *Store {
	return &Store{}
}

func (s *Store) users() *mongo.Collection {
	return database.DB.Collection("users")
}

func (s *Store) thoughts() *mongo.Collection {
	return database.DB.Collection("thoughts")
}

// EnsureIndexes creates the unique indexes signup relies on for its
// duplicate-key semantics.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
