package store

import (
	"context"
	"errors"
	"time"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"github.com/deep-thoughts/deep-thoughts-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindUsers returns all users.
func (s *Store) FindUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) findOneUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByUsername returns one user, or ErrNotFound.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOneUser(ctx, bson.M{"username": username})
}

// FindUserByEmail returns one user, or ErrNotFound.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOneUser(ctx, bson.M{"email": email})
}

// FindUserByID returns one user by hex id, or ErrNotFound.
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOneUser(ctx, bson.M{"_id": objectID})
}

// FindUsersByIDs resolves friend references.
func (s *Store) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	cursor, err := s.users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser hashes the password and inserts the user. A unique-index
// violation on username or email comes back as ErrDuplicateUser.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Now(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Thoughts:  []primitive.ObjectID{},
		Friends:   []primitive.ObjectID{},
	}

	if _, err := s.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}

// AddFriend adds a friend reference to the user's record and returns the
// updated user. A single atomic $addToSet makes the operation idempotent
// without a pre-check.
func (s *Store) AddFriend(ctx context.Context, userID, friendID string) (*models.User, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	friendObjectID, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return nil, ErrNotFound
	}

	updateOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err = s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": userObjectID},
		bson.M{"$addToSet": bson.M{"friends": friendObjectID}},
		updateOptions,
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
