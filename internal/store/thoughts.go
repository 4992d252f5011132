package store

import (
	"context"
	"errors"
	"time"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindThoughts returns thoughts sorted by creation time descending. An
// empty username returns all thoughts; the unfiltered feed is served from
// the Redis cache when possible.
func (s *Store) FindThoughts(ctx context.Context, username string) ([]models.Thought, error) {
	if username == "" {
		var cached []models.Thought
		if cacheGet(ctx, feedCacheKey, &cached) {
			return cached, nil
		}
	}

	filter := bson.M{}
	if username != "" {
		filter["username"] = username
	}

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := s.thoughts().Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	thoughts := []models.Thought{}
	if err := cursor.All(ctx, &thoughts); err != nil {
		return nil, err
	}

	if username == "" {
		cacheSet(ctx, feedCacheKey, thoughts, feedCacheTTL)
	}
	return thoughts, nil
}

// FindThoughtByID returns one thought, or ErrNotFound.
func (s *Store) FindThoughtByID(ctx context.Context, id string) (*models.Thought, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var thought models.Thought
	err = s.thoughts().FindOne(ctx, bson.M{"_id": objectID}).Decode(&thought)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &thought, nil
}

// FindThoughtsByIDs resolves a user's thought references, newest first.
func (s *Store) FindThoughtsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thought, error) {
	if len(ids) == 0 {
		return []models.Thought{}, nil
	}

	findOptions := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := s.thoughts().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	thoughts := []models.Thought{}
	if err := cursor.All(ctx, &thoughts); err != nil {
		return nil, err
	}
	return thoughts, nil
}

// AppendThought persists a new thought attributed to the given username.
func (s *Store) AppendThought(ctx context.Context, text, username string) (*models.Thought, error) {
	thought := models.Thought{
		ID:          primitive.NewObjectID(),
		CreatedAt:   time.Now(),
		ThoughtText: text,
		Username:    username,
		Reactions:   []models.Reaction{},
	}

	if _, err := s.thoughts().InsertOne(ctx, thought); err != nil {
		return nil, err
	}

	cacheDelete(ctx, feedCacheKey)
	return &thought, nil
}

// LinkThoughtToAuthor adds the thought reference to the author's record.
// $addToSet keeps the references a set even under concurrent writes.
func (s *Store) LinkThoughtToAuthor(ctx context.Context, userID, thoughtID string) error {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	thoughtObjectID, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.users().UpdateOne(ctx,
		bson.M{"_id": userObjectID},
		bson.M{"$addToSet": bson.M{"thoughts": thoughtObjectID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendReaction atomically appends a reaction with a server-generated id
// and timestamp, returning the updated thought. A single $push avoids lost
// updates under concurrent reactions; ErrNotFound when the thought is gone.
func (s *Store) AppendReaction(ctx context.Context, thoughtID, body, username string) (*models.Thought, error) {
	objectID, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return nil, ErrNotFound
	}

	reaction := models.Reaction{
		ID:           primitive.NewObjectID(),
		CreatedAt:    time.Now(),
		ReactionBody: body,
		Username:     username,
	}

	updateOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var thought models.Thought
	err = s.thoughts().FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{"$push": bson.M{"reactions": reaction}},
		updateOptions,
	).Decode(&thought)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cacheDelete(ctx, feedCacheKey)
	return &thought, nil
}
