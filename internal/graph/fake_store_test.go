package graph

import (
	"context"
	"sort"
	"time"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/store"
	"github.com/deep-thoughts/deep-thoughts-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory Store for resolver tests. It mirrors the
// document-store semantics the resolvers rely on: creation-time-descending
// thought ordering, set semantics for friends and thought links, and the
// sentinel errors of the mongo implementation.
type fakeStore struct {
	users    []*models.User
	thoughts []*models.Thought
}

func (f *fakeStore) FindThoughts(_ context.Context, username string) ([]models.Thought, error) {
	out := []models.Thought{}
	for _, t := range f.thoughts {
		if username == "" || t.Username == username {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) FindThoughtByID(_ context.Context, id string) (*models.Thought, error) {
	for _, t := range f.thoughts {
		if t.ID.Hex() == id {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindThoughtsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Thought, error) {
	out := []models.Thought{}
	for _, t := range f.thoughts {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, *t)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) AppendThought(_ context.Context, text, username string) (*models.Thought, error) {
	thought := &models.Thought{
		ID:          primitive.NewObjectID(),
		CreatedAt:   time.Now(),
		ThoughtText: text,
		Username:    username,
		Reactions:   []models.Reaction{},
	}
	f.thoughts = append(f.thoughts, thought)
	return thought, nil
}

func (f *fakeStore) LinkThoughtToAuthor(_ context.Context, userID, thoughtID string) error {
	thoughtObjectID, err := primitive.ObjectIDFromHex(thoughtID)
	if err != nil {
		return store.ErrNotFound
	}
	for _, u := range f.users {
		if u.ID.Hex() == userID {
			for _, existing := range u.Thoughts {
				if existing == thoughtObjectID {
					return nil
				}
			}
			u.Thoughts = append(u.Thoughts, thoughtObjectID)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) AppendReaction(_ context.Context, thoughtID, body, username string) (*models.Thought, error) {
	for _, t := range f.thoughts {
		if t.ID.Hex() == thoughtID {
			t.Reactions = append(t.Reactions, models.Reaction{
				ID:           primitive.NewObjectID(),
				CreatedAt:    time.Now(),
				ReactionBody: body,
				Username:     username,
			})
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUsers(_ context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateUser(_ context.Context, username, email, password string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return nil, store.ErrDuplicateUser
		}
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Now(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Thoughts:  []primitive.ObjectID{},
		Friends:   []primitive.ObjectID{},
	}
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeStore) AddFriend(_ context.Context, userID, friendID string) (*models.User, error) {
	friendObjectID, err := primitive.ObjectIDFromHex(friendID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	for _, u := range f.users {
		if u.ID.Hex() == userID {
			present := false
			for _, existing := range u.Friends {
				if existing == friendObjectID {
					present = true
				}
			}
			if !present {
				u.Friends = append(u.Friends, friendObjectID)
			}
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}
