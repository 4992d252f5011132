package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/auth"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/store"
	"github.com/deep-thoughts/deep-thoughts-backend/pkg/utils"
	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxBodyLength bounds thought and reaction text, in runes.
const maxBodyLength = 280

const resolveTimeout = 5 * time.Second

// Store is the data access surface the resolvers need. The production
// implementation is internal/store; tests use an in-memory fake.
type Store interface {
	FindThoughts(ctx context.Context, username string) ([]models.Thought, error)
	FindThoughtByID(ctx context.Context, id string) (*models.Thought, error)
	FindThoughtsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Thought, error)
	AppendThought(ctx context.Context, text, username string) (*models.Thought, error)
	LinkThoughtToAuthor(ctx context.Context, userID, thoughtID string) error
	AppendReaction(ctx context.Context, thoughtID, body, username string) (*models.Thought, error)

	FindUsers(ctx context.Context) ([]models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	CreateUser(ctx context.Context, username, email, password string) (*models.User, error)
	AddFriend(ctx context.Context, userID, friendID string) (*models.User, error)
}

// Auth is the payload returned by addUser and login.
type Auth struct {
	Token string
	User  *models.User
}

type Resolver struct {
	Store  Store
	Secret []byte
}

// authenticated gates a resolver on an attached identity. Every
// identity-requiring operation goes through this one wrapper, so absence
// of identity always surfaces as the same error.
func (r *Resolver) authenticated(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if auth.IdentityFromContext(p.Context) == nil {
			return nil, ErrUnauthenticated
		}
		return fn(p)
	}
}

func opContext(p graphql.ResolveParams) (context.Context, context.CancelFunc) {
	return context.WithTimeout(p.Context, resolveTimeout)
}

// --- Queries ---

func (r *Resolver) Thoughts(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	username, _ := p.Args["username"].(string)
	return r.Store.FindThoughts(ctx, username)
}

func (r *Resolver) Thought(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	id, _ := p.Args["_id"].(string)
	thought, err := r.Store.FindThoughtByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Absent, not an error, for reads.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return thought, nil
}

func (r *Resolver) Users(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	return r.Store.FindUsers(ctx)
}

func (r *Resolver) User(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	username, _ := p.Args["username"].(string)
	user, err := r.Store.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) Me(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	identity := auth.IdentityFromContext(p.Context)
	user, err := r.Store.FindUserByID(ctx, identity.ID)
	if errors.Is(err, store.ErrNotFound) {
		// A valid token for a record that no longer exists; decode never
		// re-checks the store, so this can happen.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// --- Mutations ---

func (r *Resolver) AddUser(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	username, _ := p.Args["username"].(string)
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	if utf8.RuneCountInString(password) < 5 {
		return nil, errors.New("password must be at least 5 characters")
	}

	user, err := r.Store.CreateUser(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	return r.authPayload(user)
}

func (r *Resolver) Login(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	user, err := r.Store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return r.authPayload(user)
}

func (r *Resolver) AddThought(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	identity := auth.IdentityFromContext(p.Context)
	text, _ := p.Args["thoughtText"].(string)
	if err := validateBody("thoughtText", text); err != nil {
		return nil, err
	}

	thought, err := r.Store.AppendThought(ctx, text, identity.Username)
	if err != nil {
		return nil, err
	}

	// Two separate store calls with no transaction across them: a failure
	// here leaves the thought persisted but unlinked from its author.
	if err := r.Store.LinkThoughtToAuthor(ctx, identity.ID, thought.ID.Hex()); err != nil {
		return nil, err
	}

	return thought, nil
}

func (r *Resolver) AddReaction(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	identity := auth.IdentityFromContext(p.Context)
	thoughtID, _ := p.Args["thoughtId"].(string)
	body, _ := p.Args["reactionBody"].(string)
	if err := validateBody("reactionBody", body); err != nil {
		return nil, err
	}

	thought, err := r.Store.AppendReaction(ctx, thoughtID, body, identity.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrThoughtNotFound
	}
	if err != nil {
		return nil, err
	}
	return thought, nil
}

func (r *Resolver) AddFriend(p graphql.ResolveParams) (interface{}, error) {
	ctx, cancel := opContext(p)
	defer cancel()

	identity := auth.IdentityFromContext(p.Context)
	friendID, _ := p.Args["friendId"].(string)

	if _, err := r.Store.FindUserByID(ctx, friendID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := r.Store.AddFriend(ctx, identity.ID, friendID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) authPayload(user *models.User) (*Auth, error) {
	token, err := auth.SignToken(auth.Identity{
		Username: user.Username,
		Email:    user.Email,
		ID:       user.ID.Hex(),
	}, r.Secret)
	if err != nil {
		return nil, err
	}
	return &Auth{Token: token, User: user}, nil
}

func validateBody(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(text) > maxBodyLength {
		return fmt.Errorf("%s cannot exceed %d characters", field, maxBodyLength)
	}
	return nil
}
