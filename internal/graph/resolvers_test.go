package graph

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/auth"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test-secret")

func newTestSchema(t *testing.T) (graphql.Schema, *fakeStore) {
	t.Helper()
	fs := &fakeStore{}
	schema, err := NewSchema(&Resolver{Store: fs, Secret: testSecret})
	require.NoError(t, err)
	return schema, fs
}

func exec(schema graphql.Schema, ctx context.Context, query string) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       ctx,
	})
}

// identityFor builds the context an authenticated request would carry.
func identityFor(u *models.User) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		Username: u.Username,
		Email:    u.Email,
		ID:       u.ID.Hex(),
	})
}

func requireErrorMessage(t *testing.T, result *graphql.Result, message string) {
	t.Helper()
	require.NotEmpty(t, result.Errors)
	require.Equal(t, message, result.Errors[0].Message)
}

func data(t *testing.T, result *graphql.Result, path ...string) map[string]interface{} {
	t.Helper()
	require.Empty(t, result.Errors)
	current, ok := result.Data.(map[string]interface{})
	require.True(t, ok)
	for _, key := range path {
		current, ok = current[key].(map[string]interface{})
		require.True(t, ok, "missing object at %q", key)
	}
	return current
}

func signup(t *testing.T, schema graphql.Schema, username, email, password string) string {
	t.Helper()
	result := exec(schema, context.Background(),
		`mutation { addUser(username: "`+username+`", email: "`+email+`", password: "`+password+`") { token user { username } } }`)
	payload := data(t, result, "addUser")
	token, ok := payload["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestSignupIssuesDecodableToken(t *testing.T) {
	schema, _ := newTestSchema(t)

	token := signup(t, schema, "zoe", "zoe@x.com", "pw123456")

	identity, err := auth.DecodeToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "zoe", identity.Username)
	require.Equal(t, "zoe@x.com", identity.Email)
	require.NotEmpty(t, identity.ID)
}

func TestSignupThenMe(t *testing.T) {
	schema, _ := newTestSchema(t)

	token := signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	identity, err := auth.DecodeToken(token, testSecret)
	require.NoError(t, err)

	ctx := auth.WithIdentity(context.Background(), identity)
	result := exec(schema, ctx, `{ me { username email } }`)
	me := data(t, result, "me")
	require.Equal(t, "zoe", me["username"])
	require.Equal(t, "zoe@x.com", me["email"])
}

func TestSignupPasswordTooShort(t *testing.T) {
	schema, fs := newTestSchema(t)

	result := exec(schema, context.Background(),
		`mutation { addUser(username: "zoe", email: "zoe@x.com", password: "pw") { token } }`)
	requireErrorMessage(t, result, "password must be at least 5 characters")
	require.Empty(t, fs.users)
}

func TestDuplicateSignupRejected(t *testing.T) {
	schema, _ := newTestSchema(t)

	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	result := exec(schema, context.Background(),
		`mutation { addUser(username: "zoe", email: "other@x.com", password: "pw123456") { token } }`)
	requireErrorMessage(t, result, "username or email already in use")
}

func TestLoginErrorIndistinguishable(t *testing.T) {
	schema, _ := newTestSchema(t)
	signup(t, schema, "zoe", "real@x.com", "pw123456")

	unknownUser := exec(schema, context.Background(),
		`mutation { login(email: "nouser@x.com", password: "anything") { token } }`)
	wrongPassword := exec(schema, context.Background(),
		`mutation { login(email: "real@x.com", password: "wrongpass") { token } }`)

	require.NotEmpty(t, unknownUser.Errors)
	require.NotEmpty(t, wrongPassword.Errors)
	require.Equal(t, unknownUser.Errors[0].Message, wrongPassword.Errors[0].Message)
	require.Equal(t, ErrInvalidCredentials.Error(), unknownUser.Errors[0].Message)
}

func TestLoginSuccess(t *testing.T) {
	schema, _ := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")

	result := exec(schema, context.Background(),
		`mutation { login(email: "zoe@x.com", password: "pw123456") { token user { username } } }`)
	payload := data(t, result, "login")

	token, ok := payload["token"].(string)
	require.True(t, ok)
	identity, err := auth.DecodeToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "zoe", identity.Username)
}

func TestUnauthenticatedOperations(t *testing.T) {
	schema, fs := newTestSchema(t)
	fs.thoughts = append(fs.thoughts, &models.Thought{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Now(),
		Username:  "alice",
		Reactions: []models.Reaction{},
	})
	thoughtID := fs.thoughts[0].ID.Hex()

	for name, query := range map[string]string{
		"me":          `{ me { username } }`,
		"addThought":  `mutation { addThought(thoughtText: "hi") { _id } }`,
		"addReaction": `mutation { addReaction(thoughtId: "` + thoughtID + `", reactionBody: "nice!") { _id } }`,
		"addFriend":   `mutation { addFriend(friendId: "` + thoughtID + `") { _id } }`,
	} {
		t.Run(name, func(t *testing.T) {
			result := exec(schema, context.Background(), query)
			requireErrorMessage(t, result, ErrUnauthenticated.Error())
		})
	}
}

func TestAddThoughtLinksAuthor(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	user := fs.users[0]

	result := exec(schema, identityFor(user),
		`mutation { addThought(thoughtText: "deep stuff") { thoughtText username } }`)
	thought := data(t, result, "addThought")
	require.Equal(t, "deep stuff", thought["thoughtText"])
	require.Equal(t, "zoe", thought["username"])

	require.Len(t, user.Thoughts, 1, "thought reference must be linked to the author")
	require.Equal(t, fs.thoughts[0].ID, user.Thoughts[0])
}

func TestAddThoughtValidation(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	ctx := identityFor(fs.users[0])

	empty := exec(schema, ctx, `mutation { addThought(thoughtText: "   ") { _id } }`)
	requireErrorMessage(t, empty, "thoughtText cannot be empty")

	long := exec(schema, ctx,
		`mutation { addThought(thoughtText: "`+strings.Repeat("a", 281)+`") { _id } }`)
	requireErrorMessage(t, long, "thoughtText cannot exceed 280 characters")

	require.Empty(t, fs.thoughts, "invalid thoughts must not be persisted")
}

func TestAddReaction(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	user := fs.users[0]

	fs.thoughts = append(fs.thoughts, &models.Thought{
		ID:          primitive.NewObjectID(),
		CreatedAt:   time.Now(),
		ThoughtText: "hello",
		Username:    "alice",
		Reactions:   []models.Reaction{},
	})
	thoughtID := fs.thoughts[0].ID.Hex()

	result := exec(schema, identityFor(user),
		`mutation { addReaction(thoughtId: "`+thoughtID+`", reactionBody: "nice!") { reactionCount reactions { reactionBody username } } }`)
	thought := data(t, result, "addReaction")
	require.Equal(t, 1, thought["reactionCount"])

	reactions, ok := thought["reactions"].([]interface{})
	require.True(t, ok)
	require.Len(t, reactions, 1)
	last := reactions[len(reactions)-1].(map[string]interface{})
	require.Equal(t, "nice!", last["reactionBody"])
	require.Equal(t, "zoe", last["username"])

	again := exec(schema, identityFor(user),
		`mutation { addReaction(thoughtId: "`+thoughtID+`", reactionBody: "again") { reactionCount } }`)
	require.Equal(t, 2, data(t, again, "addReaction")["reactionCount"])
}

func TestAddReactionMissingThought(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")

	result := exec(schema, identityFor(fs.users[0]),
		`mutation { addReaction(thoughtId: "`+primitive.NewObjectID().Hex()+`", reactionBody: "nice!") { _id } }`)
	requireErrorMessage(t, result, ErrThoughtNotFound.Error())
}

func TestAddFriendIdempotent(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	signup(t, schema, "alice", "alice@x.com", "pw123456")
	zoe, alice := fs.users[0], fs.users[1]

	mutation := `mutation { addFriend(friendId: "` + alice.ID.Hex() + `") { friendCount } }`

	first := exec(schema, identityFor(zoe), mutation)
	require.Equal(t, 1, data(t, first, "addFriend")["friendCount"])

	second := exec(schema, identityFor(zoe), mutation)
	require.Equal(t, 1, data(t, second, "addFriend")["friendCount"],
		"adding the same friend twice must not grow the set")
}

func TestAddFriendUnknownTarget(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")

	result := exec(schema, identityFor(fs.users[0]),
		`mutation { addFriend(friendId: "`+primitive.NewObjectID().Hex()+`") { _id } }`)
	requireErrorMessage(t, result, ErrUserNotFound.Error())
}

func TestThoughtsOrderedAndFiltered(t *testing.T) {
	schema, fs := newTestSchema(t)
	base := time.Now()
	for i, seed := range []struct {
		username, text string
	}{
		{"alice", "first"},
		{"bob", "second"},
		{"alice", "third"},
	} {
		fs.thoughts = append(fs.thoughts, &models.Thought{
			ID:          primitive.NewObjectID(),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			ThoughtText: seed.text,
			Username:    seed.username,
			Reactions:   []models.Reaction{},
		})
	}

	all := exec(schema, context.Background(), `{ thoughts { thoughtText } }`)
	require.Empty(t, all.Errors)
	require.Equal(t, []string{"third", "second", "first"}, thoughtTexts(t, all, "thoughts"))

	filtered := exec(schema, context.Background(), `{ thoughts(username: "alice") { thoughtText } }`)
	require.Empty(t, filtered.Errors)
	require.Equal(t, []string{"third", "first"}, thoughtTexts(t, filtered, "thoughts"))
}

func thoughtTexts(t *testing.T, result *graphql.Result, field string) []string {
	t.Helper()
	list, ok := result.Data.(map[string]interface{})[field].([]interface{})
	require.True(t, ok)
	texts := []string{}
	for _, item := range list {
		texts = append(texts, item.(map[string]interface{})["thoughtText"].(string))
	}
	return texts
}

func TestThoughtByIDAbsentIsNull(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := exec(schema, context.Background(),
		`{ thought(_id: "`+primitive.NewObjectID().Hex()+`") { _id } }`)
	require.Empty(t, result.Errors, "a read miss is absent, not an error")
	require.Nil(t, result.Data.(map[string]interface{})["thought"])
}

func TestUserResolvesFriendsAndThoughts(t *testing.T) {
	schema, fs := newTestSchema(t)
	signup(t, schema, "zoe", "zoe@x.com", "pw123456")
	signup(t, schema, "alice", "alice@x.com", "pw123456")
	zoe, alice := fs.users[0], fs.users[1]

	exec(schema, identityFor(zoe), `mutation { addThought(thoughtText: "hello") { _id } }`)
	exec(schema, identityFor(zoe), `mutation { addFriend(friendId: "`+alice.ID.Hex()+`") { _id } }`)

	result := exec(schema, context.Background(),
		`{ user(username: "zoe") { username friendCount friends { username } thoughts { thoughtText } } }`)
	user := data(t, result, "user")
	require.Equal(t, 1, user["friendCount"])

	friends := user["friends"].([]interface{})
	require.Len(t, friends, 1)
	require.Equal(t, "alice", friends[0].(map[string]interface{})["username"])

	thoughts := user["thoughts"].([]interface{})
	require.Len(t, thoughts, 1)
	require.Equal(t, "hello", thoughts[0].(map[string]interface{})["thoughtText"])
}

func TestRequiredArgumentsEnforced(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := exec(schema, context.Background(), `mutation { login(email: "zoe@x.com") { token } }`)
	require.NotEmpty(t, result.Errors, "missing required argument must be rejected before resolution")
}
