package graph

import (
	"github.com/deep-thoughts/deep-thoughts-backend/internal/models"
	"github.com/graphql-go/graphql"
)

// timeFormat renders creation timestamps for clients, e.g.
// "Jan 2, 2006 at 3:04 pm".
const timeFormat = "Jan 2, 2006 at 3:04 pm"

// NewSchema builds the executable schema: User, Thought, Reaction and Auth
// types plus the query and mutation roots, all resolving through r.
// Required arguments are non-null, so their absence is rejected by
// validation before any resolver runs.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	reactionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Reaction",
		Fields: graphql.Fields{
			"_id": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return reactionSource(p).ID.Hex(), nil
				},
			},
			"reactionBody": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return reactionSource(p).ReactionBody, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return reactionSource(p).CreatedAt.Format(timeFormat), nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return reactionSource(p).Username, nil
				},
			},
		},
	})

	thoughtType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Thought",
		Fields: graphql.Fields{
			"_id": &graphql.Field{
				Type: graphql.ID,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).ID.Hex(), nil
				},
			},
			"thoughtText": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).ThoughtText, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).CreatedAt.Format(timeFormat), nil
				},
			},
			"username": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).Username, nil
				},
			},
			"reactionCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).ReactionCount(), nil
				},
			},
			"reactions": &graphql.Field{
				Type: graphql.NewList(reactionType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return thoughtSource(p).Reactions, nil
				},
			},
		},
	})

	// User references itself through friends, so its fields are a thunk.
	var userType *graphql.Object
	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			return graphql.Fields{
				"_id": &graphql.Field{
					Type: graphql.ID,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return userSource(p).ID.Hex(), nil
					},
				},
				"username": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return userSource(p).Username, nil
					},
				},
				"email": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return userSource(p).Email, nil
					},
				},
				"thoughts": &graphql.Field{
					Type: graphql.NewList(thoughtType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						ctx, cancel := opContext(p)
						defer cancel()
						return r.Store.FindThoughtsByIDs(ctx, userSource(p).Thoughts)
					},
				},
				"friends": &graphql.Field{
					Type: graphql.NewList(userType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						ctx, cancel := opContext(p)
						defer cancel()
						return r.Store.FindUsersByIDs(ctx, userSource(p).Friends)
					},
				},
				"friendCount": &graphql.Field{
					Type: graphql.Int,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return userSource(p).FriendCount(), nil
					},
				},
			}
		}),
	})

	authType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Auth",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*Auth).Token, nil
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*Auth).User, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"thoughts": &graphql.Field{
				Type: graphql.NewList(thoughtType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.Thoughts,
			},
			"thought": &graphql.Field{
				Type: thoughtType,
				Args: graphql.FieldConfigArgument{
					"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.Thought,
			},
			"users": &graphql.Field{
				Type:    graphql.NewList(userType),
				Resolve: r.Users,
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.User,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.authenticated(r.Me),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addUser": &graphql.Field{
				Type: authType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.AddUser,
			},
			"login": &graphql.Field{
				Type: authType,
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.Login,
			},
			"addThought": &graphql.Field{
				Type: thoughtType,
				Args: graphql.FieldConfigArgument{
					"thoughtText": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.authenticated(r.AddThought),
			},
			"addReaction": &graphql.Field{
				Type: thoughtType,
				Args: graphql.FieldConfigArgument{
					"thoughtId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"reactionBody": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.authenticated(r.AddReaction),
			},
			"addFriend": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"friendId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.authenticated(r.AddFriend),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// Resolvers return both pointers and slice elements, so sources arrive as
// *T or T depending on the field above them.

func userSource(p graphql.ResolveParams) *models.User {
	switch u := p.Source.(type) {
	case *models.User:
		return u
	case models.User:
		return &u
	}
	return &models.User{}
}

func thoughtSource(p graphql.ResolveParams) *models.Thought {
	switch t := p.Source.(type) {
	case *models.Thought:
		return t
	case models.Thought:
		return &t
	}
	return &models.Thought{}
}

func reactionSource(p graphql.ResolveParams) *models.Reaction {
	switch re := p.Source.(type) {
	case *models.Reaction:
		return re
	case models.Reaction:
		return &re
	}
	return &models.Reaction{}
}
