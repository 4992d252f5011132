package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// SetupRoutes registers the single GraphQL endpoint. GraphiQL is served on
// GET /graphql when enabled (development only).
func SetupRoutes(r *chi.Mux, schema graphql.Schema, graphiql bool) {
	gqlHandler := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: graphiql,
	})

	r.Handle("/graphql", gqlHandler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
}
