package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/config"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/database"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/graph"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/middleware"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/routes"
	"github.com/deep-thoughts/deep-thoughts-backend/internal/store"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Println("⚠️  WARNING: JWT_SECRET not set, using the development default.")
		log.Println("   Every token is signed with a publicly known secret.")
		log.Println("   Set JWT_SECRET in production; rotating it invalidates all issued tokens.")
	}

	// Connect to MongoDB. The server never accepts requests against a dead
	// store, so this is fatal.
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.Disconnect()

	st := store.New()
	if err := st.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB unique indexes: %v", err)
		log.Println("   Duplicate signups may not be rejected until indexes exist")
	} else {
		log.Println("✅ MongoDB unique indexes ensured")
	}

	// Redis only backs the feed cache and the development rate limiter;
	// both degrade gracefully, so a missing Redis is a warning, not fatal.
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Printf("⚠️  WARNING: Redis unavailable: %v", err)
		log.Println("   Feed caching and Redis rate limiting are disabled")
	} else {
		defer database.DisconnectRedis()
	}

	resolver := &graph.Resolver{Store: st, Secret: []byte(cfg.JWTSecret)}
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Fatal("Failed to build GraphQL schema: ", err)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Identity attachment runs last so resolvers see the decoded identity.
	r.Use(middleware.Identity([]byte(cfg.JWTSecret)))

	routes.SetupRoutes(r, schema, !cfg.IsProduction())

	log.Printf("🚀 Deep Thoughts API running on :%s", cfg.Port)
	log.Printf("   Use GraphQL at http://localhost:%s/graphql", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
