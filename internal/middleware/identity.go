package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/deep-thoughts/deep-thoughts-backend/internal/auth"
)

// Identity extracts a credential from the request (body field, query
// parameter, then Authorization header), decodes it, and attaches the
// identity to the request context. Requests without a token, or with a
// token that fails to decode, pass through anonymous: authorization
// decisions happen per-operation, not here. A corrupt token must never
// fail the request.
func Identity(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.DecodeToken(token, secret)
			if err != nil {
				log.Printf("Invalid token: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// tokenFromRequest locates a candidate token: JSON body field "token",
// query parameter "token", then the Authorization header with a leading
// "Bearer" scheme label stripped.
func tokenFromRequest(r *http.Request) string {
	if token := tokenFromBody(r); token != "" {
		return token
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return ""
}

// tokenFromBody peeks at a top-level "token" field in a JSON body. The
// body is buffered and restored so the downstream handler reads it intact.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var fields struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	return fields.Token
}
