package graph

import "errors"

// Operation-level failures. These reach the client in the GraphQL errors
// array; transport status stays 200 so partial results remain usable.
var (
	// ErrUnauthenticated is the single error every identity-requiring
	// operation returns when no identity is attached, whatever the root
	// cause (missing, malformed, or expired token).
	ErrUnauthenticated = errors.New("you need to be logged in")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// One message for both, so a caller cannot probe which factor failed.
	ErrInvalidCredentials = errors.New("incorrect credentials")

	ErrThoughtNotFound = errors.New("no thought found with this id")
	ErrUserNotFound    = errors.New("no user found with this id")
)
