package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiration is the fixed validity window for issued credentials.
const TokenExpiration = 2 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the minimal user identity embedded in a credential. Decoding
// a token only proves it was issued by this server within its validity
// window; the identity is never re-checked against the store.
type Identity struct {
	Username string
	Email    string
	ID       string
}

type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"userId"`
}

// SignToken issues an HS256 token embedding the identity's three fields,
// valid for TokenExpiration from now.
func SignToken(id Identity, secret []byte) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
		},
		Username: id.Username,
		Email:    id.Email,
		UserID:   id.ID,
	})

	return token.SignedString(secret)
}

// DecodeToken verifies signature and expiry and returns the embedded
// identity. Failures collapse to ErrTokenExpired or ErrInvalidToken;
// structurally malformed input is an error, never a panic.
func DecodeToken(tokenString string, secret []byte) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Identity{
		Username: claims.Username,
		Email:    claims.Email,
		ID:       claims.UserID,
	}, nil
}
