package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens signs and validates bearer credentials with a shared HMAC secret.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

func (t *Tokens) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses tokenString and returns its claims. Expired tokens, foreign
// signing methods and tokens without a user id are rejected.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
