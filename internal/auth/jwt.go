package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "candyshop"

type TokenMaker struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(userID int, email string, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if c.UserID <= 0 {
		return Claims{}, errors.New("invalid subject")
	}

	return c, nil
}
