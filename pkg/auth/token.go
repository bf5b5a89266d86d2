// Package auth implements stateless credential handling: an HMAC token
// codec, bcrypt password verification and the login/refresh/identity
// service on top of them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// Codec signs and verifies time-limited claim tokens with a symmetric
// secret. The same codec type, configured with a distinct secret, also
// verifies device-submitted measurement payloads.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
}

func NewCodec(secret, algorithm string) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not symmetric", algorithm)
	}
	return &Codec{secret: []byte(secret), method: method}, nil
}

// Issue signs the claims plus an expiry ttl from now. The caller's map is
// not modified.
func (c *Codec) Issue(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	toEncode := jwt.MapClaims{}
	for k, v := range claims {
		toEncode[k] = v
	}
	toEncode["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))

	return jwt.NewWithClaims(c.method, toEncode).SignedString(c.secret)
}

// Decode verifies signature and expiry and returns the claims.
func (c *Codec) Decode(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	default:
		return nil, ErrTokenInvalid
	}
}
