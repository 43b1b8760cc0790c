package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "jarvis_token"
	DefaultIssuer     = "jarvis"
)

// Session is the logical session carried by the signed cookie. PwChange is
// set when the account still has first_login or reset_by_admin pending, in
// which case only the change-password flow is reachable.
type Session struct {
	Username string
	Role     string
	PwChange bool
}

func (s Session) IsAdmin() bool { return s.Role == "admin" }

type Claims struct {
	Role     string `json:"role"`
	PwChange bool   `json:"pwchange,omitempty"`
	jwt.RegisteredClaims
}

func NewRandomSecretB64(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SignHS256 mints a session token for sess valid for ttl.
func SignHS256(secret []byte, sess Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     sess.Role,
		PwChange: sess.PwChange,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			Subject:   sess.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

// ParseHS256 validates tokenString and returns the session it carries.
func ParseHS256(secret []byte, tokenString string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return &Session{
		Username: claims.Subject,
		Role:     claims.Role,
		PwChange: claims.PwChange,
	}, nil
}
