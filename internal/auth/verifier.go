// Package auth verifies transfer tokens and extracts their claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"transfers/internal/result"
)

const (
	MsgTokenInvalid      = "Token invalid!"
	MsgTokenRequired     = "JWT is required either in the header or in the body."
	MsgInvalidAuthHeader = "Invalid authorization header format. Expected 'Bearer <token>'"
	bearerPrefix         = "Bearer "
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptyKey     = errors.New("signing key is empty")
)

// Verifier checks a raw token and exposes its claims.
type Verifier interface {
	Valid(token string) bool
	Claims(token string) (*Claims, error)
}

// HMACVerifier verifies HS256/HS384/HS512 tokens signed with a shared key.
type HMACVerifier struct {
	key    []byte
	parser *jwt.Parser
}

var _ Verifier = (*HMACVerifier)(nil)

func NewHMACVerifier(key []byte) (*HMACVerifier, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return &HMACVerifier{
		key: key,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		),
	}, nil
}

func (v *HMACVerifier) Valid(token string) bool {
	_, err := v.Claims(token)
	return err == nil
}

func (v *HMACVerifier) Claims(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues an HS256 token for claims. A positive ttl sets the expiry.
func (v *HMACVerifier) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerToken strips the Bearer prefix from an Authorization header value.
func BearerToken(header string) (string, *result.Error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", result.New(result.KindUnauthorized, MsgInvalidAuthHeader)
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", result.New(result.KindUnauthorized, MsgTokenInvalid)
	}
	return token, nil
}

// ResolveToken picks the Authorization value for a request that may also
// carry the token in its body. The header wins; a body token gets the Bearer
// prefix when it lacks one.
func ResolveToken(header, body string) (string, *result.Error) {
	token := header
	if token == "" {
		token = body
	}
	if token == "" {
		return "", result.New(result.KindUnauthorized, MsgTokenRequired)
	}
	if !strings.HasPrefix(token, bearerPrefix) {
		token = bearerPrefix + token
	}
	return token, nil
}

// Authenticate verifies the bearer token in header and returns its claims.
func Authenticate(v Verifier, header string) (*Claims, *result.Error) {
	token, rerr := BearerToken(header)
	if rerr != nil {
		return nil, rerr
	}
	if !v.Valid(token) {
		return nil, result.Wrap(result.KindUnauthorized, MsgTokenInvalid, ErrInvalidToken)
	}
	claims, err := v.Claims(token)
	if err != nil {
		return nil, result.Wrap(result.KindUnauthorized, MsgTokenInvalid, err)
	}
	return claims, nil
}
