package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeSession       = "session"
	ScopeResetPassword = "reset_password"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 access tokens. Token validity lives
// entirely in the signature and expiry; nothing is stored server-side.
type Signer struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewSigner(secret []byte, defaultTTL time.Duration) *Signer {
	return &Signer{secret: secret, defaultTTL: defaultTTL}
}

// Issue signs a token for subject with the given scope. A zero ttl falls back
// to the configured default.
func (s *Signer) Issue(subject, scope string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	now := time.Now().UTC()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Parse verifies the signature and expiry and returns the claims. Expiry is
// reported as ErrTokenExpired; every other failure is ErrTokenInvalid.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// DefaultTTL is exposed so handlers can report expires_in.
func (s *Signer) DefaultTTL() time.Duration {
	return s.defaultTTL
}
