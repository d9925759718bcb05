package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired marks a structurally valid credential past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid marks a malformed, unsigned or tampered credential.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the identity carried by a credential.
type Claims struct {
	RoleID int    `json:"rol"`
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 credentials with a fixed TTL.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a Signer. The secret is required; TTL defaults to one hour.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the signer's clock. Intended for tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Issue signs a credential for the given account.
func (s *Signer) Issue(accountID int64, roleID int, name, email string) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		RoleID: roleID,
		Name:   name,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a credential and returns its claims. Expired credentials are
// reported distinctly from malformed ones so the caller can log the reason;
// both map to the same client-facing outcome.
func (s *Signer) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// AccountID parses the numeric subject of the claims.
func (c Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}
