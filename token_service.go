package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenStatus is the outcome of verifying a token
type TokenStatus int

const (
	// TokenInvalid covers bad signatures, malformed tokens, and
	// unexpected signing algorithms
	TokenInvalid TokenStatus = iota
	// TokenExpired means the token was structurally valid but its expiry
	// has elapsed
	TokenExpired
	// TokenValid means signature and expiry both check out
	TokenValid
)

// Verification is the three-state result of Verify. Claims are populated
// only when Status is TokenValid; downstream guards depend on the three
// states to pick the correct user-facing error.
type Verification struct {
	Status TokenStatus
	Claims *TokenClaims
}

// Valid reports whether the token passed verification
func (v Verification) Valid() bool {
	return v.Status == TokenValid
}

// Expired reports whether the token failed only because it expired
func (v Verification) Expired() bool {
	return v.Status == TokenExpired
}

// TokenService issues and verifies signed, expiring identity tokens
type TokenService interface {
	Issue(userID string) (string, error)
	Verify(raw string) Verification
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	expiry     time.Duration
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, expiry time.Duration, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		expiry:     expiry,
		logger:     logger,
	}
}

// Issue encodes the user id plus issuance/expiry timestamps and signs
// the result with the configured secret
func (ts *TokenServiceImpl) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiry)),
		},
		UID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Verify parses and validates a token string. It never returns an error:
// every failure collapses into one of the two invalid states so callers
// cannot combine the outcome flags inconsistently.
func (ts *TokenServiceImpl) Verify(raw string) Verification {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Verification{Status: TokenExpired}
		}
		return Verification{Status: TokenInvalid}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return Verification{Status: TokenValid, Claims: claims}
	}

	ts.logger.Error("TokenService verify could not decode claims")
	return Verification{Status: TokenInvalid}
}
