package auth

import (
	"github.com/goliatone/go-errors"
)

// Guard errors carry the exact message and status code the HTTP contract
// exposes; clients key off these strings to decide between re-login and
// silent refresh.
var (
	// ErrNoToken is returned when the Authorization header is missing or
	// lacks the Bearer scheme
	ErrNoToken = errors.New("Access denied. No token provided", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("NO_TOKEN")

	// ErrTokenInvalid covers bad signatures, malformed tokens, and
	// unexpected signing algorithms
	ErrTokenInvalid = errors.New("Invalid token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_INVALID")

	// ErrTokenExpired is returned for structurally valid tokens whose
	// expiry has elapsed
	ErrTokenExpired = errors.New("Token expired, please login again", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	// ErrIdentityNotFound is returned when token claims reference an
	// unknown user
	ErrIdentityNotFound = errors.New("User not found", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("IDENTITY_NOT_FOUND")

	// ErrUnauthorized signals that a role guard ran without the auth
	// guard having attached an identity first. A programming-contract
	// failure, not a normal auth failure.
	ErrUnauthorized = errors.New("Unauthorized", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("UNAUTHORIZED")

	// ErrForbidden is returned when an authenticated identity lacks a
	// required role
	ErrForbidden = errors.New("Forbidden: Insufficient permissions", errors.CategoryAuthz).
			WithCode(errors.CodeForbidden).
			WithTextCode("FORBIDDEN")
)

var (
	// ErrDuplicateUsername is returned by CreateUser when the username is
	// already taken
	ErrDuplicateUsername = errors.New("User already exists", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode("DUPLICATE_USERNAME")

	// ErrUserNotFound is the store-level miss for lookups and updates
	ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)

	// ErrMismatchedHashAndPassword is returned when a candidate password
	// does not match the stored hash
	ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized).
					WithTextCode("PASSWORD_MISMATCH")

	// ErrNoEmptyString rejects empty passwords before hashing
	ErrNoEmptyString = errors.New("value must not be an empty string", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
)
