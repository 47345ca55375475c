package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is the router locals key the guard stores the
// authenticated user under
const DefaultContextKey = "user"

// DefaultAuthScheme is the expected Authorization header scheme
const DefaultAuthScheme = "Bearer"

// RouteGuard protects routes: it authenticates requests from bearer
// tokens and optionally restricts them by role. Failures short-circuit
// with the status/message contract handlers depend on: 401 for every
// authentication-stage failure, 403 only once an identity is known.
type RouteGuard struct {
	tokens       TokenService
	store        UserStore
	logger       Logger
	ContextKey   string
	AuthScheme   string
	ErrorHandler func(router.Context, error) error
}

// NewRouteGuard returns a guard wired to the given token service and
// user store
func NewRouteGuard(tokens TokenService, store UserStore) *RouteGuard {
	g := &RouteGuard{
		tokens:     tokens,
		store:      store,
		logger:     defLogger{},
		ContextKey: DefaultContextKey,
		AuthScheme: DefaultAuthScheme,
	}
	g.ErrorHandler = defaultGuardErrorHandler
	return g
}

// WithLogger sets the guard logger
func (g *RouteGuard) WithLogger(logger Logger) *RouteGuard {
	g.logger = logger
	return g
}

// WithErrorHandler overrides how guard rejections are written to the
// response
func (g *RouteGuard) WithErrorHandler(handler func(router.Context, error) error) *RouteGuard {
	g.ErrorHandler = handler
	return g
}

// Protected authenticates the request: extract the bearer token, verify
// it, load the user, and attach the sanitized identity to the request.
// The first failing step terminates the request; no partial identity is
// ever attached.
func (g *RouteGuard) Protected() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := g.extractToken(ctx)
			if err != nil {
				return g.ErrorHandler(ctx, err)
			}

			verification := g.tokens.Verify(raw)
			if !verification.Valid() {
				if verification.Expired() {
					return g.ErrorHandler(ctx, ErrTokenExpired)
				}
				return g.ErrorHandler(ctx, ErrTokenInvalid)
			}

			user, err := g.store.FindByID(ctx.Context(), verification.Claims.UserID())
			if err != nil {
				if goerrors.IsNotFound(err) {
					return g.ErrorHandler(ctx, ErrIdentityNotFound)
				}
				g.logger.Error("guard failed to load identity: %v", err)
				return g.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identity"))
			}

			ctx.Locals(g.ContextKey, user)
			ctx.SetContext(WithContext(ctx.Context(), user))

			return ctx.Next()
		}
	}
}

// Authorize restricts the route to the given roles. It must run after
// Protected; a missing identity is rejected as unauthorized rather than
// forbidden because it signals a wiring mistake, not a role mismatch.
// With no roles configured every authenticated identity passes.
func (g *RouteGuard) Authorize(roles ...UserRole) router.MiddlewareFunc {
	set := NewRoleSet(roles...)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			user := g.identityFromRequest(ctx)
			if user == nil {
				return g.ErrorHandler(ctx, ErrUnauthorized)
			}

			if !set.Contains(user.Role) {
				return g.ErrorHandler(ctx, ErrForbidden)
			}

			return ctx.Next()
		}
	}
}

func (g *RouteGuard) extractToken(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := strings.TrimSpace(g.AuthScheme)
	l := len(scheme)

	if len(header) > l+1 && strings.EqualFold(header[:l], scheme) {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", ErrNoToken
}

func (g *RouteGuard) identityFromRequest(ctx router.Context) *User {
	if raw := ctx.Locals(g.ContextKey); raw != nil {
		if user, ok := raw.(*User); ok {
			return user
		}
	}

	if user, ok := FromContext(ctx.Context()); ok {
		return user
	}

	return nil
}

// UserFromRouter extracts the authenticated user a guard attached to the
// router context
func UserFromRouter(ctx router.Context, key string) (*User, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// defaultGuardErrorHandler maps rich errors onto the JSON message
// contract. Internal detail never reaches the client.
func defaultGuardErrorHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "Server error").
			WithCode(goerrors.CodeInternal)
	}

	code := richErr.Code
	if code == 0 {
		code = router.StatusInternalServerError
	}

	message := richErr.Message
	if richErr.Category == goerrors.CategoryInternal {
		message = "Server error"
	}

	return ctx.JSON(code, map[string]string{"message": message})
}
