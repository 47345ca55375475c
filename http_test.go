package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/gardinier/garden-auth"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type guardHarness struct {
	store    *auth.MemoryStore
	tokens   auth.TokenService
	guard    *auth.RouteGuard
	captured error
}

func newGuardHarness(t *testing.T) *guardHarness {
	t.Helper()

	h := &guardHarness{
		store:  seededStore(t),
		tokens: auth.NewTokenService(testSigningKey, time.Hour, nil),
	}
	h.guard = auth.NewRouteGuard(h.tokens, h.store).
		WithErrorHandler(func(ctx router.Context, err error) error {
			h.captured = err
			return err
		})
	return h
}

func noopHandler(ctx router.Context) error { return nil }

func TestProtectedMissingToken(t *testing.T) {
	h := newGuardHarness(t)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("")

	err := h.guard.Protected()(noopHandler)(ctx)
	assert.Error(t, err)
	assert.ErrorIs(t, h.captured, auth.ErrNoToken)
	assert.False(t, ctx.NextCalled)
}

func TestProtectedBareSchemeHeader(t *testing.T) {
	h := newGuardHarness(t)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer")

	_ = h.guard.Protected()(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrNoToken)
}

func TestProtectedInvalidToken(t *testing.T) {
	h := newGuardHarness(t)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer not-a-token")

	_ = h.guard.Protected()(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrTokenInvalid)
	assert.False(t, ctx.NextCalled)
}

func TestProtectedExpiredToken(t *testing.T) {
	h := newGuardHarness(t)

	expired := auth.NewTokenService(testSigningKey, -time.Minute, nil)
	token, err := expired.Issue("1")
	require.NoError(t, err)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)

	_ = h.guard.Protected()(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrTokenExpired)
}

func TestProtectedUnknownIdentity(t *testing.T) {
	h := newGuardHarness(t)

	token, err := h.tokens.Issue("99")
	require.NoError(t, err)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
	ctx.On("Context").Return(context.Background())

	_ = h.guard.Protected()(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrIdentityNotFound)
}

func TestProtectedAttachesIdentity(t *testing.T) {
	h := newGuardHarness(t)

	token, err := h.tokens.Issue("1")
	require.NoError(t, err)

	var attached *auth.User
	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("Bearer " + token)
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", auth.DefaultContextKey, mock.Anything).Run(func(args mock.Arguments) {
		attached, _ = args.Get(1).(*auth.User)
	}).Return(nil)
	ctx.On("SetContext", mock.Anything)

	err = h.guard.Protected()(noopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)

	require.NotNil(t, attached)
	assert.Equal(t, auth.SeedUsername, attached.Username)
	assert.Empty(t, attached.PasswordHash)
}

func TestProtectedAcceptsLowercaseScheme(t *testing.T) {
	h := newGuardHarness(t)

	token, err := h.tokens.Issue("1")
	require.NoError(t, err)

	ctx := new(MockContext)
	ctx.On("GetString", router.HeaderAuthorization, "").Return("bearer " + token)
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", auth.DefaultContextKey, mock.Anything).Return(nil)
	ctx.On("SetContext", mock.Anything)

	err = h.guard.Protected()(noopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestAuthorizeAllowsMatchingRole(t *testing.T) {
	h := newGuardHarness(t)

	admin := &auth.User{ID: "2", Username: "root", Role: auth.RoleAdmin}

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(admin)

	err := h.guard.Authorize(auth.RoleAdmin)(noopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	assert.NoError(t, h.captured)
}

func TestAuthorizeRejectsWrongRole(t *testing.T) {
	h := newGuardHarness(t)

	member := &auth.User{ID: "1", Username: auth.SeedUsername, Role: auth.RoleUser}

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(member)

	_ = h.guard.Authorize(auth.RoleAdmin)(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrForbidden)
	assert.False(t, ctx.NextCalled)
}

func TestAuthorizeWithoutIdentity(t *testing.T) {
	h := newGuardHarness(t)

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(nil)
	ctx.On("Context").Return(context.Background())

	_ = h.guard.Authorize(auth.RoleAdmin)(noopHandler)(ctx)
	assert.ErrorIs(t, h.captured, auth.ErrUnauthorized)
}

func TestAuthorizeEmptyRoleListAdmitsEveryone(t *testing.T) {
	h := newGuardHarness(t)

	member := &auth.User{ID: "1", Username: auth.SeedUsername, Role: auth.RoleUser}

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(member)

	err := h.guard.Authorize()(noopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestAuthorizeFallsBackToRequestContext(t *testing.T) {
	h := newGuardHarness(t)

	member := &auth.User{ID: "1", Username: auth.SeedUsername, Role: auth.RoleUser}
	reqCtx := auth.WithContext(context.Background(), member)

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(nil)
	ctx.On("Context").Return(reqCtx)

	err := h.guard.Authorize(auth.RoleUser)(noopHandler)(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
}

func TestUserFromRouter(t *testing.T) {
	member := &auth.User{ID: "1", Username: auth.SeedUsername, Role: auth.RoleUser}

	ctx := new(MockContext)
	ctx.On("Locals", auth.DefaultContextKey).Return(member)

	user, ok := auth.UserFromRouter(ctx, "")
	require.True(t, ok)
	assert.Equal(t, auth.SeedUsername, user.Username)

	empty := new(MockContext)
	empty.On("Locals", auth.DefaultContextKey).Return(nil)

	_, ok = auth.UserFromRouter(empty, "")
	assert.False(t, ok)
}
