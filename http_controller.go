package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Name     string `form:"name" json:"name"`
}

// HasRequiredFields reports whether every mandatory field is present
func (r RegisterRequest) HasRequiredFields() bool {
	return r.Username != "" && r.Email != "" && r.Password != ""
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(3, 0),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// HasRequiredFields reports whether every mandatory field is present
func (r LoginRequest) HasRequiredFields() bool {
	return r.Username != "" && r.Password != ""
}

// AuthController serves the registration and login routes
type AuthController struct {
	Logger Logger
	Store  UserStore
	Tokens TokenService
	Guard  *RouteGuard
}

// NewAuthController wires the auth routes' collaborators
func NewAuthController(store UserStore, tokens TokenService, guard *RouteGuard) *AuthController {
	return &AuthController{
		Logger: defLogger{},
		Store:  store,
		Tokens: tokens,
		Guard:  guard,
	}
}

// RegisterAuthRoutes mounts the authentication endpoints. Extra
// middleware (a rate limiter, typically) applies to every route.
func RegisterAuthRoutes[T any](app router.Router[T], c *AuthController, mw ...router.MiddlewareFunc) {
	app.Post("/api/auth/register", c.Register, mw...).SetName("auth.register")
	app.Post("/api/auth/login", c.Login, mw...).SetName("auth.login")
	app.Post("/api/auth/forgot-password", c.ForgotPassword, mw...).SetName("auth.forgot-password")

	app.Get("/api/auth/user", c.CurrentUser, append(mw, c.Guard.Protected())...).
		SetName("auth.user")
}

// Register creates an account and returns it with a fresh token
func (c *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)
	if err := ctx.Bind(payload); err != nil {
		return badRequest(ctx, "Please enter all fields")
	}

	if !payload.HasRequiredFields() {
		return badRequest(ctx, "Please enter all fields")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, err.Error())
	}

	user, err := c.Store.CreateUser(ctx.Context(), CreateUser{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Name:     payload.Name,
	})
	if err != nil {
		if goerrors.Is(err, ErrDuplicateUsername) {
			return badRequest(ctx, "User already exists")
		}
		c.Logger.Error("register create user error: %v", err)
		return serverError(ctx)
	}

	token, err := c.Tokens.Issue(user.ID)
	if err != nil {
		c.Logger.Error("register token issue error: %v", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

// Login authenticates credentials and returns the user with a token.
// Unknown usernames and wrong passwords are indistinguishable to the
// client.
func (c *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return badRequest(ctx, "Please enter all fields")
	}

	if !payload.HasRequiredFields() {
		return badRequest(ctx, "Please enter all fields")
	}

	user, err := c.Store.FindByUsername(ctx.Context(), payload.Username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return badRequest(ctx, "Invalid credentials")
		}
		c.Logger.Error("login lookup error: %v", err)
		return serverError(ctx)
	}

	if err := c.Store.VerifyPassword(ctx.Context(), user, payload.Password); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return badRequest(ctx, "Invalid credentials")
		}
		c.Logger.Error("login verify error: %v", err)
		return serverError(ctx)
	}

	token, err := c.Tokens.Issue(user.ID)
	if err != nil {
		c.Logger.Error("login token issue error: %v", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// ForgotPassword acknowledges the request without sending anything;
// email delivery is out of scope for this service.
func (c *AuthController) ForgotPassword(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Password reset email sent",
	})
}

// CurrentUser returns the identity the auth guard attached
func (c *AuthController) CurrentUser(ctx router.Context) error {
	user, ok := UserFromRouter(ctx, c.Guard.ContextKey)
	if !ok {
		return c.Guard.ErrorHandler(ctx, ErrUnauthorized)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": user,
	})
}

// UsersController serves the per-user profile and settings routes
type UsersController struct {
	Logger Logger
	Store  UserStore
	Guard  *RouteGuard
}

// NewUsersController wires the user routes' collaborators
func NewUsersController(store UserStore, guard *RouteGuard) *UsersController {
	return &UsersController{
		Logger: defLogger{},
		Store:  store,
		Guard:  guard,
	}
}

// RegisterUserRoutes mounts the profile/settings endpoints behind the
// auth guard; the listing route additionally requires the admin role
func RegisterUserRoutes[T any](app router.Router[T], c *UsersController, mw ...router.MiddlewareFunc) {
	protected := append(mw, c.Guard.Protected())

	app.Get("/api/users/profile", c.ProfileShow, protected...).SetName("users.profile.get")
	app.Put("/api/users/profile", c.ProfileUpdate, protected...).SetName("users.profile.put")
	app.Put("/api/users/settings", c.SettingsUpdate, protected...).SetName("users.settings.put")
	app.Put("/api/users/password", c.PasswordChange, protected...).SetName("users.password.put")

	app.Get("/api/users/all", c.ListAll, append(protected, c.Guard.Authorize(RoleAdmin))...).
		SetName("users.all")
}

// ProfileShow returns the authenticated user's profile document
func (c *UsersController) ProfileShow(ctx router.Context) error {
	user, ok := UserFromRouter(ctx, c.Guard.ContextKey)
	if !ok {
		return c.Guard.ErrorHandler(ctx, ErrUnauthorized)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"profile": user.Profile,
	})
}

// ProfileUpdate deep-merges the submitted profile fields
func (c *UsersController) ProfileUpdate(ctx router.Context) error {
	user, ok := UserFromRouter(ctx, c.Guard.ContextKey)
	if !ok {
		return c.Guard.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(ProfileUpdate)
	if err := ctx.Bind(payload); err != nil {
		return badRequest(ctx, "Invalid profile payload")
	}

	updated, err := c.Store.UpdateUser(ctx.Context(), user.ID, UserUpdate{Profile: payload})
	if err != nil {
		c.Logger.Error("profile update error: %v", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"profile": updated.Profile,
	})
}

// SettingsUpdate deep-merges the submitted settings fields
func (c *UsersController) SettingsUpdate(ctx router.Context) error {
	user, ok := UserFromRouter(ctx, c.Guard.ContextKey)
	if !ok {
		return c.Guard.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(SettingsUpdate)
	if err := ctx.Bind(payload); err != nil {
		return badRequest(ctx, "Invalid settings payload")
	}

	updated, err := c.Store.UpdateUser(ctx.Context(), user.ID, UserUpdate{Settings: payload})
	if err != nil {
		c.Logger.Error("settings update error: %v", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"settings": updated.Settings,
	})
}

// PasswordChange acknowledges the request without touching storage.
// This mirrors the deployed contract: clients expect the success message
// even though rotation is not implemented for the seeded store.
// TODO: verify the current password and persist a new hash once the
// persistent store becomes the default backend.
func (c *UsersController) PasswordChange(ctx router.Context) error {
	if _, ok := UserFromRouter(ctx, c.Guard.ContextKey); !ok {
		return c.Guard.ErrorHandler(ctx, ErrUnauthorized)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

// ListAll returns every account, sanitized
func (c *UsersController) ListAll(ctx router.Context) error {
	users, err := c.Store.GetAllUsers(ctx.Context())
	if err != nil {
		c.Logger.Error("user listing error: %v", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"users": users,
	})
}

func badRequest(ctx router.Context, message string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]string{
		"message": message,
	})
}

func serverError(ctx router.Context) error {
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"message": "Server error",
	})
}
