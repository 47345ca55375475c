// Package auth provides the authentication and profile layer for the
// garden tracker: password hashing, JWT issuance and verification, a
// user store with per-user profile and settings documents, and HTTP
// guards plus JSON controllers built on go-router.
//
// Tokens:
//   - TokenService signs HS256 tokens that carry the user id both as the
//     registered subject and as a legacy "id" claim. Verify never returns
//     an error; it reports a tagged Verification so callers distinguish
//     expired tokens from everything else that fails.
//
// Stores:
//   - UserStore is the abstract collection the guards and controllers
//     are written against. MemoryStore is the single-process default,
//     BunStore the SQL-backed alternative. Both seed the same well-known
//     bootstrap account and never let a password hash cross the store
//     boundary: credentials are checked through VerifyPassword only.
//
// Guards:
//   - RouteGuard.Protected authenticates bearer tokens and attaches the
//     sanitized identity to the request; Authorize restricts a route to
//     a set of roles. Failures short-circuit with the JSON message
//     contract clients depend on.
package auth
