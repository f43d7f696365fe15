package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on authenticated requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is the scheme prefix expected in the Authorization header.
	BearerPrefix = "Bearer "

	// TokenCookieName is the cookie (and session key) holding the access token
	// for browser clients.
	TokenCookieName = "token"

	// SessionName is the name of the server-side session cookie.
	SessionName = "mediavault_session"

	// RequestIDHeaderName echoes the per-request id back to the caller.
	RequestIDHeaderName = "X-Request-ID"
)
