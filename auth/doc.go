// Package auth manages SelfDB user sessions: registration, login,
// token refresh and the auth headers used by the REST and realtime
// transports.
package auth
