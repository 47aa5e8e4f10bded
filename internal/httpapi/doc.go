// Package httpapi implements the low-level REST transport shared by the
// auth, database and storage clients: request construction, JSON
// encoding, error mapping and retry with exponential backoff.
package httpapi
