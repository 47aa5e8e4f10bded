// Package eventstore persists received realtime events to Postgres in
// batches. It backs cmd/recorder and is not part of the SDK surface.
package eventstore
