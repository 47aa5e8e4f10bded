// Package storage provides access to SelfDB buckets and files:
// bucket management, multipart uploads and streaming downloads.
package storage
