// Package database provides CRUD access to SelfDB tables over REST.
package database
