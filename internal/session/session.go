// ABOUTME: Session-scoped key-value backend abstraction for the record store
// ABOUTME: Defines the Backend interface and the shared not-found sentinel
package session

import "errors"

// ErrKeyNotFound is returned by Backend.Get when a key is absent. Callers
// that treat missing collections as empty must check for it explicitly.
var ErrKeyNotFound = errors.New("session: key not found")

// Backend is the persistence surface the record store writes through. The
// charm KV client implements it for real sessions; Memory implements it for
// tests.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
