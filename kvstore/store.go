// Package kvstore provides the key-value string store the client keeps its
// session in. It plays the role a browser's localStorage plays for a web
// frontend: flat string keys, string values, no expiry.
package kvstore

import "context"

// Store is a flat string key-value store. Get reports whether the key was
// present. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
