// Package metadata stores small client-local settings as key/value pairs
// in the local SQLite database.
package metadata

import "context"

// Repository is a flat key/value store. Get returns common.ErrorNotFound for
// a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
