package repository

import (
	"context"
	"errors"
	"fmt"

	"catering-fees/models"
)

// ErrKeyNotFound is returned by a key-value store when nothing is stored under a key
var ErrKeyNotFound = errors.New("key not found")

// StorageError describes a failed read or write of the fee document
type StorageError struct {
	Op  string // "get", "put", "decode", "encode", "migrate"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("fee store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// KeyValueStoreInterface defines the contract for the blob storage holding fee documents.
// Put must replace the whole value in a single write.
type KeyValueStoreInterface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// FeeStoreRepositoryInterface defines the contract for fee document operations
type FeeStoreRepositoryInterface interface {
	// Load never fails: unusable stored data yields a default document
	Load(ctx context.Context) *models.FeeStore
	Save(ctx context.Context, store *models.FeeStore) error
	// WithStore loads, applies mutator and saves. A mutator error aborts without writing.
	WithStore(ctx context.Context, mutator func(store *models.FeeStore) error) (*models.FeeStore, error)
}
