package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"catering-fees/models"
)

// DefaultFeeStoreKey is the key the fee document is stored under
const DefaultFeeStoreKey = "cateringFeesStore"

// FeeStoreRepository handles loading and saving the fee document
type FeeStoreRepository struct {
	kv  KeyValueStoreInterface
	key string
}

// Ensure FeeStoreRepository implements FeeStoreRepositoryInterface
var _ FeeStoreRepositoryInterface = (*FeeStoreRepository)(nil)

// NewFeeStoreRepository creates a new FeeStoreRepository. An empty key uses DefaultFeeStoreKey.
func NewFeeStoreRepository(kv KeyValueStoreInterface, key string) *FeeStoreRepository {
	if key == "" {
		key = DefaultFeeStoreKey
	}
	return &FeeStoreRepository{kv: kv, key: key}
}

// Load returns the stored document, migrated to the current version.
// Missing, unreadable or unknown-version data gives a default document.
func (r *FeeStoreRepository) Load(ctx context.Context) *models.FeeStore {
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, ErrKeyNotFound) {
		return models.NewDefaultFeeStore()
	}
	if err != nil {
		log.Printf("⚠️  Load: %v, using defaults", &StorageError{Op: "get", Key: r.key, Err: err})
		return models.NewDefaultFeeStore()
	}

	raw, version, err := peekDocument(data)
	if err != nil {
		log.Printf("⚠️  Load: %v, resetting to defaults", &StorageError{Op: "decode", Key: r.key, Err: err})
		return models.NewDefaultFeeStore()
	}

	switch {
	case version == models.CurrentStoreVersion:
	case version < 1 || version > models.CurrentStoreVersion:
		log.Printf("⚠️  Load: unsupported fee document version %d, resetting to defaults", version)
		return models.NewDefaultFeeStore()
	default:
		data, err = r.migrate(ctx, raw, version)
		if err != nil {
			log.Printf("⚠️  Load: %v, resetting to defaults", err)
			return models.NewDefaultFeeStore()
		}
	}

	store, err := decodeDocument(data)
	if err != nil {
		log.Printf("⚠️  Load: %v, resetting to defaults", &StorageError{Op: "decode", Key: r.key, Err: err})
		return models.NewDefaultFeeStore()
	}
	return store
}

// migrate upgrades an older document and writes the result back right away
func (r *FeeStoreRepository) migrate(ctx context.Context, raw map[string]any, version int) ([]byte, error) {
	if err := MigrateDocument(raw, models.CurrentStoreVersion); err != nil {
		return nil, &StorageError{Op: "migrate", Key: r.key, Err: err}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &StorageError{Op: "encode", Key: r.key, Err: err}
	}

	store, err := decodeDocument(data)
	if err != nil {
		return nil, &StorageError{Op: "decode", Key: r.key, Err: err}
	}
	if err := r.Save(ctx, store); err != nil {
		// the migrated document is still usable for this load
		log.Printf("❌ Load: failed to persist migrated fee document: %v", err)
	} else {
		log.Printf("💾 Migrated fee document %s from v%d to v%d", r.key, version, models.CurrentStoreVersion)
	}
	return data, nil
}

// Save writes the whole document at the current version
func (r *FeeStoreRepository) Save(ctx context.Context, store *models.FeeStore) error {
	data, err := json.Marshal(encodeDocument(store))
	if err != nil {
		return &StorageError{Op: "encode", Key: r.key, Err: err}
	}
	if err := r.kv.Put(ctx, r.key, data); err != nil {
		return &StorageError{Op: "put", Key: r.key, Err: err}
	}
	store.Version = models.CurrentStoreVersion
	return nil
}

// WithStore loads the document, applies mutator and saves the result.
// If mutator fails nothing is written and its error is returned as is.
func (r *FeeStoreRepository) WithStore(ctx context.Context, mutator func(store *models.FeeStore) error) (*models.FeeStore, error) {
	store := r.Load(ctx)
	if err := mutator(store); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to save fee document: %w", err)
	}
	return store, nil
}

// peekDocument decodes data generically and returns it with its version
func peekDocument(data []byte) (map[string]any, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, err
	}
	if raw == nil {
		return nil, 0, fmt.Errorf("document is null")
	}
	version, err := documentVersion(raw)
	if err != nil {
		return nil, 0, err
	}
	return raw, version, nil
}
