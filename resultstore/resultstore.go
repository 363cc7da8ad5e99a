package resultstore

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/dedupe/codec"
	"github.com/hupe1980/dedupe/record"
)

// ErrNotFound is returned when no payload exists under the requested key.
var ErrNotFound = os.ErrNotExist

// Backend stores opaque result payloads by key. Keys are slash-separated
// paths. Implementations must be safe for concurrent use.
type Backend interface {
	// Put writes data under key, replacing any previous payload.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the payload stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the payload under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// BucketKey returns the key under which a single bucket's duplicate set is
// stored for the given run.
func BucketKey(runID string, bucket int) string {
	return fmt.Sprintf("runs/%s/buckets/%05d", runID, bucket)
}

// ResultKey returns the key under which the merged duplicate set of a run
// is stored.
func ResultKey(runID string) string {
	return fmt.Sprintf("runs/%s/result", runID)
}

// Options configures a Store.
type Options struct {
	// Codec encodes and decodes duplicate sets. Defaults to codec.Default.
	Codec codec.Codec
}

// DefaultOptions holds the default Store options.
var DefaultOptions = Options{
	Codec: codec.Default,
}

// Store persists duplicate sets through a Backend, encoding them with a
// pluggable codec. The zero value is not usable; use New.
type Store struct {
	backend Backend
	codec   codec.Codec
}

// New creates a Store on top of the given backend.
func New(backend Backend, optFns ...func(o *Options)) *Store {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		backend: backend,
		codec:   opts.Codec,
	}
}

// Put encodes the duplicate set and writes it under key.
func (s *Store) Put(ctx context.Context, key string, set record.PairSet) error {
	data, err := s.codec.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode duplicate set: %w", err)
	}

	return s.backend.Put(ctx, key, data)
}

// Get reads the payload under key and decodes it into a duplicate set.
// Returns ErrNotFound if no payload exists.
func (s *Store) Get(ctx context.Context, key string) (record.PairSet, error) {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var set record.PairSet
	if err := s.codec.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode duplicate set: %w", err)
	}

	return set, nil
}

// Delete removes the payload under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// List returns all keys with the given prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.List(ctx, prefix)
}
