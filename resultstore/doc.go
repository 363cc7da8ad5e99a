// Package resultstore provides storage for persisted duplicate sets.
//
// Backend is the byte-level interface for reading and writing result
// payloads. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory, for single-process runs and tests
//   - LocalStore: Local filesystem with atomic writes
//   - CompressedStore: Transparent LZ4/ZSTD compression around any Backend
//   - s3.Store: Amazon S3 with multipart uploads and paginated listing
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Typed Access
//
// Store wraps a Backend with a codec and persists record.PairSet values
// directly:
//
//	store := resultstore.New(resultstore.NewMemoryStore())
//	_ = store.Put(ctx, resultstore.ResultKey(runID), pairs)
//	pairs, err := store.Get(ctx, resultstore.ResultKey(runID))
//
// # Keys
//
// Runs lay out their payloads under a common prefix:
//
//	runs/<run-id>/buckets/<bucket>   per-bucket duplicate sets
//	runs/<run-id>/result             the merged duplicate set
package resultstore
