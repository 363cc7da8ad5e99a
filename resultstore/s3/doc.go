// Package s3 provides an Amazon S3 implementation of the
// resultstore.Backend interface, plus a DynamoDB-backed commit ledger
// for atomically publishing run results.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	backend := s3.New(awss3.NewFromConfig(cfg), "my-bucket",
//	    func(o *s3.Options) {
//	        o.Prefix = "dedupe/"
//	    },
//	)
//	store := resultstore.New(backend)
//
// # Features
//
//   - Managed uploads (multipart above the configured part size)
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// # Commit Ledger
//
// S3 writes alone cannot tell which of several runs is the current one.
// The Ledger keeps a versioned pointer in DynamoDB and advances it with
// conditional writes, so concurrent publishers never silently overwrite
// each other. See Ledger for the table schema.
package s3
