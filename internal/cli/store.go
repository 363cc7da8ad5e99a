package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dedupe/codec"
	"github.com/hupe1980/dedupe/resultstore"
	miniostore "github.com/hupe1980/dedupe/resultstore/minio"
	s3store "github.com/hupe1980/dedupe/resultstore/s3"
)

// ValidStores defines the allowed result store backends.
var ValidStores = []string{"memory", "dir", "s3", "minio"}

// StoreOptions holds the result store flags for the run command.
type StoreOptions struct {
	Store       string
	Dir         string
	S3Bucket    string
	S3Prefix    string
	LedgerTable string
	LedgerScope string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioSecure    bool

	Compression string
	Codec       string
}

// registerStoreFlags adds the result store flags to cmd.
func registerStoreFlags(cmd *cobra.Command, opts *StoreOptions) {
	cmd.Flags().StringVar(&opts.Store, "store", "", "result store backend (memory|dir|s3|minio); empty disables persistence")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "directory for the dir store")
	cmd.Flags().StringVar(&opts.S3Bucket, "s3-bucket", "", "bucket for the s3 store")
	cmd.Flags().StringVar(&opts.S3Prefix, "s3-prefix", "", "key prefix for the s3 store")
	cmd.Flags().StringVar(&opts.LedgerTable, "ledger-table", "", "DynamoDB table for committing s3 results")
	cmd.Flags().StringVar(&opts.LedgerScope, "ledger-scope", "", "ledger scope (default: dataset file name)")
	cmd.Flags().StringVar(&opts.MinioEndpoint, "minio-endpoint", "", "endpoint for the minio store")
	cmd.Flags().StringVar(&opts.MinioAccessKey, "minio-access-key", "", "access key for the minio store")
	cmd.Flags().StringVar(&opts.MinioSecretKey, "minio-secret-key", "", "secret key for the minio store")
	cmd.Flags().StringVar(&opts.MinioBucket, "minio-bucket", "", "bucket for the minio store")
	cmd.Flags().BoolVar(&opts.MinioSecure, "minio-secure", false, "use TLS for the minio store")
	cmd.Flags().StringVar(&opts.Compression, "compression", "none", "payload compression (none|lz4|zstd)")
	cmd.Flags().StringVar(&opts.Codec, "codec", codec.Default.Name(), "payload codec (json|go-json)")
}

// buildStore constructs the result store described by opts, or nil when no
// backend was requested. With an s3 backend and a configured ledger table it
// also returns a commit ledger for publishing the run.
func buildStore(ctx context.Context, opts *StoreOptions) (*resultstore.Store, *s3store.Ledger, error) {
	var (
		backend resultstore.Backend
		ledger  *s3store.Ledger
	)

	switch opts.Store {
	case "":
		if opts.LedgerTable != "" {
			return nil, nil, errors.New("--ledger-table requires --store s3")
		}
		return nil, nil, nil
	case "memory":
		backend = resultstore.NewMemoryStore()
	case "dir":
		if opts.Dir == "" {
			return nil, nil, errors.New("--dir is required with --store dir")
		}
		backend = resultstore.NewLocalStore(opts.Dir)
	case "s3":
		if opts.S3Bucket == "" {
			return nil, nil, errors.New("--s3-bucket is required with --store s3")
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		backend = s3store.New(awss3.NewFromConfig(cfg), opts.S3Bucket, func(o *s3store.Options) {
			o.Prefix = opts.S3Prefix
		})
		if opts.LedgerTable != "" {
			ledger = s3store.NewLedger(dynamodb.NewFromConfig(cfg), opts.LedgerTable, opts.LedgerScope)
		}
	case "minio":
		if opts.MinioEndpoint == "" || opts.MinioBucket == "" {
			return nil, nil, errors.New("--minio-endpoint and --minio-bucket are required with --store minio")
		}
		client, err := minio.New(opts.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(opts.MinioAccessKey, opts.MinioSecretKey, ""),
			Secure: opts.MinioSecure,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		backend = miniostore.New(client, opts.MinioBucket)
	default:
		return nil, nil, fmt.Errorf("unknown store %q: must be one of %v", opts.Store, ValidStores)
	}

	if opts.LedgerTable != "" && ledger == nil {
		return nil, nil, errors.New("--ledger-table requires --store s3")
	}

	ctype, err := resultstore.ParseCompressionType(opts.Compression)
	if err != nil {
		return nil, nil, err
	}
	if ctype != resultstore.CompressionNone {
		backend = resultstore.NewCompressedStore(backend, ctype)
	}

	c, ok := codec.ByName(opts.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("unknown codec %q", opts.Codec)
	}

	return resultstore.New(backend, func(o *resultstore.Options) {
		o.Codec = c
	}), ledger, nil
}
