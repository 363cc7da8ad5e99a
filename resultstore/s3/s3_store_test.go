package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/dedupe/resultstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	client := awss3.NewFromConfig(cfg)

	// Unique prefix per test run so parallel CI runs don't collide.
	prefix := fmt.Sprintf("test-dedupe-%d", time.Now().UnixNano())
	store := New(client, bucket, func(o *Options) {
		o.Prefix = prefix
	})

	t.Run("Put and Get", func(t *testing.T) {
		key := resultstore.ResultKey("integration-run")
		payload := []byte(`[{"low":"r1","high":"r2"}]`)

		require.NoError(t, store.Put(ctx, key, payload))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx, "runs/")
		require.NoError(t, err)
		assert.Contains(t, keys, resultstore.ResultKey("integration-run"))
	})

	t.Run("Delete", func(t *testing.T) {
		key := resultstore.ResultKey("integration-run")
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, resultstore.ErrNotFound)
	})
}
