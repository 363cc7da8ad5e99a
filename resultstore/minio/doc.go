// Package minio provides a MinIO implementation of the
// resultstore.Backend interface for self-hosted and S3-compatible object
// stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil { ... }
//
//	store := resultstore.New(miniostore.New(client, "dedupe-results"))
package minio
