// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "checkpoints/")
//
// Uploads go through the SDK upload manager, which switches to multipart
// uploads for large checkpoints. Reads use ranged GetObject requests.
package s3
