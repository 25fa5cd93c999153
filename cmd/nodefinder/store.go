package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/nodefinder/blobstore"
	"github.com/hupe1980/nodefinder/blobstore/minio"
	"github.com/hupe1980/nodefinder/blobstore/s3"
)

// openStore builds the checkpoint mirror. It returns nil when no store is
// configured.
func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "local":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("local checkpoint store requires dir")
		}
		return blobstore.NewLocalStore(cfg.Dir), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 checkpoint store requires bucket")
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	case "minio":
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("minio checkpoint store requires endpoint and bucket")
		}
		client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		store := minio.NewStore(client, cfg.Bucket, cfg.Prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint store type %q", cfg.Type)
	}
}
