package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
)

// Client wraps the MinIO SDK for the manuscripts and covers buckets.
type Client struct {
	client            *minio.Client
	manuscriptsBucket string
	coversBucket      string
	downloadExpiry    time.Duration
}

// New builds a MinIO client and ensures both configured buckets exist.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}

	raw, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	c := &Client{
		client:            raw,
		manuscriptsBucket: cfg.ManuscriptsBucket,
		coversBucket:      cfg.CoversBucket,
		downloadExpiry:    cfg.DownloadURLExpiry,
	}

	for _, bucket := range []string{cfg.ManuscriptsBucket, cfg.CoversBucket} {
		if err := c.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	if logg != nil {
		logg.Info(ctx, "object storage client initialized")
	}

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, bucket string) error {
	if strings.TrimSpace(bucket) == "" {
		return fmt.Errorf("bucket name is required")
	}
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %q: %w", bucket, err)
		}
	}
	return nil
}

// ManuscriptsBucket returns the configured manuscripts bucket name.
func (c *Client) ManuscriptsBucket() string {
	return c.manuscriptsBucket
}

// CoversBucket returns the configured covers bucket name.
func (c *Client) CoversBucket() string {
	return c.coversBucket
}

// Upload writes data under key in the given bucket and returns the object URL.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("object key is required")
	}

	_, err := c.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("uploading object %q: %w", key, err)
	}

	return c.ObjectURL(bucket, key), nil
}

// ObjectURL returns the canonical URL for an object.
func (c *Client) ObjectURL(bucket, key string) string {
	endpoint := c.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, bucket, key)
}

// PresignedDownloadURL returns a time-limited GET URL for the object.
func (c *Client) PresignedDownloadURL(ctx context.Context, bucket, key string) (string, error) {
	expiry := c.downloadExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	u, err := c.client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presigning object %q: %w", key, err)
	}
	return u.String(), nil
}

// Delete removes a single object from the bucket.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := c.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}
	return nil
}

// DeleteByPrefix removes every object under the prefix, e.g. an owner's folder.
func (c *Client) DeleteByPrefix(ctx context.Context, bucket, prefix string) error {
	objectsCh := c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return fmt.Errorf("listing objects under %q: %w", prefix, object.Err)
		}
		if err := c.client.RemoveObject(ctx, bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("deleting object %q: %w", object.Key, err)
		}
	}

	return nil
}
