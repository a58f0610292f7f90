// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage puts uploaded images into an S3-compatible bucket with
// the AWS SDK v2. Path-style addressing is used so CEPH-based providers
// such as Hetzner work without DNS per bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object keys embed a fresh UUID, so an object never changes once written.
const objectCacheControl = "public, max-age=31536000, immutable"

// Config locates the bucket. PublicURL, when set, is the CDN origin
// objects are served from; otherwise URLs point at the endpoint.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// Client stores media objects in a single public bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	base   string // URL prefix objects are served under
}

// New builds a Client. It does not contact the endpoint; see Check.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("storage: endpoint, credentials and bucket are required")
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = endpoint + "/" + cfg.Bucket
	}

	return &Client{
		s3: s3.New(s3.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			UsePathStyle: true,
		}),
		bucket: cfg.Bucket,
		base:   base,
	}, nil
}

// Check verifies the bucket exists and the credentials can reach it.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Upload writes a public-read object.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(objectCacheControl),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// FileURL returns the public URL of key.
func (c *Client) FileURL(key string) string {
	return c.base + "/" + strings.TrimLeft(key, "/")
}

// Bucket names the bucket objects are written to.
func (c *Client) Bucket() string {
	return c.bucket
}
