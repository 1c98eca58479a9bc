// Package objectstore provisions S3 buckets for database descriptors.
package objectstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// appVersion is stamped onto every created bucket's identifying tag set.
const appVersion = "0.1.0"

// Provisioner creates and updates S3 buckets idempotently.
type Provisioner struct {
	client *s3.Client
}

// New wraps an existing S3 client.
func New(client *s3.Client) *Provisioner {
	return &Provisioner{client: client}
}

// BucketExists reports whether name exists. A NotFound signal from the
// backend maps to (false, nil); any other error propagates.
func (p *Provisioner) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return false, nil
	}
	return false, fmt.Errorf("objectstore: checking bucket %q: %w", name, err)
}

// CreateBucket creates name and applies the identifying tag set. An
// "already owned by you" conflict is treated as a non-error success.
func (p *Provisioner) CreateBucket(ctx context.Context, name string) error {
	_, err := p.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if !errors.As(err, &owned) {
			return fmt.Errorf("objectstore: creating bucket %q: %w", name, err)
		}
	}

	_, err = p.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(name),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{
				{Key: aws.String("provisioner"), Value: aws.String("basin")},
				{Key: aws.String("subprovisioner"), Value: aws.String("s3")},
				{Key: aws.String("version"), Value: aws.String(appVersion)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("objectstore: tagging bucket %q: %w", name, err)
	}
	return nil
}

// UpdateBucket is reserved for future drift-correction; it is a no-op
// today, matching the upstream provisioner's contract.
func (p *Provisioner) UpdateBucket(ctx context.Context, name string) error {
	return nil
}
