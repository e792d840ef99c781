// Package objstore exposes the object-storage listing capability the
// recording resolver fans out to. Listing is separated from the waffle
// storage.Store (which handles uploads and presigned URLs) because
// correlation walks whole prefixes, which the upload abstraction does
// not expose.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is one stored item under a listed prefix.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Lister lists objects under a key prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]Object, error)
}

// S3Lister lists a single bucket via ListObjectsV2.
type S3Lister struct {
	client *s3.Client
	bucket string
}

// NewS3Lister builds a lister for the given region and bucket using the
// default AWS credential chain.
func NewS3Lister(ctx context.Context, region, bucket string) (*S3Lister, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Lister{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// List walks all pages under prefix.
func (l *S3Lister) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object

	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3 objects under %q: %w", prefix, err)
		}
		for _, item := range page.Contents {
			obj := Object{Key: aws.ToString(item.Key)}
			if item.Size != nil {
				obj.Size = *item.Size
			}
			if item.LastModified != nil {
				obj.LastModified = item.LastModified.UTC()
			}
			out = append(out, obj)
		}
	}
	return out, nil
}

// DirLister walks a local directory tree, reporting slash-separated
// keys relative to Root. It backs correlation when the app runs on
// local storage instead of S3.
type DirLister struct {
	Root string
}

// List walks Root and returns the files whose relative keys carry the
// prefix. A missing root is an empty listing, not an error.
func (d *DirLister) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		out = append(out, Object{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk local storage %q: %w", d.Root, err)
	}
	return out, nil
}

// Memory is an in-memory Lister for tests.
type Memory struct {
	Objects []Object
}

// List returns the stored objects whose keys carry the prefix.
func (m *Memory) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	for _, o := range m.Objects {
		if strings.HasPrefix(o.Key, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}
