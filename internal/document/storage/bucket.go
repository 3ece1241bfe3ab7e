// Package storage stages document bodies in a gocloud.dev blob bucket.
//
// The bucket is opened from a URL, so the same code runs against mem://,
// file:///path, s3://, gs:// or azblob:// buckets.
package storage

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	documentDomain "github.com/allisson/docrelay/internal/document/domain"

	// Register bucket drivers
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Bucket implements the document blob store on top of *blob.Bucket.
type Bucket struct {
	bucket *blob.Bucket
}

// OpenBucket opens the bucket at bucketURL.
func OpenBucket(ctx context.Context, bucketURL string) (*Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob bucket: %w", err)
	}
	return NewBucket(bucket), nil
}

// NewBucket wraps an already opened bucket.
func NewBucket(bucket *blob.Bucket) *Bucket {
	return &Bucket{bucket: bucket}
}

// Put streams r into key and returns the number of bytes written. A failed copy
// aborts the write so no partial object becomes visible.
func (b *Bucket) Put(
	ctx context.Context,
	key string,
	r io.Reader,
	opts documentDomain.PutOptions,
) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := b.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType:        opts.ContentType,
		ContentDisposition: opts.ContentDisposition,
		Metadata:           opts.Metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to open blob writer: %w", err)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		cancel()
		_ = w.Close()
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}

	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to commit blob: %w", err)
	}
	return n, nil
}

// Get returns the attributes of key, or ErrBlobNotFound.
func (b *Bucket) Get(ctx context.Context, key string) (*documentDomain.BlobObject, error) {
	attrs, err := b.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, translate(err, "failed to read blob attributes")
	}

	return &documentDomain.BlobObject{
		Key:         key,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		ModTime:     attrs.ModTime,
		Metadata:    attrs.Metadata,
	}, nil
}

// Open returns a reader over the body of key, or ErrBlobNotFound.
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, translate(err, "failed to open blob")
	}
	return r, nil
}

// Delete removes key. A missing key returns ErrBlobNotFound.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.bucket.Delete(ctx, key); err != nil {
		return translate(err, "failed to delete blob")
	}
	return nil
}

// Close releases the bucket.
func (b *Bucket) Close() error {
	return b.bucket.Close()
}

func translate(err error, message string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return documentDomain.ErrBlobNotFound
	}
	return fmt.Errorf("%s: %w", message, err)
}
