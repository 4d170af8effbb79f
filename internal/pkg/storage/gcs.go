package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
	bucket string
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Client provides an existing GCS client.
	Client *gcs.Client
	// CredentialsFile points at a service account key. Empty uses the
	// application default credentials.
	CredentialsFile string
}

// NewGCS constructs a GCS adapter bound to bucket.
func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCSAdapter, error) {
	client := opts.Client
	if client == nil {
		var clientOpts []option.ClientOption
		if opts.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
		}
		created, err := gcs.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
		client = created
	}
	return &GCSAdapter{client: client, bucket: bucket}, nil
}

// Put stores data in GCS and returns metadata.
func (g *GCSAdapter) Put(ctx context.Context, key string, data []byte, opts PutOptions) (ObjectInfo, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return ObjectInfo{}, err
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, err
	}
	return gcsAttrsToInfo(w.Attrs()), nil
}

// Get reads an object from GCS.
func (g *GCSAdapter) Get(ctx context.Context, key string) ([]byte, ObjectInfo, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	return data, ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: r.Attrs.ContentType,
		UpdatedAt:   r.Attrs.LastModified,
	}, nil
}

// Delete removes an object from GCS.
func (g *GCSAdapter) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// List lists objects under prefix.
func (g *GCSAdapter) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	objects := make([]ObjectInfo, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, gcsAttrsToInfo(attrs))
		if limit > 0 && len(objects) >= limit {
			break
		}
	}
	return objects, nil
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}

func gcsAttrsToInfo(attrs *gcs.ObjectAttrs) ObjectInfo {
	if attrs == nil {
		return ObjectInfo{}
	}
	return ObjectInfo{
		Key:         attrs.Name,
		Size:        attrs.Size,
		ETag:        attrs.Etag,
		ContentType: attrs.ContentType,
		Metadata:    attrs.Metadata,
		UpdatedAt:   attrs.Updated,
	}
}
