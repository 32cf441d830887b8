// Package gcs implements the storage gateway on a Google Cloud Storage
// bucket. Snapshot references are the object names; object metadata carries
// the display name.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"finsecure/internal/gateway"
)

const (
	objectPrefix    = "snapshots/"
	metadataNameKey = "snapshot-name"
	uploadTimeout   = 2 * time.Minute
)

type Store struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewStore opens a client for the given bucket. credentialsFile may be empty,
// in which case Application Default Credentials are used.
func NewStore(ctx context.Context, bucket, credentialsFile string, logger *slog.Logger) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket name is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Put(ctx context.Context, name string, data []byte) (gateway.StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	ref := objectPrefix + uuid.New().String()
	obj := s.client.Bucket(s.bucket).Object(ref)

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{metadataNameKey: name}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return gateway.StoredObject{}, fmt.Errorf("gcs: write object: %w", gateway.ErrUnavailable)
	}
	if err := w.Close(); err != nil {
		return gateway.StoredObject{}, fmt.Errorf("gcs: finalize upload: %w", gateway.ErrUnavailable)
	}

	s.logger.InfoContext(ctx, "Snapshot uploaded to GCS",
		"bucket", s.bucket,
		"ref", ref,
		"name", name,
		"size_bytes", len(data))

	return gateway.StoredObject{
		Ref:       ref,
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
		Status:    "stored",
	}, nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(ref).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gcs: snapshot %s: %w", ref, gateway.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs: open object %s: %w", ref, gateway.ErrUnavailable)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: read object %s: %w", ref, gateway.ErrUnavailable)
	}
	return data, nil
}

func (s *Store) List(ctx context.Context) ([]gateway.StoredObject, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: objectPrefix})

	var objects []gateway.StoredObject
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: list objects: %w", gateway.ErrUnavailable)
		}
		name := attrs.Metadata[metadataNameKey]
		if name == "" {
			name = attrs.Name
		}
		objects = append(objects, gateway.StoredObject{
			Ref:       attrs.Name,
			Name:      name,
			Size:      attrs.Size,
			CreatedAt: attrs.Created.UTC(),
			Status:    "stored",
		})
	}
	return objects, nil
}
