package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 5 * time.Minute

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client        *gcs.Client
	bucket        string
	objectPrefix  string
	publicBaseURL string
}

// NewGCSStorage creates a new GCSStorage instance. When credentialsFile
// is empty, application default credentials are used. publicBaseURL, when
// set, is the externally reachable prefix Save returns for uploaded
// objects (for example a CDN or bucket website host).
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, credentialsFile, publicBaseURL string) (*GCSStorage, error) {
	var client *gcs.Client
	var err error

	if credentialsFile != "" {
		client, err = gcs.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = gcs.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:        client,
		bucket:        bucketName,
		objectPrefix:  objectPrefix,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (s *GCSStorage) objectName(name string) string {
	name = strings.TrimPrefix(name, "/")
	if s.objectPrefix != "" {
		return s.objectPrefix + "/" + name
	}
	return name
}

// Save uploads the reader's contents to the bucket and returns the
// public URL when one is configured, otherwise the object name.
func (s *GCSStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	objectName := s.objectName(name)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		return "", fmt.Errorf("failed to copy object to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return s.publicURL(objectName), nil
}

// publicURL maps an object name to the address Save reports back. With
// no public base configured the bare object name is returned.
func (s *GCSStorage) publicURL(objectName string) string {
	if s.publicBaseURL == "" {
		return objectName
	}
	return s.publicBaseURL + "/" + objectName
}

// Open returns a reader for a stored object.
func (s *GCSStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(s.objectName(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open GCS object %s: %w", name, err)
	}
	return rc, nil
}

// Exists checks if an object exists in the bucket.
func (s *GCSStorage) Exists(ctx context.Context, name string) bool {
	_, err := s.client.Bucket(s.bucket).Object(s.objectName(name)).Attrs(ctx)
	return err == nil
}

// List returns the names of stored objects with the given prefix.
func (s *GCSStorage) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{
		Prefix: s.objectName(prefix),
	})

	var results []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}

		// objects ending with / are directory markers
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		name := attrs.Name
		if s.objectPrefix != "" {
			name = strings.TrimPrefix(name, s.objectPrefix+"/")
		}
		results = append(results, name)
	}

	return results, nil
}

// Delete removes an object from the bucket.
func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	err := s.client.Bucket(s.bucket).Object(s.objectName(name)).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete GCS object %s: %w", name, err)
	}
	return nil
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
