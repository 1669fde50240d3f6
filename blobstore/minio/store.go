package minio

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/schtree/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config describes how to reach a MinIO server.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
	Bucket    string
	Prefix    string
}

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a client from cfg with static credentials and wraps it in a Store.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	return NewStore(client, cfg.Bucket, cfg.Prefix), nil
}

// NewStore wraps an existing client. prefix is prepended to every blob name.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object and returns a blob that reads byte ranges on demand.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("minio: stat %s: %w", key, err)
	}

	return &blob{
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   info.Size,
	}, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	default:
		return false
	}
}

type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("minio: negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), b.size) - 1

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}

	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, fmt.Errorf("minio: get %s: %w", b.key, err)
	}
	defer func() { _ = obj.Close() }()

	n, err := io.ReadFull(obj, p[:end-off+1])
	if err != nil {
		return n, fmt.Errorf("minio: read %s: %w", b.key, err)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Download streams the whole object in one request.
func (b *blob) Download(ctx context.Context) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", b.key, err)
	}
	defer func() { _ = obj.Close() }()

	buf := make([]byte, b.size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, fmt.Errorf("minio: read %s: %w", b.key, err)
	}
	return buf, nil
}
