package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/schtree/blobstore"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ manager.DownloadAPIClient = Client(nil)

// Options configures New.
type Options struct {
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	PartSize     int64
	Concurrency  int
}

// Option mutates Options.
type Option func(*Options)

// WithPrefix places every blob name under prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion overrides the region from the shared AWS configuration.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint.
func WithEndpoint(endpoint string, usePathStyle bool) Option {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = usePathStyle
	}
}

// WithDownload tunes whole-object downloads. Zero values keep the SDK defaults.
func WithDownload(partSize int64, concurrency int) Option {
	return func(o *Options) {
		o.PartSize = partSize
		o.Concurrency = concurrency
	}
}

// Store implements blobstore.BlobStore on top of an S3 bucket.
type Store struct {
	client     Client
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

// New loads the default AWS configuration and returns a Store for bucket.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	s := NewStore(client, bucket, opts.Prefix)
	s.downloader = newDownloader(client, opts.PartSize, opts.Concurrency)
	return s, nil
}

// NewStore wraps an existing client.
func NewStore(client Client, bucket, prefix string) *Store {
	return &Store{
		client:     client,
		downloader: newDownloader(client, 0, 0),
		bucket:     bucket,
		prefix:     prefix,
	}
}

func newDownloader(client Client, partSize int64, concurrency int) *manager.Downloader {
	return manager.NewDownloader(client, func(d *manager.Downloader) {
		if partSize > 0 {
			d.PartSize = partSize
		}
		if concurrency > 0 {
			d.Concurrency = concurrency
		}
	})
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open issues a HeadObject for name and returns a blob that reads through
// ranged GetObject calls.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, fmt.Errorf("s3: head %s: %w", key, err)
	}

	return &blob{
		client:     s.client,
		downloader: s.downloader,
		bucket:     s.bucket,
		key:        key,
		size:       aws.ToInt64(head.ContentLength),
	}, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

type blob struct {
	client     Client
	downloader *manager.Downloader
	bucket     string
	key        string
	size       int64
}

func (b *blob) Close() error { return nil }

func (b *blob) Size() int64 { return b.size }

// ReadAt fetches bytes [off, off+len(p)) with a single ranged GetObject.
func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("s3: negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1

	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, fmt.Errorf("s3: get %s: %w", b.key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("s3: read %s: %w", b.key, err)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Download fetches the whole object with concurrent part requests.
func (b *blob) Download(ctx context.Context) ([]byte, error) {
	if b.size == 0 {
		return []byte{}, nil
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, b.size))
	n, err := b.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: download %s: %w", b.key, err)
	}
	return buf.Bytes()[:n], nil
}
