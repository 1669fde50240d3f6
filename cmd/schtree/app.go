package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/schtree"
	"github.com/hupe1980/schtree/blobstore"
	minioblob "github.com/hupe1980/schtree/blobstore/minio"
	s3blob "github.com/hupe1980/schtree/blobstore/s3"
	"github.com/hupe1980/schtree/dataset"
	"github.com/hupe1980/schtree/internal/config"
)

// app carries state shared by all subcommands after flag parsing.
type app struct {
	cfg     *config.Config
	logger  *schtree.Logger
	metrics *schtree.BasicMetricsCollector
}

func (a *app) init(cfg *config.Config, logOut io.Writer) error {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Log.JSON {
		h = slog.NewJSONHandler(logOut, opts)
	} else {
		h = slog.NewTextHandler(logOut, opts)
	}

	a.cfg = cfg
	a.logger = schtree.NewLogger(h)
	a.metrics = &schtree.BasicMetricsCollector{}
	return nil
}

// store returns the blob store for the configured source kind.
func (a *app) store(ctx context.Context) (blobstore.BlobStore, error) {
	src := a.cfg.Source
	switch src.Kind {
	case config.SourceLocal:
		return blobstore.NewLocalStore(src.Root), nil
	case config.SourceS3:
		opts := []s3blob.Option{s3blob.WithPrefix(src.Prefix)}
		if src.Region != "" {
			opts = append(opts, s3blob.WithRegion(src.Region))
		}
		if src.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(src.Endpoint, src.UsePathStyle))
		}
		return s3blob.New(ctx, src.Bucket, opts...)
	case config.SourceMinio:
		return minioblob.New(minioblob.Config{
			Endpoint:  src.Endpoint,
			AccessKey: src.AccessKey,
			SecretKey: src.SecretKey,
			Region:    src.Region,
			Secure:    src.Secure,
			Bucket:    src.Bucket,
			Prefix:    src.Prefix,
		})
	default:
		return nil, fmt.Errorf("source %q has no blob store", src.Kind)
	}
}

// load reads the dataset named by data from the configured source.
func (a *app) load(ctx context.Context, data string) (*dataset.Dataset, error) {
	if data == "" {
		return nil, fmt.Errorf("--data is required")
	}

	start := time.Now()
	var (
		ds  *dataset.Dataset
		err error
	)

	if a.cfg.Source.Kind == config.SourceSQLite {
		ds, err = dataset.LoadSQLite(ctx, data, a.cfg.Source.Table, a.cfg.Source.Column)
	} else {
		var store blobstore.BlobStore
		store, err = a.store(ctx)
		if err == nil {
			ds, err = dataset.Load(ctx, store, data, a.cfg.Source.Dims)
		}
	}
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", a.cfg.Source.Kind),
		slog.String("name", data),
		slog.Int("points", ds.Len()),
		slog.Int("dimension", ds.Dim),
		slog.Duration("duration", time.Since(start)),
	)
	return ds, nil
}

func (a *app) build(ds *dataset.Dataset) (*schtree.Tree[float32], error) {
	b, s := a.cfg.Build, a.cfg.Search

	opts := []schtree.Option{
		schtree.WithLeafSize(b.LeafSize),
		schtree.WithWorkers(s.Workers),
		schtree.WithLogger(a.logger),
		schtree.WithMetricsCollector(a.metrics),
	}
	if b.Copy {
		opts = append(opts, schtree.WithCopy(), schtree.WithMemoryLimit(b.MemoryLimit))
	}
	if s.QueriesPerSecond > 0 {
		opts = append(opts, schtree.WithQueryRateLimit(s.QueriesPerSecond, s.Burst))
	}

	return schtree.Build(ds.Points, opts...)
}
