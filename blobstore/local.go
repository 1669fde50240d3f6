package blobstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/hupe1980/schtree/internal/mmap"
)

// LocalStore serves blobs from a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at root. An empty root resolves
// names against the working directory, and absolute names are then accepted as-is.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open memory-maps the named file.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Decoders scan front to back.
	_ = m.Advise(mmap.AccessSequential)

	return &localBlob{m: m}, nil
}

func (s *LocalStore) resolve(name string) (string, error) {
	if s.root == "" {
		return filepath.Clean(name), nil
	}
	path := filepath.Join(s.root, name)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return path, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return b.m.Size()
}

func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	if data == nil {
		return []byte{}, nil
	}
	return data, nil
}
