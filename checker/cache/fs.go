package cache

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// FSStore keeps one JSON document per module under a base URL (any afs supported scheme)
type FSStore struct {
	fs      afs.Service
	baseURL string
}

// NewFSStore creates a file system store
func NewFSStore(baseURL string) *FSStore {
	return &FSStore{fs: afs.New(), baseURL: baseURL}
}

func (s *FSStore) entryURL(module string) string {
	return url.Join(s.baseURL, module+".json")
}

// Get returns the entry of a module, nil when absent
func (s *FSStore) Get(ctx context.Context, module string) (*Entry, error) {
	URL := s.entryURL(module)
	ok, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check cache entry %s", URL)
	}
	if !ok {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cache entry %s", URL)
	}
	return decode(module, data)
}

// Put stores an entry
func (s *FSStore) Put(ctx context.Context, entry *Entry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	URL := s.entryURL(entry.Module)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to write cache entry %s", URL)
	}
	return nil
}

// Close implements Store
func (s *FSStore) Close() error {
	return nil
}
