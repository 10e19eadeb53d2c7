package filestoresvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// localStore keeps files on local disk under a root directory and serves them
// from a static base URL. Keys may contain slashes; they map to subdirectories.
type localStore struct {
	dir     string
	baseURL string
}

var _ core.FileStore = (*localStore)(nil)

func NewLocalStore(conf core.MediaConfig) (core.FileStore, error) {
	if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media dir")
	}
	return &localStore{
		dir:     conf.Dir,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
	}, nil
}

func (s *localStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media subdir")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return s.URL(key), nil
}

func (s *localStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "opening media file")
	}
	return f, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting media file")
	}
	return nil
}

// path resolves a key inside the root dir, rejecting traversal attempts.
func (s *localStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", errors.New("empty file key")
	}
	return filepath.Join(s.dir, clean), nil
}
