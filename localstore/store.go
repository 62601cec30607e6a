// Package localstore is the client-local key/value string store. Nothing in
// it is synchronised with the server.
package localstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/jcooky/go-din"
)

type (
	Store interface {
		// Get returns ok=false when the key is absent.
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key string, value string) error
		Delete(ctx context.Context, key string) error
		io.Closer
	}

	pebbleStore struct {
		db *pebble.DB
	}
)

var (
	_ Store = (*pebbleStore)(nil)
)

// Open opens the store under dir. An empty dir keeps everything in memory.
func Open(dir string) (Store, error) {
	opts := &pebble.Options{}
	path := filepath.Join(dir, "local")
	if dir == "" {
		opts.FS = vfs.NewMem()
		path = "local"
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "failed to create data dir %s", dir)
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open local store")
	}

	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) Get(_ context.Context, key string) (string, bool, error) {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrapf(err, "failed to get %s", key)
	}
	defer closer.Close()

	// value is only valid until closer.Close
	return string(value), true, nil
}

func (s *pebbleStore) Set(_ context.Context, key string, value string) error {
	return errors.Wrapf(s.db.Set([]byte(key), []byte(value), pebble.Sync), "failed to set %s", key)
}

func (s *pebbleStore) Delete(_ context.Context, key string) error {
	return errors.Wrapf(s.db.Delete([]byte(key), pebble.Sync), "failed to delete %s", key)
}

func (s *pebbleStore) Close() error {
	return errors.WithStack(s.db.Close())
}

func init() {
	din.RegisterT(func(c *din.Container) (Store, error) {
		conf, err := din.GetT[*config.ClientConfig](c)
		if err != nil {
			return nil, err
		}
		logger := din.MustGet[*mylog.Logger](c, mylog.Key)

		store, err := Open(conf.DataDir)
		if err != nil {
			return nil, err
		}

		go func() {
			<-c.Done()
			if err := store.Close(); err != nil {
				logger.Warn("failed to close local store", mylog.Err(err))
			}
		}()

		return store, nil
	})
}
