package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

// foreverStamp marks entries that never expire.
const foreverStamp int64 = 9999999999

// FileStore keeps each entry in its own file named after the sha1 of the key.
// The first ten bytes of a file hold the expiry as a unix timestamp.
type FileStore struct {
	fs  afero.Fs
	dir string
}

func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) path(key string) string {
	sum := sha1.Sum([]byte(key))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, h[0:2], h[2:4], h)
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)
	raw, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(raw) < 10 {
		return nil, false, nil
	}

	expires, err := strconv.ParseInt(string(raw[:10]), 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache file %s: %w", path, err)
	}
	if expires != foreverStamp && time.Now().Unix() >= expires {
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, false, err
		}
		return nil, false, nil
	}
	return raw[10:], true, nil
}

func (s *FileStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	path := s.path(key)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	expires := foreverStamp
	if ttl > Forever {
		expires = time.Now().Add(ttl).Unix()
	}
	content := append([]byte(fmt.Sprintf("%010d", expires)), value...)
	return afero.WriteFile(s.fs, path, content, 0o644)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
