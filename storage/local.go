// Package storage keeps uploaded submission files on the local filesystem.
package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"regportal-go/submission"
)

// Local stores each upload under root/YYYY/MM/<uuid><ext>.
type Local struct {
	root    string
	maxSize int64
}

// NewLocal creates root if needed. maxSize <= 0 disables the size cap.
func NewLocal(root string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{root: root, maxSize: maxSize}, nil
}

var _ submission.FileStore = (*Local)(nil)

// ErrTooLarge is returned by Put when the content exceeds the size cap.
var ErrTooLarge = errors.New("file exceeds maximum size")

func (l *Local) Put(ctx context.Context, name string, r io.Reader) (submission.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return submission.StoredObject{}, err
	}

	now := time.Now().UTC()
	rel := filepath.Join(now.Format("2006"), now.Format("01"), uuid.New().String()+strings.ToLower(filepath.Ext(name)))
	full := filepath.Join(l.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return submission.StoredObject{}, err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return submission.StoredObject{}, err
	}

	hash, err := blake2b.New256(nil)
	if err != nil {
		f.Close()
		os.Remove(full)
		return submission.StoredObject{}, err
	}

	src := r
	if l.maxSize > 0 {
		src = io.LimitReader(r, l.maxSize+1)
	}
	n, err := io.Copy(io.MultiWriter(f, hash), src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && l.maxSize > 0 && n > l.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(full)
		return submission.StoredObject{}, err
	}

	return submission.StoredObject{
		Path:     filepath.ToSlash(rel),
		Size:     n,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

func (l *Local) Open(path string) (io.ReadCloser, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes the stored bytes. A missing file is not an error.
func (l *Local) Remove(path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *Local) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return filepath.Join(l.root, clean), nil
}
