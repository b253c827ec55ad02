// Package storage writes encoded output files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/olafgeibig/foto2pdf/core"
	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// CollisionPolicy decides what happens when an output file already exists.
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file atomically; the last
	// writer wins.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionError fails the item with ErrOutputExists.
	CollisionError CollisionPolicy = "error"
	// CollisionRename writes name_1.ext, name_2.ext, ... instead.
	CollisionRename CollisionPolicy = "rename"
)

// maxRenameAttempts bounds the suffix search of CollisionRename.
const maxRenameAttempts = 10000

// ParseCollisionPolicy validates a policy name. "" selects overwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(s)); p {
	case "":
		return CollisionOverwrite, nil
	case CollisionOverwrite, CollisionError, CollisionRename:
		return p, nil
	}
	return "", apperrors.Newf(apperrors.CategoryInvalidParameter, "storage.policy",
		"unknown collision policy %q (want overwrite, error or rename)", s)
}

// Local stores output files on the local filesystem.
type Local struct {
	permissions os.FileMode
	policy      CollisionPolicy
}

// NewLocal creates a Local storage adapter.
func NewLocal(perm os.FileMode, policy CollisionPolicy) (*Local, error) {
	if perm == 0 {
		perm = 0o644
	}
	p, err := ParseCollisionPolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Local{permissions: perm, policy: p}, nil
}

// Prepare creates dir and its parents. It is idempotent and safe to call
// from concurrent goroutines.
func (l *Local) Prepare(dir string) error {
	if dir == "" {
		return errors.New("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s: %w", dir, apperrors.ErrNotADirectory)
	}
	return nil
}

// Put writes data to dir/name according to the collision policy and returns
// the path that was written.
func (l *Local) Put(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CategoryCanceled, "local.put", err)
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", apperrors.Newf(apperrors.CategoryInvalidParameter, "local.put", "invalid output name %q", name)
	}

	// The directory may have been removed since Prepare; MkdirAll tolerates
	// concurrent creation.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.WithPath(apperrors.CategoryIOFailure, "local.put.mkdir", dir, err)
	}

	path := filepath.Join(dir, name)
	switch l.policy {
	case CollisionError:
		if err := l.writeExclusive(path, data); err != nil {
			if errors.Is(err, fs.ErrExist) {
				err = apperrors.ErrOutputExists
			}
			return "", apperrors.WithPath(apperrors.CategoryIOFailure, "local.put", path, err)
		}
		return path, nil

	case CollisionRename:
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for i := 0; i < maxRenameAttempts; i++ {
			candidate := path
			if i > 0 {
				candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
			}
			err := l.writeExclusive(candidate, data)
			if err == nil {
				return candidate, nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return "", apperrors.WithPath(apperrors.CategoryIOFailure, "local.put", candidate, err)
			}
		}
		return "", apperrors.WithPath(apperrors.CategoryIOFailure, "local.put", path, apperrors.ErrOutputExists)

	default:
		if err := l.writeAtomic(dir, path, data); err != nil {
			return "", apperrors.WithPath(apperrors.CategoryIOFailure, "local.put", path, err)
		}
		return path, nil
	}
}

// writeExclusive creates path, failing with fs.ErrExist if it is already there.
func (l *Local) writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, l.permissions)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// writeAtomic writes to a temporary file in dir and renames it over path, so
// concurrent writers of the same name never interleave their bytes.
func (l *Local) writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, l.permissions); err != nil {
		cleanup()
		return err
	}
	if err := replaceFile(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

var _ core.OutputStore = (*Local)(nil)
