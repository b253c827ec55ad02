// Package scanner finds image files below an input directory.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

// Extensions lists the file extensions picked up by FindImageFiles. Matching
// is case-insensitive.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// FindImageFiles walks root recursively and returns every file whose
// extension is in Extensions, sorted by path. Hidden files are included;
// unreadable subdirectories are skipped.
func FindImageFiles(root string) ([]string, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if HasImageExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.WithPath(apperrors.CategoryInputNotFound, "scan", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// CheckRoot verifies that root exists and is a directory.
func CheckRoot(root string) error {
	st, err := os.Stat(root)
	if err != nil {
		return apperrors.WithPath(apperrors.CategoryInputNotFound, "scan", root, err)
	}
	if !st.IsDir() {
		return apperrors.WithPath(apperrors.CategoryInputNotADirectory, "scan", root, apperrors.ErrNotADirectory)
	}
	return nil
}

// HasImageExtension reports whether name ends in one of Extensions.
func HasImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
