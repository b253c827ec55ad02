package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
	"github.com/olafgeibig/foto2pdf/scanner"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestFindImageFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"b.JPG", "a.png", "notes.txt", "c.jpeg",
		"sub/d.Png", "sub/deeper/e.jpg", "sub/readme.md",
		".hidden.png", "archive.png.bak",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.png"), 0o755))

	files, err := scanner.FindImageFiles(root)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, ".hidden.png"),
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b.JPG"),
		filepath.Join(root, "c.jpeg"),
		filepath.Join(root, "sub", "d.Png"),
		filepath.Join(root, "sub", "deeper", "e.jpg"),
	}
	assert.Equal(t, want, files)
}

func TestFindImageFiles_Empty(t *testing.T) {
	files, err := scanner.FindImageFiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindImageFiles_BadRoot(t *testing.T) {
	root := t.TempDir()

	_, err := scanner.FindImageFiles(filepath.Join(root, "nope"))
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputNotFound), "%v", err)

	touch(t, root, "file.png")
	_, err = scanner.FindImageFiles(filepath.Join(root, "file.png"))
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryInputNotADirectory), "%v", err)
	assert.ErrorIs(t, err, apperrors.ErrNotADirectory)
}

func TestHasImageExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"a.jpg": true, "a.JPEG": true, "a.png": true,
		"a.webp": false, "a.tif": false, "png": false, "a.jpg.txt": false,
	} {
		assert.Equal(t, want, scanner.HasImageExtension(name), name)
	}
}
