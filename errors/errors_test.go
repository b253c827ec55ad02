package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olafgeibig/foto2pdf/errors"
)

func TestProcessingError_Message(t *testing.T) {
	err := apperrors.New(apperrors.CategoryIOFailure, "write", errors.New("disk full"))
	assert.Equal(t, "[IOFailure] write: disk full", err.Error())

	withPath := apperrors.WithPath(apperrors.CategoryUnreadableImage, "decode", "/in/a.png", apperrors.ErrUnsupportedFormat)
	assert.Equal(t, "[UnreadableImage] decode /in/a.png: unsupported image format", withPath.Error())
}

func TestCategoryOf(t *testing.T) {
	inner := apperrors.New(apperrors.CategoryImageTooLarge, "read", apperrors.ErrImageTooLarge)
	wrapped := fmt.Errorf("context: %w", inner)

	assert.Equal(t, apperrors.CategoryImageTooLarge, apperrors.CategoryOf(wrapped))
	assert.Equal(t, apperrors.CategoryInternal, apperrors.CategoryOf(errors.New("plain")))
	assert.True(t, apperrors.IsCategory(wrapped, apperrors.CategoryImageTooLarge))
	assert.False(t, apperrors.IsCategory(wrapped, apperrors.CategoryIOFailure))
	assert.ErrorIs(t, wrapped, apperrors.ErrImageTooLarge)
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, apperrors.Wrap(apperrors.CategoryInternal, "op", nil))
	assert.NoError(t, apperrors.WithPath(apperrors.CategoryInternal, "op", "p", nil))
}

func TestNewf_WrapsSentinel(t *testing.T) {
	err := apperrors.Newf(apperrors.CategoryInvalidParameter, "margin", "%w: got %v", apperrors.ErrInvalidMargin, 101.0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMargin)
	assert.Contains(t, err.Error(), "got 101")
}

func TestAttachPath(t *testing.T) {
	base := apperrors.New(apperrors.CategoryInvalidParameter, "margin", apperrors.ErrInvalidMargin)

	got := apperrors.AttachPath(base, "/in/x.jpg")
	var pe *apperrors.ProcessingError
	require.ErrorAs(t, got, &pe)
	assert.Equal(t, "/in/x.jpg", pe.Path)
	assert.Empty(t, base.Path, "original must not be mutated")

	again := apperrors.AttachPath(got, "/other")
	require.ErrorAs(t, again, &pe)
	assert.Equal(t, "/in/x.jpg", pe.Path, "an existing path is kept")

	plain := errors.New("plain")
	assert.Same(t, plain, apperrors.AttachPath(plain, "/p"))
}

func TestAttachPath_KeepsOuterWrappers(t *testing.T) {
	inner := apperrors.New(apperrors.CategoryUnreadableImage, "decode", apperrors.ErrUnsupportedFormat)
	wrapped := fmt.Errorf("jpeg backend: %w", inner)

	got := apperrors.AttachPath(wrapped, "/in/a.jpg")
	assert.Contains(t, got.Error(), "jpeg backend")
	assert.Contains(t, got.Error(), "/in/a.jpg")
	assert.ErrorIs(t, got, apperrors.ErrUnsupportedFormat)
	assert.ErrorIs(t, got, wrapped)
	assert.Equal(t, apperrors.CategoryUnreadableImage, apperrors.CategoryOf(got))

	var pe *apperrors.ProcessingError
	require.ErrorAs(t, got, &pe)
	assert.Equal(t, "/in/a.jpg", pe.Path)
	assert.Equal(t, "decode", pe.Op)
	assert.Empty(t, inner.Path, "inner error must not be mutated")
}
