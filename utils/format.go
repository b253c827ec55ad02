package utils

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/olafgeibig/foto2pdf/core"
)

// DetectFormat sniffs the leading bytes of data and returns the image format.
func DetectFormat(data []byte) core.Format {
	if len(data) < 4 {
		return core.FormatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return core.FormatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return core.FormatPNG
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return core.FormatWebP
	}
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return core.FormatJPEG
	case "image/png":
		return core.FormatPNG
	case "image/webp":
		return core.FormatWebP
	}
	return core.FormatUnknown
}

// FormatFromExtension maps a file name's extension to a Format.
func FormatFromExtension(name string) core.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return core.FormatJPEG
	case ".png":
		return core.FormatPNG
	case ".webp":
		return core.FormatWebP
	}
	return core.FormatUnknown
}
