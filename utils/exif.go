package utils

import (
	"bytes"

	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation returns the EXIF orientation tag (1-8) found in data, or 0 when
// the data carries no EXIF block or the tag is missing or malformed.
func Orientation(data []byte) (orientation int) {
	defer func() {
		// go-exif reports some malformed blocks by panicking.
		if recover() != nil {
			orientation = 0
		}
	}()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(bytes.NewReader(data), nil, true)
	if err != nil {
		// exif.ErrNoExif and parse failures alike mean "no orientation".
		return 0
	}
	for _, tag := range tags {
		if tag.TagName != "Orientation" || tag.IfdPath != "IFD" {
			continue
		}
		if v := orientationValue(tag.Value); v >= 1 && v <= 8 {
			return v
		}
	}
	return 0
}

func orientationValue(v interface{}) int {
	switch t := v.(type) {
	case []uint16:
		if len(t) > 0 {
			return int(t[0])
		}
	case uint16:
		return int(t)
	case []uint32:
		if len(t) > 0 {
			return int(t[0])
		}
	}
	return 0
}
