package imageio

import "errors"

// Common image loading errors
var (
	// ErrUnsupportedFormat is returned when the file extension or container
	// is not a format the pipeline can decode.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrUnreadableFile is returned when the file is missing, empty, or the
	// pixel data cannot be decoded.
	ErrUnreadableFile = errors.New("unreadable image file")
)
