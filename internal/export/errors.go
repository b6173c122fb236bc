package export

import "errors"

var (
	// ErrUnsupportedFormat indicates a format with no registered writer.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrWriterFailed indicates the format writer returned an error.
	ErrWriterFailed = errors.New("export writer failed")
)
