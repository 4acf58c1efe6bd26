// Package source provides file content loading with encoding fallback.
package source

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadError is a soft per-file read failure. The orchestrator logs it and
// skips the file; it never aborts a project scan.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ReadText loads a file and decodes it to UTF-8 text. Content that is not
// valid UTF-8 is re-decoded as Latin-1, which maps every byte to a code
// point. No partial-content recovery is attempted: any open or decode
// failure returns a ReadError.
func ReadText(src ContentSource, path string) ([]byte, error) {
	raw, err := src.Read(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	if utf8.Valid(raw) {
		return raw, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return decoded, nil
}
