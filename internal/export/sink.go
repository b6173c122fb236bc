package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink opens the destination for a finished export.
type Sink interface {
	Open(fileName string) (io.WriteCloser, error)
}

// DirSink writes exports into a directory.
type DirSink struct {
	Dir string
}

// Open creates fileName inside the directory, creating the directory if needed.
func (d DirSink) Open(fileName string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(filepath.Join(d.Dir, filepath.Base(fileName)))
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	return f, nil
}

// Path returns where fileName is written.
func (d DirSink) Path(fileName string) string {
	return filepath.Join(d.Dir, filepath.Base(fileName))
}

// MemorySink keeps the last export in memory.
type MemorySink struct {
	FileName string
	buf      bytes.Buffer
}

// Open resets the buffer and returns a writer into it.
func (m *MemorySink) Open(fileName string) (io.WriteCloser, error) {
	m.FileName = fileName
	m.buf.Reset()
	return nopCloser{&m.buf}, nil
}

// Bytes returns the written content.
func (m *MemorySink) Bytes() []byte {
	return m.buf.Bytes()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
