package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// File is a user-selected artifact. Open may be called once per attempt, so
// a failed upload can be retried without re-selecting.
type File interface {
	Name() string
	ContentType() string
	// Open returns the content and its size, or -1 when unknown.
	Open() (io.ReadCloser, int64, error)
}

type localFile struct {
	path string
}

// LocalFile is a File read from disk.
func LocalFile(path string) File {
	return localFile{path: path}
}

func (f localFile) Name() string { return filepath.Base(f.path) }

// ContentType is the bare media type for the file's extension. Signed upload
// URLs are issued for an exact Content-Type, so parameters such as charset
// are dropped.
func (f localFile) ContentType() string {
	ct := mime.TypeByExtension(filepath.Ext(f.path))
	if ct == "" {
		return "text/csv"
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return "text/csv"
}

func (f localFile) Open() (io.ReadCloser, int64, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, 0, err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		_ = fh.Close()
		return nil, 0, fmt.Errorf("%s is a directory", f.path)
	}
	return fh, info.Size(), nil
}

type memoryFile struct {
	name        string
	contentType string
	data        []byte
}

// BytesFile is a File held in memory.
func BytesFile(name, contentType string, data []byte) File {
	return memoryFile{name: name, contentType: contentType, data: data}
}

func (f memoryFile) Name() string        { return f.name }
func (f memoryFile) ContentType() string { return f.contentType }

func (f memoryFile) Open() (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader(f.data)), int64(len(f.data)), nil
}
