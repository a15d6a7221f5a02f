package upload

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

const defaultContentType = "application/octet-stream"

// LocalFile is the file the user picked. Open is called once per upload.
type LocalFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FromPath describes a regular file on disk. The content type is guessed
// from the extension.
func FromPath(path string) (LocalFile, error) {
	st, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		return LocalFile{}, fmt.Errorf("%s is not a regular file", path)
	}
	return LocalFile{
		Name:        filepath.Base(path),
		Size:        st.Size(),
		ContentType: contentTypeFor(path),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func contentTypeFor(name string) string {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		return defaultContentType
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}
