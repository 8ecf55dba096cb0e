// Package static holds the icon assets referenced by the footer.
package static

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"
)

//go:embed utils/*.svg
var FS embed.FS

// filesOnly hides directories, so no listing is ever served.
type filesOnly struct {
	fs.FS
}

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}

	s, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if s.IsDir() {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return file, nil
}

// Handler serves the embedded assets from the root of FS, so it should be
// mounted without stripping the "/utils/" prefix. A zero maxAge disables the
// Cache-Control header.
func Handler(maxAge time.Duration) http.Handler {
	fs := http.FileServer(http.FS(filesOnly{FS}))

	if maxAge <= 0 {
		return fs
	}

	cache := fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cache)
		fs.ServeHTTP(w, r)
	})
}
