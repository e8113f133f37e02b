package filesystem

import (
	"path/filepath"
	"strings"
)

// ResolvePath converts a file:// URI or a bare path to a clean local path.
// A row fragment such as "#row=3" is dropped.
func ResolvePath(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	if i := strings.LastIndex(path, rowFragment); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
