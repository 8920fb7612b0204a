// Package objectstore uploads user files and returns their public URL.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var ErrUploadRejected = errors.New("objectstore: upload rejected")

// Object is one file to store. Folder groups objects per purpose and user.
type Object struct {
	Folder      string
	Filename    string
	ContentType string
	Data        []byte
}

type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// objectKey builds a unique ASCII-only key for obj.
func objectKey(obj Object, now time.Time) string {
	name := fmt.Sprintf("%d_%s", now.UnixNano(), sanitizeFilename(obj.Filename))
	if obj.Folder == "" {
		return name
	}
	return path.Join(obj.Folder, name)
}

// sanitizeFilename keeps ASCII letters, digits, underscore and dash in the
// base name and lowercases the extension.
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(filename, "\\", "/")), path.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("file")
	}

	var e strings.Builder
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			e.WriteRune(r)
		}
	}
	return b.String() + e.String()
}
