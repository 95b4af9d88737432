// AngelaMos | 2026
// storage.go

package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore holds document bytes. Records in Postgres point at objects
// by key; the store knows nothing about records.
//
// Put takes a seekable body so the S3 client can compute a payload
// checksum before sending, which plain HTTP endpoints require.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

const maxFilenameLength = 120

// NewKey builds a storage key of the form <userID>/<ULID>-<filename>.
// The ULID keeps keys unique and roughly ordered by upload time.
func NewKey(userID, filename string) string {
	return userID + "/" + core.NewSortableID() + "-" + SanitizeFilename(filename)
}

// SanitizeFilename strips directories and reduces the name to a safe
// character set for object keys and Content-Disposition headers.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "file"
	}

	if len(out) > maxFilenameLength {
		ext := path.Ext(out)
		if len(ext) > 16 {
			ext = ""
		}
		out = out[:maxFilenameLength-len(ext)] + ext
	}

	return out
}
