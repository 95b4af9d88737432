// AngelaMos | 2026
// ids.go

package core

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a random record identifier.
func NewID() string {
	return uuid.New().String()
}

// NewSortableID returns a lexicographically sortable identifier used for
// object-store keys and human-facing reference numbers.
func NewSortableID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
