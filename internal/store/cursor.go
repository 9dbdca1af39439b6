package store

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// History cursors encode the (created_at, id) keyset position of the last
// item on a page. Keyset pagination keeps already-returned pages stable when
// new items are inserted concurrently, which offset pagination does not.

// EncodeHistoryCursor builds an opaque cursor from the last item's sort key.
func EncodeHistoryCursor(createdAt time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%s|%s", createdAt.UTC().Format(time.RFC3339Nano), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeHistoryCursor parses an opaque cursor back into its sort key.
// Returns ErrInvalidCursor if the cursor is malformed.
func DecodeHistoryCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: missing separator", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidCursor, err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, fmt.Errorf("%w: bad id: %v", ErrInvalidCursor, err)
	}

	return createdAt, id, nil
}
