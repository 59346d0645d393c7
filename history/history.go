// Package history loads paginated message history for a room: a backward
// time-cursor query against durable storage, a batched read-status update for
// the requesting user, and batched sender/attachment enrichment joined into
// the client-facing response shape.
package history

import (
	"context"
	"time"

	"github.com/ktb-chat/chat-state-go/chat"
)

// DefaultPageSize is the page size applied when the caller passes limit <= 0.
const DefaultPageSize = 30

// MessageStore is the durable message storage collaborator.
type MessageStore interface {
	// FindByRoomBefore returns up to limit non-deleted messages in roomID
	// with timestamp strictly before the cursor, ordered newest-first.
	// hasMore reports whether older non-deleted messages remain beyond the
	// returned page.
	FindByRoomBefore(ctx context.Context, roomID string, before time.Time, limit int) (page []chat.Message, hasMore bool, err error)
}

// UserStore is the durable user storage collaborator.
type UserStore interface {
	// FindByIDs returns the users for the given ids. Missing ids are simply
	// omitted from the result.
	FindByIDs(ctx context.Context, ids []string) ([]chat.User, error)
}

// FileStore is the durable file storage collaborator.
type FileStore interface {
	// FindByIDs returns the files for the given ids. Missing ids are simply
	// omitted from the result.
	FindByIDs(ctx context.Context, ids []string) ([]chat.File, error)

	// FindByID returns a single file, or nil when absent. Used by the
	// single-message assembly path only.
	FindByID(ctx context.Context, id string) (*chat.File, error)
}

// ReadStatusStore applies the batched "mark read" mutation. MarkRead is
// at-least-once and idempotent: marking an already-read message read again is
// a no-op.
type ReadStatusStore interface {
	MarkRead(ctx context.Context, messageIDs []string, userID string) error
}
