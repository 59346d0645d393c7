// Package chat holds the domain types shared by the history loader and the
// stores. Message, User and File records are owned by durable storage; this
// subsystem only reads them and requests read-status mutation.
package chat

import "time"

// Message is a single chat message as persisted by durable storage.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	FileID    string // empty when the message carries no attachment
	Content   string
	Type      string
	Timestamp time.Time
	Reactions map[string][]string // emoji -> reacting user ids
	Readers   []string            // user ids that have read the message
	Metadata  map[string]any
	IsDeleted bool
}

// TimestampMillis returns the message timestamp as epoch milliseconds, the
// timezone-agnostic form emitted on the wire.
func (m *Message) TimestampMillis() int64 {
	return m.Timestamp.UnixMilli()
}

// User is the sender profile joined into message responses.
type User struct {
	ID           string
	Name         string
	Email        string
	ProfileImage string
}

// File is the attachment metadata joined into message responses.
type File struct {
	ID           string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
}
