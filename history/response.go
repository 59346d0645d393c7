package history

import (
	"context"

	"github.com/ktb-chat/chat-state-go/chat"
)

// Page is the client-facing history response.
type Page struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"hasMore"`
}

// MessageResponse is the client-facing message shape. Timestamp is epoch
// milliseconds to keep the wire shape timezone-agnostic.
type MessageResponse struct {
	ID        string              `json:"id"`
	Content   string              `json:"content"`
	Type      string              `json:"type"`
	Timestamp int64               `json:"timestamp"`
	RoomID    string              `json:"roomId"`
	Reactions map[string][]string `json:"reactions"`
	Readers   []string            `json:"readers"`
	Sender    *UserResponse       `json:"sender,omitempty"`
	File      *FileResponse       `json:"file,omitempty"`
	Metadata  map[string]any      `json:"metadata,omitempty"`
}

// UserResponse is the sender sub-object.
type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

// FileResponse is the attachment sub-object.
type FileResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// Assembler combines a raw message record with sender and attachment data
// into the client-facing shape. The map-based path performs a pure in-memory
// join; the single-message path falls back to one direct file lookup.
type Assembler struct {
	files FileStore
}

// NewAssembler builds an assembler. files is only consulted by the
// single-message Response path and may be nil when only ResponseFromMaps is
// used.
func NewAssembler(files FileStore) *Assembler {
	return &Assembler{files: files}
}

// Response assembles a single message with an optional pre-resolved sender,
// resolving the attachment by direct lookup. An unresolvable attachment is
// omitted rather than failing the message.
func (a *Assembler) Response(ctx context.Context, msg *chat.Message, sender *chat.User) MessageResponse {
	var file *chat.File
	if msg.FileID != "" && a.files != nil {
		if f, err := a.files.FindByID(ctx, msg.FileID); err == nil {
			file = f
		}
	}
	return buildResponse(msg, sender, file)
}

// ResponseFromMaps assembles a message from pre-fetched sender and file maps
// without touching any store.
func (a *Assembler) ResponseFromMaps(msg *chat.Message, usersByID map[string]chat.User, filesByID map[string]chat.File) MessageResponse {
	var sender *chat.User
	if u, ok := usersByID[msg.SenderID]; ok {
		sender = &u
	}
	var file *chat.File
	if msg.FileID != "" {
		if f, ok := filesByID[msg.FileID]; ok {
			file = &f
		}
	}
	return buildResponse(msg, sender, file)
}

func buildResponse(msg *chat.Message, sender *chat.User, file *chat.File) MessageResponse {
	resp := MessageResponse{
		ID:        msg.ID,
		Content:   msg.Content,
		Type:      msg.Type,
		Timestamp: msg.TimestampMillis(),
		RoomID:    msg.RoomID,
		Reactions: msg.Reactions,
		Readers:   msg.Readers,
		Metadata:  msg.Metadata,
	}
	if resp.Reactions == nil {
		resp.Reactions = map[string][]string{}
	}
	if resp.Readers == nil {
		resp.Readers = []string{}
	}

	if sender != nil {
		resp.Sender = &UserResponse{
			ID:           sender.ID,
			Name:         sender.Name,
			Email:        sender.Email,
			ProfileImage: sender.ProfileImage,
		}
	}
	if file != nil {
		resp.File = &FileResponse{
			ID:           file.ID,
			Filename:     file.Filename,
			OriginalName: file.OriginalName,
			MimeType:     file.MimeType,
			Size:         file.Size,
		}
	}
	return resp
}
