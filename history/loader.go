package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ktb-chat/chat-state-go/chat"
)

// Loader pulls message pages from durable storage and enriches them for
// display. History loading is best-effort: failures produce an empty page
// rather than an error, because a failed history load must not break a live
// connection.
type Loader struct {
	messages   MessageStore
	users      UserStore
	files      FileStore
	readStatus ReadStatusStore
	assembler  *Assembler
	log        *slog.Logger
}

// NewLoader builds a history loader over the durable storage collaborators.
// logger may be nil, in which case slog.Default() is used.
func NewLoader(messages MessageStore, users UserStore, files FileStore, readStatus ReadStatusStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		messages:   messages,
		users:      users,
		files:      files,
		readStatus: readStatus,
		assembler:  NewAssembler(files),
		log:        logger,
	}
}

// LoadMessages returns one page of history for roomID: messages strictly
// older than before, oldest-first, marked read for userID. limit <= 0 falls
// back to DefaultPageSize; a zero before falls back to now. Any failure is
// downgraded to an empty page with HasMore=false.
func (l *Loader) LoadMessages(ctx context.Context, roomID string, limit int, before time.Time, userID string) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if before.IsZero() {
		before = time.Now()
	}

	page, err := l.loadMessages(ctx, roomID, limit, before, userID)
	if err != nil {
		l.log.ErrorContext(ctx, "failed to load messages",
			slog.String("room_id", roomID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return Page{Messages: []MessageResponse{}, HasMore: false}
	}
	return page
}

func (l *Loader) loadMessages(ctx context.Context, roomID string, limit int, before time.Time, userID string) (Page, error) {
	newestFirst, hasMore, err := l.messages.FindByRoomBefore(ctx, roomID, before, limit)
	if err != nil {
		return Page{}, fmt.Errorf("query room %s: %w", roomID, err)
	}

	// The index-friendly query order is newest-first; reading order is
	// oldest-first.
	messages := reverse(newestFirst)

	if len(messages) > 0 {
		ids := make([]string, len(messages))
		for i := range messages {
			ids[i] = messages[i].ID
		}
		if err := l.readStatus.MarkRead(ctx, ids, userID); err != nil {
			return Page{}, fmt.Errorf("mark %d messages read for user %s: %w", len(ids), userID, err)
		}
	}

	usersByID, err := l.usersByID(ctx, messages)
	if err != nil {
		return Page{}, err
	}
	filesByID, err := l.filesByID(ctx, messages)
	if err != nil {
		return Page{}, err
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, l.assembler.ResponseFromMaps(&messages[i], usersByID, filesByID))
	}

	l.log.DebugContext(ctx, "messages loaded",
		slog.String("room_id", roomID),
		slog.Int("limit", limit),
		slog.Int("count", len(responses)),
		slog.Bool("has_more", hasMore),
	)

	return Page{Messages: responses, HasMore: hasMore}, nil
}

// usersByID issues at most one batched lookup for the page's distinct sender
// ids.
func (l *Loader) usersByID(ctx context.Context, messages []chat.Message) (map[string]chat.User, error) {
	ids := distinct(messages, func(m *chat.Message) string { return m.SenderID })
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := l.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch %d senders: %w", len(ids), err)
	}

	byID := make(map[string]chat.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// filesByID issues at most one batched lookup for the page's distinct file
// ids.
func (l *Loader) filesByID(ctx context.Context, messages []chat.Message) (map[string]chat.File, error) {
	ids := distinct(messages, func(m *chat.Message) string { return m.FileID })
	if len(ids) == 0 {
		return nil, nil
	}

	files, err := l.files.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch %d files: %w", len(ids), err)
	}

	byID := make(map[string]chat.File, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}
	return byID, nil
}

func distinct(messages []chat.Message, id func(*chat.Message) string) []string {
	seen := make(map[string]struct{}, len(messages))
	var out []string
	for i := range messages {
		v := id(&messages[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func reverse(in []chat.Message) []chat.Message {
	out := make([]chat.Message, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}
