package history

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ktb-chat/chat-state-go/chat"
)

func TestBuildResponseDefaults(t *testing.T) {
	a := NewAssembler(nil)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &chat.Message{
		ID:        "m1",
		RoomID:    "r1",
		Content:   "hello",
		Type:      "text",
		Timestamp: ts,
	}

	resp := a.ResponseFromMaps(msg, nil, nil)

	if resp.ID != "m1" || resp.Content != "hello" || resp.Type != "text" || resp.RoomID != "r1" {
		t.Fatalf("scalar fields not copied: %+v", resp)
	}
	if resp.Timestamp != ts.UnixMilli() {
		t.Fatalf("expected epoch-ms timestamp %d, got %d", ts.UnixMilli(), resp.Timestamp)
	}
	if resp.Reactions == nil || len(resp.Reactions) != 0 {
		t.Fatalf("expected empty reactions map, got %v", resp.Reactions)
	}
	if resp.Readers == nil || len(resp.Readers) != 0 {
		t.Fatalf("expected empty readers slice, got %v", resp.Readers)
	}
	if resp.Sender != nil {
		t.Fatalf("expected no sender, got %+v", resp.Sender)
	}
	if resp.File != nil {
		t.Fatalf("expected no file, got %+v", resp.File)
	}
	if resp.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", resp.Metadata)
	}
}

func TestResponseWireShape(t *testing.T) {
	a := NewAssembler(nil)

	msg := &chat.Message{ID: "m1", RoomID: "r1", Timestamp: time.Now()}
	data, err := json.Marshal(a.ResponseFromMaps(msg, nil, nil))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)

	// Absent sender/file/metadata are omitted; reactions/readers always
	// present as empty containers.
	for _, forbidden := range []string{`"sender"`, `"file"`, `"metadata"`} {
		if strings.Contains(s, forbidden) {
			t.Fatalf("expected %s to be omitted: %s", forbidden, s)
		}
	}
	for _, required := range []string{`"reactions":{}`, `"readers":[]`, `"roomId":"r1"`} {
		if !strings.Contains(s, required) {
			t.Fatalf("expected %s in wire shape: %s", required, s)
		}
	}
}

func TestResponseFromMaps(t *testing.T) {
	a := NewAssembler(nil)

	msg := &chat.Message{
		ID:        "m1",
		RoomID:    "r1",
		SenderID:  "A",
		FileID:    "F1",
		Timestamp: time.Now(),
		Reactions: map[string][]string{"👍": {"B"}},
		Readers:   []string{"B"},
		Metadata:  map[string]any{"pinned": true},
	}
	users := map[string]chat.User{"A": {ID: "A", Name: "Alice", Email: "a@example.com", ProfileImage: "img"}}
	files := map[string]chat.File{"F1": {ID: "F1", Filename: "f.png", OriginalName: "orig.png", MimeType: "image/png", Size: 123}}

	resp := a.ResponseFromMaps(msg, users, files)

	if resp.Sender == nil || resp.Sender.Name != "Alice" || resp.Sender.Email != "a@example.com" {
		t.Fatalf("sender not resolved from map: %+v", resp.Sender)
	}
	if resp.File == nil || resp.File.OriginalName != "orig.png" || resp.File.Size != 123 {
		t.Fatalf("file not resolved from map: %+v", resp.File)
	}
	if len(resp.Reactions["👍"]) != 1 || resp.Readers[0] != "B" {
		t.Fatalf("reactions/readers not copied: %+v", resp)
	}
	if resp.Metadata["pinned"] != true {
		t.Fatalf("metadata not copied: %+v", resp.Metadata)
	}
}

func TestResponseFromMapsUnresolved(t *testing.T) {
	a := NewAssembler(nil)

	msg := &chat.Message{ID: "m1", SenderID: "ghost", FileID: "gone", Timestamp: time.Now()}
	resp := a.ResponseFromMaps(msg, map[string]chat.User{}, map[string]chat.File{})

	if resp.Sender != nil {
		t.Fatalf("expected unresolved sender to be omitted, got %+v", resp.Sender)
	}
	if resp.File != nil {
		t.Fatalf("expected unresolved file to be omitted, got %+v", resp.File)
	}
}

func TestResponseSingleLookupPath(t *testing.T) {
	files := &fakeFileStore{files: map[string]chat.File{
		"F1": {ID: "F1", Filename: "f.png"},
	}}
	a := NewAssembler(files)
	ctx := context.Background()

	msg := &chat.Message{ID: "m1", FileID: "F1", Timestamp: time.Now()}
	sender := &chat.User{ID: "A", Name: "Alice"}

	resp := a.Response(ctx, msg, sender)
	if resp.Sender == nil || resp.Sender.ID != "A" {
		t.Fatalf("sender not attached: %+v", resp.Sender)
	}
	if resp.File == nil || resp.File.Filename != "f.png" {
		t.Fatalf("file not resolved by direct lookup: %+v", resp.File)
	}
	if files.singleCalls != 1 || files.batchCalls != 0 {
		t.Fatalf("expected exactly one single lookup: single=%d batch=%d", files.singleCalls, files.batchCalls)
	}

	// No file id: no lookup at all.
	resp = a.Response(ctx, &chat.Message{ID: "m2", Timestamp: time.Now()}, nil)
	if files.singleCalls != 1 {
		t.Fatalf("lookup issued for message without attachment: %d", files.singleCalls)
	}
	if resp.File != nil {
		t.Fatalf("unexpected file: %+v", resp.File)
	}
}
