package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "assistant.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func userMessage(content string) model.Message {
	return model.Message{
		ID:        fmt.Sprintf("user-%s", content),
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func assistantMessage(content string) model.Message {
	return model.Message{
		ID:        fmt.Sprintf("assistant-%s", content),
		Role:      model.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func TestGenerateTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty", text: "", want: ""},
		{name: "whitespace only", text: "   \t ", want: ""},
		{name: "short message kept whole", text: "hello there", want: "hello there"},
		{name: "exactly four words", text: "what is the weather", want: "what is the weather"},
		{name: "greeting kept whole", text: "Hello, how are you?", want: "Hello, how are you?"},
		{name: "five words truncated", text: "what is the weather today", want: "what is the weather..."},
		{name: "collapses repeated whitespace", text: "  hello   there  ", want: "hello there"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GenerateTitle(tt.text); got != tt.want {
				t.Errorf("GenerateTitle(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestGenerateTitleRuneCap(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 30) + " " + strings.Repeat("b", 30)
	got := GenerateTitle(text)
	want := strings.Repeat("a", 30) + " " + strings.Repeat("b", 19) + "..."
	if got != want {
		t.Errorf("GenerateTitle = %q, want %q", got, want)
	}
}

func TestNewConversation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	conv, err := s.NewConversation()
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if conv.Title != model.SentinelTitle {
		t.Errorf("title = %q, want %q", conv.Title, model.SentinelTitle)
	}
	if conv.ID == "" {
		t.Error("conversation ID is empty")
	}

	current := s.Current()
	if current == nil || current.ID != conv.ID {
		t.Error("new conversation did not become current")
	}
	if got := len(s.Conversations()); got != 1 {
		t.Errorf("collection size = %d, want 1", got)
	}
}

func TestAppendMessageCreatesConversation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	conv, err := s.AppendMessage(userMessage("hello assistant how are you doing"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(conv.Messages))
	}
	if conv.Title != "hello assistant how are..." {
		t.Errorf("title = %q, want %q", conv.Title, "hello assistant how are...")
	}
	if current := s.Current(); current == nil || current.ID != conv.ID {
		t.Error("appended conversation did not become current")
	}
}

func TestAppendMessageTitleSetOnce(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.NewConversation(); err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	conv, err := s.AppendMessage(userMessage("first question"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if conv.Title != "first question" {
		t.Fatalf("title = %q, want %q", conv.Title, "first question")
	}

	conv, err = s.AppendMessage(userMessage("second question"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if conv.Title != "first question" {
		t.Errorf("title changed on second message: %q", conv.Title)
	}
}

func TestAppendMessageAssistantNeverTitles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.NewConversation(); err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	conv, err := s.AppendMessage(assistantMessage("welcome, ask me anything"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if conv.Title != model.SentinelTitle {
		t.Errorf("assistant message set title: %q", conv.Title)
	}
	if conv.PrimaryLanguage != "" {
		t.Errorf("assistant message set primaryLanguage: %q", conv.PrimaryLanguage)
	}
}

func TestAppendMessagePrimaryLanguage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	conv, err := s.AppendMessage(model.Message{
		ID:        "msg-1",
		Role:      model.RoleUser,
		Content:   "آپ کیسے ہیں",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if conv.PrimaryLanguage != "ur" {
		t.Fatalf("primaryLanguage = %q, want %q", conv.PrimaryLanguage, "ur")
	}

	// A later message in another language must not change it.
	conv, err = s.AppendMessage(userMessage("and now in english"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if conv.PrimaryLanguage != "ur" {
		t.Errorf("primaryLanguage changed: %q", conv.PrimaryLanguage)
	}
}

func TestAppendMessageTagsLanguage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	conv, err := s.AppendMessage(model.Message{
		ID:        "msg-1",
		Role:      model.RoleUser,
		Content:   "Привет",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if got := conv.Messages[0].Language; got != "ru" {
		t.Errorf("message language = %q, want %q", got, "ru")
	}
}

func TestRapidAppendsLoseNothing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	// A user message immediately followed by the assistant reply is the
	// hot path; the first write must survive the second.
	if _, err := s.AppendMessage(userMessage("question")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	conv, err := s.AppendMessage(assistantMessage("answer"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Role != model.RoleUser || conv.Messages[1].Role != model.RoleAssistant {
		t.Errorf("message order wrong: %s then %s", conv.Messages[0].Role, conv.Messages[1].Role)
	}
}

func TestConcurrentAppends(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.AppendMessage(userMessage(fmt.Sprintf("m%d", i))); err != nil {
				t.Errorf("AppendMessage: %v", err)
			}
		}(i)
	}
	wg.Wait()

	current := s.Current()
	if current == nil {
		t.Fatal("no current conversation")
	}
	if len(current.Messages) != n {
		t.Errorf("message count = %d, want %d", len(current.Messages), n)
	}
}

func TestCollectionSortedByUpdatedAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	s, err := Open(filepath.Join(t.TempDir(), "assistant.db"), logger.NewNop(), WithClock(clock))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	first, err := s.NewConversation()
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if _, err := s.NewConversation(); err != nil {
		t.Fatalf("NewConversation: %v", err)
	}

	// Touching the older conversation moves it back to the front.
	if _, err := s.Load(first.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.AppendMessage(userMessage("bump")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	conversations := s.Conversations()
	if len(conversations) != 2 {
		t.Fatalf("collection size = %d, want 2", len(conversations))
	}
	if conversations[0].ID != first.ID {
		t.Errorf("most recently updated conversation is not first")
	}
}

func TestLoadUnknownID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteClearsCurrent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	conv, err := s.NewConversation()
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if err := s.Delete(conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Current() != nil {
		t.Error("current pointer survived deleting the current conversation")
	}
	if err := s.Delete(conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.AppendMessage(userMessage("one")); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if got := len(s.Conversations()); got != 0 {
		t.Errorf("collection size after ClearAll = %d", got)
	}
	if s.Current() != nil {
		t.Error("current pointer survived ClearAll")
	}
}

func TestReloadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "assistant.db")

	s, err := Open(path, logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	conv, err := s.AppendMessage(userMessage("remember me"))
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, logger.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(conv.ID)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "remember me" {
		t.Errorf("reloaded conversation lost messages: %+v", got.Messages)
	}
	if got.Title != "remember me" {
		t.Errorf("reloaded title = %q", got.Title)
	}

	// The current pointer survives restart.
	current := reopened.Current()
	if current == nil || current.ID != conv.ID {
		t.Error("current conversation did not survive reload")
	}
}

func TestLegacyDateFallback(t *testing.T) {
	t.Parallel()

	legacy := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	sc := storedConversation{
		ID:    "legacy-1",
		Title: "old record",
		Date:  &legacy,
		Messages: []storedMessage{
			{ID: "m1", Role: model.RoleUser, Content: "hi"},
		},
	}

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	conv := sc.normalize(now)

	if !conv.CreatedAt.Equal(legacy) {
		t.Errorf("createdAt = %v, want legacy date %v", conv.CreatedAt, legacy)
	}
	if !conv.UpdatedAt.Equal(legacy) {
		t.Errorf("updatedAt = %v, want legacy date %v", conv.UpdatedAt, legacy)
	}
	if !conv.Messages[0].Timestamp.Equal(now) {
		t.Errorf("missing message timestamp not defaulted to now")
	}
}

func TestCorruptedRecordsDiscarded(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "assistant.db")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if err := b.Put(keyConversations, []byte("{not json")); err != nil {
			return err
		}
		return b.Put(keyCurrent, []byte("also broken"))
	})
	if err != nil {
		t.Fatalf("seed corrupt records: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err := Open(path, logger.NewNop())
	if err != nil {
		t.Fatalf("Open with corrupt records: %v", err)
	}
	defer s.Close()

	if got := len(s.Conversations()); got != 0 {
		t.Errorf("collection size = %d, want 0", got)
	}
	if s.Current() != nil {
		t.Error("current pointer set from corrupt record")
	}

	// The store stays writable after discarding.
	if _, err := s.AppendMessage(userMessage("fresh start")); err != nil {
		t.Errorf("AppendMessage after recovery: %v", err)
	}
}
