// Package store owns conversation history: the collection of conversations,
// the current-conversation pointer, and their durable mirror.
//
// Every mutation is a read-modify-write under the store mutex, and the
// derived snapshot feeds both the current pointer and the collection upsert
// before the durable records are written. Two rapid appends (a user message
// immediately followed by the assistant reply) therefore cannot lose the
// first write.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/language"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/metrics"
)

// ErrNotFound is returned when a conversation id is not in the collection.
var ErrNotFound = errors.New("conversation not found")

// Store holds the in-memory conversation state and mirrors every mutation
// into bbolt synchronously. All methods are safe for concurrent use.
type Store struct {
	db  *bolt.DB
	log *logger.Logger
	now func() time.Time

	mu            sync.Mutex
	conversations []model.Conversation
	current       *model.Conversation
}

// Option configures a Store during construction.
type Option func(*Store)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads persisted state from the bbolt file at path. Corrupted records
// are discarded and logged; the session continues from an empty state rather
// than failing.
func Open(path string, log *logger.Logger, opts ...Option) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:  db,
		log: log,
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	conversations, current, discarded := loadPersisted(db, s.now())
	s.conversations = conversations
	s.current = current
	if discarded > 0 {
		log.Warn("discarded corrupted conversation records", zap.Int("count", discarded))
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the underlying database is reachable.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketState)) == nil {
			return errors.New("state bucket missing")
		}
		return nil
	})
}

// Conversations returns a snapshot of the collection, sorted most recently
// updated first.
func (s *Store) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conversation, len(s.conversations))
	for i := range s.conversations {
		out[i] = s.conversations[i].Clone()
	}
	return out
}

// Current returns the active conversation, or nil when no session is active.
func (s *Store) Current() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := s.current.Clone()
	return &cp
}

// Get returns the conversation with the given id from the collection.
func (s *Store) Get(id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return s.conversations[i].Clone(), nil
		}
	}
	return model.Conversation{}, ErrNotFound
}

// NewConversation creates a fresh empty conversation, makes it current, and
// persists both records.
func (s *Store) NewConversation() (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := model.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Title:     model.SentinelTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.current = &conv
	s.upsertLocked(conv, false)

	if err := s.persistLocked(); err != nil {
		return model.Conversation{}, err
	}
	metrics.ConversationsTotal.Inc()
	return conv.Clone(), nil
}

// AppendMessage appends msg to the current conversation, creating one first
// if none is active. It applies language tagging when the message carries no
// tag, assigns primaryLanguage and the title once (from the first user
// message only), bumps updatedAt, re-sorts the collection, and writes both
// durable records before returning.
func (s *Store) AppendMessage(msg model.Message) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Language == "" {
		msg.Language = language.Detect(msg.Content)
	}
	now := s.now()

	var conv model.Conversation
	created := false
	if s.current == nil {
		conv = model.Conversation{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Title:     model.SentinelTitle,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created = true
	} else {
		conv = s.current.Clone()
	}

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = now

	if msg.Role == model.RoleUser {
		if first := conv.FirstUserMessage(); first != nil && first.ID == msg.ID {
			if conv.PrimaryLanguage == "" {
				conv.PrimaryLanguage = msg.Language
			}
			if conv.Title == model.SentinelTitle {
				conv.Title = GenerateTitle(msg.Content)
			}
		}
	}

	// The derived snapshot serves both records in the same transaction.
	s.current = &conv
	s.upsertLocked(conv, !created)

	if err := s.persistLocked(); err != nil {
		return model.Conversation{}, err
	}
	if created {
		metrics.ConversationsTotal.Inc()
	}
	metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
	return conv.Clone(), nil
}

// Load makes the stored conversation with the given id current.
func (s *Store) Load(id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.conversations {
		if s.conversations[i].ID == id {
			conv := s.conversations[i].Clone()
			s.current = &conv
			if err := s.persistLocked(); err != nil {
				return model.Conversation{}, err
			}
			return conv.Clone(), nil
		}
	}
	return model.Conversation{}, ErrNotFound
}

// Delete removes the conversation with the given id. If it was current, the
// current pointer is cleared.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	return s.persistLocked()
}

// ClearAll empties the collection and clears the current pointer.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = nil
	s.current = nil
	return s.persistLocked()
}

// upsertLocked replaces the conversation in the collection or inserts it.
// Existing conversations trigger a re-sort by updatedAt descending; brand-new
// conversations are prepended. Callers must hold the store lock.
func (s *Store) upsertLocked(conv model.Conversation, resort bool) {
	for i := range s.conversations {
		if s.conversations[i].ID == conv.ID {
			s.conversations[i] = conv
			if resort {
				sort.SliceStable(s.conversations, func(a, b int) bool {
					return s.conversations[a].UpdatedAt.After(s.conversations[b].UpdatedAt)
				})
			}
			return
		}
	}
	s.conversations = append([]model.Conversation{conv}, s.conversations...)
}

func (s *Store) persistLocked() error {
	if err := persist(s.db, s.conversations, s.current); err != nil {
		s.log.Error("failed to persist conversation state", zap.Error(err))
		return err
	}
	return nil
}
