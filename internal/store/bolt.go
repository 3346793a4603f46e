package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
)

var (
	bucketState = []byte("state")

	keyConversations = []byte("conversations")
	keyCurrent       = []byte("current")
)

// storedConversation is the persisted form of a conversation. It carries the
// legacy "date" field written by old records, used as a fallback for both
// timestamps on load.
type storedConversation struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Messages        []storedMessage `json:"messages"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	Date            *time.Time      `json:"date,omitempty"`
	PrimaryLanguage string          `json:"primaryLanguage,omitempty"`
}

type storedMessage struct {
	ID        string     `json:"id"`
	Role      model.Role `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Language  string     `json:"language,omitempty"`
}

// normalize converts a stored record to the in-memory form, resolving missing
// timestamps: createdAt/updatedAt fall back to the legacy date field, then to
// now; message timestamps fall back to now. Messages are re-sorted by
// timestamp defensively before use.
func (sc *storedConversation) normalize(now time.Time) model.Conversation {
	conv := model.Conversation{
		ID:              sc.ID,
		Title:           sc.Title,
		PrimaryLanguage: sc.PrimaryLanguage,
		CreatedAt:       resolveTime(sc.CreatedAt, sc.Date, now),
		UpdatedAt:       resolveTime(sc.UpdatedAt, sc.Date, now),
		Messages:        make([]model.Message, 0, len(sc.Messages)),
	}
	for _, sm := range sc.Messages {
		ts := now
		if sm.Timestamp != nil {
			ts = *sm.Timestamp
		}
		conv.Messages = append(conv.Messages, model.Message{
			ID:        sm.ID,
			Role:      sm.Role,
			Content:   sm.Content,
			Timestamp: ts,
			Language:  sm.Language,
		})
	}
	sort.SliceStable(conv.Messages, func(i, j int) bool {
		return conv.Messages[i].Timestamp.Before(conv.Messages[j].Timestamp)
	})
	return conv
}

func resolveTime(primary, legacy *time.Time, now time.Time) time.Time {
	if primary != nil {
		return *primary
	}
	if legacy != nil {
		return *legacy
	}
	return now
}

// openDB opens (creating if necessary) the bbolt file backing the store.
func openDB(path string) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init storage bucket: %w", err)
	}
	return db, nil
}

// persist writes both durable records inside a single transaction: the full
// collection and the current conversation (or a null record when absent).
func persist(db *bolt.DB, conversations []model.Conversation, current *model.Conversation) error {
	collection, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}
	cur, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode current conversation: %w", err)
	}
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if err := b.Put(keyConversations, collection); err != nil {
			return err
		}
		return b.Put(keyCurrent, cur)
	})
}

// loadPersisted reads both records back. Records that fail to decode are
// discarded rather than failing the load; the session starts from an empty
// state for the offending record.
func loadPersisted(db *bolt.DB, now time.Time) (conversations []model.Conversation, current *model.Conversation, discarded int) {
	var rawCollection, rawCurrent []byte
	db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if v := b.Get(keyConversations); v != nil {
			rawCollection = append([]byte(nil), v...)
		}
		if v := b.Get(keyCurrent); v != nil {
			rawCurrent = append([]byte(nil), v...)
		}
		return nil
	})

	if len(rawCollection) > 0 {
		var stored []storedConversation
		if err := json.Unmarshal(rawCollection, &stored); err != nil {
			discarded++
		} else {
			conversations = make([]model.Conversation, 0, len(stored))
			for i := range stored {
				conversations = append(conversations, stored[i].normalize(now))
			}
		}
	}

	if len(rawCurrent) > 0 {
		var stored *storedConversation
		if err := json.Unmarshal(rawCurrent, &stored); err != nil {
			discarded++
		} else if stored != nil {
			conv := stored.normalize(now)
			current = &conv
		}
	}
	return conversations, current, discarded
}
