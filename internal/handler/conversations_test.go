package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/store"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
)

func newConversationServer(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "assistant.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	h := NewConversationHandler(st, logger.NewNop())
	r := chi.NewRouter()
	r.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/", h.Clear)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return st, srv
}

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestConversationLifecycle(t *testing.T) {
	t.Parallel()
	st, srv := newConversationServer(t)

	// Create
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/conversations")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created model.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Title != model.SentinelTitle {
		t.Errorf("created title = %q", created.Title)
	}

	// Seed a message so the list has content worth asserting on.
	if _, err := st.AppendMessage(model.Message{
		ID:        "m1",
		Role:      model.RoleUser,
		Content:   "hello there assistant",
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	// List
	resp = doRequest(t, http.MethodGet, srv.URL+"/api/conversations")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list model.ListConversationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Conversations) != 1 {
		t.Fatalf("list = %+v, want one conversation", list)
	}
	if list.Conversations[0].Title != "hello there assistant" {
		t.Errorf("listed title = %q", list.Conversations[0].Title)
	}

	// Get
	resp = doRequest(t, http.MethodGet, srv.URL+"/api/conversations/"+created.ID)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d", resp.StatusCode)
	}

	// Delete
	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/conversations/"+created.ID)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/conversations/"+created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestConversationGetErrors(t *testing.T) {
	t.Parallel()
	_, srv := newConversationServer(t)

	// Malformed id rejected before the store is consulted.
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/conversations/not-a-uuid")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/conversations/00000000-0000-7000-8000-000000000000")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func TestConversationClear(t *testing.T) {
	t.Parallel()
	st, srv := newConversationServer(t)

	if _, err := st.NewConversation(); err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if _, err := st.NewConversation(); err != nil {
		t.Fatalf("NewConversation: %v", err)
	}

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/conversations")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", resp.StatusCode)
	}
	if got := len(st.Conversations()); got != 0 {
		t.Errorf("collection size after clear = %d", got)
	}
}
