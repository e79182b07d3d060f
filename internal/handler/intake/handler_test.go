package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studyloop/intake/internal/model/session"
	"github.com/studyloop/intake/internal/profile"
	intakeService "github.com/studyloop/intake/internal/service/intake"
)

type stubStore struct {
	sessions map[string]session.Session
	order    []string
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[string]session.Session)}
}

func (s *stubStore) Load(_ context.Context, id string) (session.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := session.Session{ID: id, Profile: profile.New(), CreatedAt: time.Now().UTC()}
	s.sessions[id] = sess
	s.order = append(s.order, id)
	return sess, nil
}

func (s *stubStore) Save(_ context.Context, id string, prof *profile.Map, transcript []session.Turn, complete bool) error {
	sess := s.sessions[id]
	sess.ID = id
	sess.Profile = prof
	sess.Transcript = transcript
	sess.Complete = complete
	s.sessions[id] = sess
	return nil
}

func (s *stubStore) List(_ context.Context) ([]session.Summary, error) {
	summaries := make([]session.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		sess := s.sessions[s.order[i]]
		summaries = append(summaries, session.Summary{ID: sess.ID, Complete: sess.Complete, CreatedAt: sess.CreatedAt})
	}
	return summaries, nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubDialogue struct {
	facts map[string]string
	reply string
}

func (d *stubDialogue) ExtractFacts(context.Context, []session.Turn, string, *profile.Map) (map[string]string, error) {
	return d.facts, nil
}

func (d *stubDialogue) GenerateReply(context.Context, []session.Turn, *profile.Map, string) (string, error) {
	return d.reply, nil
}

func setupRouter(dialogue *stubDialogue) (*chi.Mux, *stubStore) {
	store := newStubStore()
	svc := intakeService.NewService(store, dialogue, zap.NewNop())
	handler := New(svc, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func postChat(t *testing.T, r http.Handler, body map[string]any) chatResponse {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var decoded chatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func TestChatFirstMessage(t *testing.T) {
	r, _ := setupRouter(&stubDialogue{})

	resp := postChat(t, r, map[string]any{
		"session_id":       "abc",
		"message":          "hello",
		"is_first_message": true,
	})

	if resp.Question != intakeService.Greeting {
		t.Fatalf("expected greeting, got %q", resp.Question)
	}
	if resp.Progress != 0 || resp.IsComplete {
		t.Fatalf("unexpected first-message response: %+v", resp)
	}
	if resp.SessionID != "abc" {
		t.Fatalf("session id not echoed: %q", resp.SessionID)
	}
}

func TestChatMintsSessionID(t *testing.T) {
	r, _ := setupRouter(&stubDialogue{reply: "Nice!"})

	resp := postChat(t, r, map[string]any{"message": "hi"})

	if resp.SessionID == "" {
		t.Fatal("expected a minted session id")
	}
}

func TestChatTurnResponse(t *testing.T) {
	r, store := setupRouter(&stubDialogue{
		facts: map[string]string{
			"current_degree":      "Bachelors",
			"current_major":       "Computer Science",
			"current_institution": "LUMS",
		},
		reply: "Nice! What year are you in?",
	})

	resp := postChat(t, r, map[string]any{
		"session_id": "abc",
		"message":    "I'm doing bachelors in CS from LUMS",
	})

	if resp.Progress != 16 {
		t.Fatalf("expected progress 16, got %d", resp.Progress)
	}
	if store.sessions["abc"].Profile.Len() != 3 {
		t.Fatalf("expected 3 persisted facts, got %d", store.sessions["abc"].Profile.Len())
	}
}

func TestChatInvalidBody(t *testing.T) {
	r, _ := setupRouter(&stubDialogue{})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetSessionReturnsFullState(t *testing.T) {
	r, _ := setupRouter(&stubDialogue{reply: "Got it. How's LUMS treating you?"})

	postChat(t, r, map[string]any{"session_id": "abc", "message": "I'm at LUMS"})

	req := httptest.NewRequest(http.MethodGet, "/session/abc", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var sess struct {
		SessionID  string         `json:"session_id"`
		Transcript []session.Turn `json:"transcript"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.SessionID != "abc" || len(sess.Transcript) != 2 {
		t.Fatalf("unexpected session state: %+v", sess)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	r, _ := setupRouter(&stubDialogue{reply: "Nice!"})

	postChat(t, r, map[string]any{"session_id": "first", "message": "a"})
	postChat(t, r, map[string]any{"session_id": "second", "message": "b"})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summaries []session.Summary
	if err := json.Unmarshal(resp.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != "second" {
		t.Fatalf("expected newest-first listing, got %+v", summaries)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	r, store := setupRouter(&stubDialogue{reply: "Nice!"})

	postChat(t, r, map[string]any{"session_id": "abc", "message": "hi"})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/session/abc", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 on delete, got %d", resp.Code)
		}
	}
	if _, ok := store.sessions["abc"]; ok {
		t.Fatal("session was not deleted")
	}
}
