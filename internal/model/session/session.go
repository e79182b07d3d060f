package session

import (
	"time"

	"github.com/studyloop/intake/internal/profile"
)

// Turn roles. The transcript only ever contains these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single transcript entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one ongoing intake conversation, keyed by a caller-supplied
// identifier. The transcript is append-only; Complete only ever moves
// false to true.
type Session struct {
	ID         string       `json:"session_id"`
	Transcript []Turn       `json:"transcript"`
	Profile    *profile.Map `json:"profile"`
	Complete   bool         `json:"complete"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Summary is the listing projection of a session.
type Summary struct {
	ID        string    `json:"session_id"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
}

// Window returns the trailing n turns of the transcript, or the whole
// transcript when it is shorter than n.
func Window(transcript []Turn, n int) []Turn {
	if n <= 0 || len(transcript) <= n {
		return transcript
	}
	return transcript[len(transcript)-n:]
}
