package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one dialogue thread: a process-local identity, the remote
// conversation id once established, and an append-only transcript. At most
// one request is in flight per session at any time.
type Session struct {
	mu             sync.Mutex
	id             string
	title          string
	conversationID string
	turns          []Turn
	inflight       bool
	generation     uint64
}

func newSession() *Session {
	return &Session{id: uuid.NewString()}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Title is the literal text of the first question, used as the display
// label in the conversation list.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Turns returns a copy of the authoritative transcript.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// begin records the question and its placeholder and marks the session in
// flight. Returns ErrBusy without touching the transcript when a request
// is already outstanding.
func (s *Session) begin(question string) (*PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight {
		return nil, ErrBusy
	}

	if s.title == "" {
		s.title = question
	}

	s.generation++
	s.inflight = true
	s.turns = append(s.turns,
		Turn{Kind: TurnUser, Text: question},
		Turn{Kind: TurnPending, generation: s.generation},
	)

	return &PendingRequest{SessionID: s.id, Text: question, Generation: s.generation}, nil
}

// complete swaps the resolved turn in for the matching placeholder and
// clears the in-flight flag. When the placeholder was stripped by a
// new-chat discard, the turn is appended instead so the answer still
// lands in the session.
func (s *Session) complete(generation uint64, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight = false

	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Kind == TurnPending && s.turns[i].generation == generation {
			s.turns[i] = turn
			return
		}
	}

	s.turns = append(s.turns, turn)
}

// conversation returns the remote conversation id, empty until the first
// start-conversation call succeeds.
func (s *Session) conversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

func (s *Session) setConversation(id string) {
	s.mu.Lock()
	s.conversationID = id
	s.mu.Unlock()
}

// clearConversation drops the remote conversation id so the next question
// starts a fresh remote context.
func (s *Session) clearConversation() {
	s.mu.Lock()
	s.conversationID = ""
	s.mu.Unlock()
}

// discardPending strips the trailing placeholder from the stored
// transcript and releases the remote conversation context. The background
// flow keeps running; its answer is appended on completion.
func (s *Session) discardPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inflight {
		return
	}

	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].Kind == TurnPending {
			s.turns = append(s.turns[:i], s.turns[i+1:]...)
			break
		}
	}

	s.conversationID = ""
}
