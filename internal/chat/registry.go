package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yuanchaoma-db/genie-space/internal/genie"
	"github.com/yuanchaoma-db/genie-space/internal/logger"
	"github.com/yuanchaoma-db/genie-space/internal/sqlfmt"
)

// Registry holds every session created in this process, most recently
// active first. One session (or none) is active; the registry also keeps
// the displayed transcript — what the UI last rendered — separately from
// each session's authoritative turns, so a new-chat discard can strip a
// placeholder from view while the background flow finishes silently.
type Registry struct {
	assistant Assistant

	mu        sync.Mutex
	sessions  []*Session
	active    *Session
	display   []Turn
	displayID string
}

// SessionInfo is the list entry handed to the presentation layer.
type SessionInfo struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

func NewRegistry(assistant Assistant) *Registry {
	return &Registry{assistant: assistant}
}

// Submit routes a question to a fresh session (newChat, or nothing exists
// yet) or to the active one, relocating it to the front. The remote
// exchange runs in its own goroutine; the returned PendingRequest is the
// correlation handle. ErrBusy when the target session already has a
// request in flight — nothing is recorded in that case.
func (r *Registry) Submit(question string, newChat bool) (*PendingRequest, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("empty question")
	}

	r.mu.Lock()
	sess := r.active
	fresh := newChat || sess == nil
	if fresh {
		sess = newSession()
	}
	r.mu.Unlock()

	pending, err := sess.begin(question)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if fresh {
		r.sessions = append([]*Session{sess}, r.sessions...)
	} else {
		r.moveToFrontLocked(sess)
	}
	r.active = sess
	r.display = sess.Turns()
	r.displayID = sess.ID()
	r.mu.Unlock()

	go r.run(sess, pending)

	return pending, nil
}

// run drives one submitted question to completion: start or continue the
// remote conversation, wait for a terminal status, resolve the answer, and
// swap it in for the placeholder. Every failure becomes an error turn; the
// session is submittable again afterwards.
func (r *Registry) run(sess *Session, pending *PendingRequest) {
	ctx := context.Background()

	turn := r.exchange(ctx, sess, pending.Text)
	sess.complete(pending.Generation, turn)
	r.syncDisplay(sess, pending.Generation, turn)

	logger.Debug("request resolved", "session", pending.SessionID, "kind", turn.Kind)
}

func (r *Registry) exchange(ctx context.Context, sess *Session, question string) Turn {
	conversationID := sess.conversation()

	var messageID string
	var err error
	if conversationID == "" {
		conversationID, messageID, err = r.assistant.StartConversation(ctx, question)
		if err == nil {
			sess.setConversation(conversationID)
		}
	} else {
		messageID, err = r.assistant.SendMessage(ctx, conversationID, question)
	}
	if err != nil {
		logger.Error("submit failed", "session", sess.ID(), "error", err)
		return errorTurn(err)
	}

	msg, err := r.assistant.Await(ctx, conversationID, messageID)
	if err != nil {
		logger.Error("poll failed", "session", sess.ID(), "error", err)
		return errorTurn(err)
	}

	if msg.Status != genie.StatusCompleted {
		logger.Warn("assistant reported failure", "session", sess.ID(), "status", msg.Status)
		return Turn{Kind: TurnError, Text: "Sorry, Genie could not answer this question. Please try rephrasing it."}
	}

	answer, err := r.assistant.Resolve(ctx, conversationID, messageID, msg)
	if err != nil {
		logger.Error("resolve failed", "session", sess.ID(), "error", err)
		return errorTurn(err)
	}

	return answerTurn(answer)
}

func answerTurn(answer *genie.Answer) Turn {
	turn := Turn{Kind: TurnAnswer}
	switch answer.Kind {
	case genie.AnswerTable:
		turn.Table = answer.Table
		turn.Query = sqlfmt.Format(answer.Query)
	default:
		turn.Text = answer.Text
	}
	return turn
}

// errorTurn maps a failure to the prose shown in the transcript.
func errorTurn(err error) Turn {
	text := "Sorry, an error occurred: " + err.Error() + ". Please try again."

	switch {
	case errors.Is(err, genie.ErrPollTimeout):
		text = "Sorry, the request timed out. Please try again."
	case strings.Contains(err.Error(), "429") || strings.Contains(err.Error(), "Too Many Requests"):
		text = "Sorry, the system is currently experiencing high demand. Please try again in a few moments."
	case strings.Contains(err.Error(), "Conversation not found"):
		text = "Sorry, the previous conversation has expired. Please try your query again to start a new conversation."
	}

	return Turn{Kind: TurnError, Text: text}
}

// syncDisplay mirrors a completed turn into the displayed transcript, but
// only when that session is still the one on screen and its placeholder is
// still rendered. A stale completion never touches the display.
func (r *Registry) syncDisplay(sess *Session, generation uint64, turn Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.displayID != sess.ID() {
		return
	}

	for i := len(r.display) - 1; i >= 0; i-- {
		if r.display[i].Kind == TurnPending && r.display[i].generation == generation {
			r.display[i] = turn
			return
		}
	}
}

// SwitchActive repoints the display at another session. A pure read: no
// session content changes and pending work elsewhere keeps running.
func (r *Registry) SwitchActive(index int) ([]Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.sessions) {
		return nil, errors.New("no such session")
	}

	sess := r.sessions[index]
	r.active = sess
	r.display = sess.Turns()
	r.displayID = sess.ID()

	return append([]Turn(nil), r.display...), nil
}

// Reset returns the UI to the welcome state. With discardPending, an
// in-flight placeholder is stripped from the abandoned session's stored
// transcript and its remote conversation context is released; the session
// itself, and the answer its background flow eventually produces, persist.
func (r *Registry) Reset(discardPending bool) {
	r.mu.Lock()
	prev := r.active
	r.active = nil
	r.display = nil
	r.displayID = ""
	r.mu.Unlock()

	if prev != nil && discardPending {
		prev.discardPending()
	}
}

// ClearContext releases the remote conversation id of a session so its
// next question starts a fresh remote conversation.
func (r *Registry) ClearContext(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sess := range r.sessions {
		if sess.ID() == sessionID {
			sess.clearConversation()
			return nil
		}
	}
	return errors.New("no such session")
}

// Sessions lists every retained session, most recently active first.
func (r *Registry) Sessions() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, sess := range r.sessions {
		infos = append(infos, SessionInfo{
			ID:     sess.ID(),
			Label:  sess.Title(),
			Active: sess == r.active,
		})
	}
	return infos
}

// Transcript returns the displayed transcript and whether the active
// session has a request in flight.
func (r *Registry) Transcript() ([]Turn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	busy := r.active != nil && r.active.InFlight()
	return append([]Turn(nil), r.display...), busy
}

// Reconcile forces the display to match the authoritative transcript when
// the display still shows a placeholder the background flow has already
// resolved. Idempotent; run periodically.
func (r *Registry) Reconcile() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.displayID == "" || len(r.display) == 0 {
		return
	}
	if r.display[len(r.display)-1].Kind != TurnPending {
		return
	}

	var sess *Session
	for _, s := range r.sessions {
		if s.ID() == r.displayID {
			sess = s
			break
		}
	}
	if sess == nil {
		return
	}

	turns := sess.Turns()
	if len(turns) > 0 && turns[len(turns)-1].Kind == TurnPending {
		return
	}

	logger.Debug("display out of sync, forcing refresh", "session", r.displayID)
	r.display = turns
}

func (r *Registry) moveToFrontLocked(sess *Session) {
	for i, s := range r.sessions {
		if s == sess {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			r.sessions = append([]*Session{sess}, r.sessions...)
			return
		}
	}
}
