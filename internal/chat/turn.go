// Package chat owns the conversation state: sessions, their transcripts,
// the registry ordering them, and the periodic reconciler keeping the
// rendered transcript in step with the authoritative one.
package chat

import (
	"context"
	"errors"

	"github.com/yuanchaoma-db/genie-space/internal/genie"
)

// ErrBusy signals that a submit was rejected because a request is already
// in flight for the session. A control signal, not a failure: nothing is
// mutated and no turn is recorded.
var ErrBusy = errors.New("a request is already in flight for this session")

type TurnKind string

const (
	TurnUser    TurnKind = "user"
	TurnPending TurnKind = "pending"
	TurnAnswer  TurnKind = "answer"
	TurnError   TurnKind = "error"
)

// Turn is one entry in a session transcript: the user's question, the
// transient in-progress placeholder, a resolved answer, or an error
// rendered as prose. Pending turns are replaced in place, never
// duplicated, once the real answer arrives.
type Turn struct {
	Kind       TurnKind     `json:"kind"`
	Text       string       `json:"text,omitempty"`
	Table      *genie.Table `json:"table,omitempty"`
	Query      string       `json:"query,omitempty"`
	generation uint64
}

// PendingRequest correlates a submitted question with its eventual
// response. The generation marker advances per session so a completion
// belonging to a superseded request can be told apart from the live one.
type PendingRequest struct {
	SessionID  string
	Text       string
	Generation uint64
}

// Assistant is the remote-service surface the chat layer drives. Implemented
// by genie.Service; tests substitute stubs.
type Assistant interface {
	StartConversation(ctx context.Context, question string) (conversationID, messageID string, err error)
	SendMessage(ctx context.Context, conversationID, question string) (messageID string, err error)
	Await(ctx context.Context, conversationID, messageID string) (*genie.Message, error)
	Resolve(ctx context.Context, conversationID, messageID string, msg *genie.Message) (*genie.Answer, error)
}
