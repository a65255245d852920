package genie

import (
	"encoding/json"
	"strconv"
)

// Message statuses reported by the service. COMPLETED, ERROR and FAILED
// are terminal; anything else means the question is still being worked on.
const (
	StatusCompleted = "COMPLETED"
	StatusError     = "ERROR"
	StatusFailed    = "FAILED"
)

type StartConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// sendMessageResponse tolerates both field names the service has used for
// the created message id.
type sendMessageResponse struct {
	MessageID string `json:"message_id"`
	ID        string `json:"id"`
}

type Message struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Content     string       `json:"content,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Terminal reports whether no further polling is needed.
func (m *Message) Terminal() bool {
	switch m.Status {
	case StatusCompleted, StatusError, StatusFailed:
		return true
	}
	return false
}

// Attachment is one unit of a completed message's payload: prose text or a
// reference to a generated query, never both.
type Attachment struct {
	AttachmentID string           `json:"attachment_id"`
	Text         *TextAttachment  `json:"text,omitempty"`
	Query        *QueryAttachment `json:"query,omitempty"`
}

type TextAttachment struct {
	Content string `json:"content"`
}

type QueryAttachment struct {
	Query       string `json:"query"`
	Description string `json:"description,omitempty"`
}

// QueryResult mirrors the statement-execution envelope returned by the
// query-result endpoint.
type QueryResult struct {
	StatementResponse StatementResponse `json:"statement_response"`
}

type StatementResponse struct {
	Result   StatementData     `json:"result"`
	Manifest StatementManifest `json:"manifest"`
}

type StatementData struct {
	DataArray []Row `json:"data_array"`
}

// Row is one result row. The service types cells per the warehouse schema
// (numbers, booleans, nulls come through as JSON scalars), so decoding
// accepts any scalar and renders it to its display string.
type Row []string

func (r *Row) UnmarshalJSON(data []byte) error {
	var cells []any
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = cellString(cell)
	}
	*r = out
	return nil
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		b, _ := json.Marshal(c)
		return string(b)
	}
}

type StatementManifest struct {
	Schema ResultSchema `json:"schema"`
}

type ResultSchema struct {
	Columns []ResultColumn `json:"columns"`
}

type ResultColumn struct {
	Name string `json:"name"`
}

// Table is the materialized tabular answer handed to the presentation
// layer.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type AnswerKind string

const (
	AnswerText  AnswerKind = "text"
	AnswerTable AnswerKind = "table"
)

// Answer is a resolved terminal message: either prose or a table, the
// latter carrying the SQL that produced it.
type Answer struct {
	Kind  AnswerKind `json:"kind"`
	Text  string     `json:"text,omitempty"`
	Table *Table     `json:"table,omitempty"`
	Query string     `json:"query,omitempty"`
}
