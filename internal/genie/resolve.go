package genie

import (
	"context"
	"fmt"
)

// noResponseText is the sentinel shown when a completed message carries
// nothing displayable.
const noResponseText = "No response available"

// Resolve turns a terminal message into a displayable answer. The fallback
// order is fixed: first text attachment, else first query attachment's
// result, else the top-level message content, else a sentinel. Text
// attachments always win over query attachments.
func Resolve(ctx context.Context, client *Client, conversationID, messageID string, msg *Message) (*Answer, error) {
	for _, att := range msg.Attachments {
		if att.Text != nil && att.Text.Content != "" {
			return &Answer{Kind: AnswerText, Text: att.Text.Content}, nil
		}
	}

	for _, att := range msg.Attachments {
		if att.Query == nil {
			continue
		}

		result, err := client.GetQueryResult(ctx, conversationID, messageID, att.AttachmentID)
		if err != nil {
			return nil, fmt.Errorf("fetch query result: %w", err)
		}

		return &Answer{
			Kind:  AnswerTable,
			Table: materialize(result),
			Query: att.Query.Query,
		}, nil
	}

	if msg.Content != "" {
		return &Answer{Kind: AnswerText, Text: msg.Content}, nil
	}

	return &Answer{Kind: AnswerText, Text: noResponseText}, nil
}

// materialize builds a table from the statement response. Columns come
// from the schema when present, else column_0.. from the width of the
// first row. Zero rows still yield a table.
func materialize(result *QueryResult) *Table {
	data := result.StatementResponse.Result.DataArray
	rows := make([][]string, len(data))
	for i, row := range data {
		rows[i] = row
	}

	var columns []string
	for _, col := range result.StatementResponse.Manifest.Schema.Columns {
		columns = append(columns, col.Name)
	}
	if len(columns) == 0 && len(rows) > 0 {
		for i := range rows[0] {
			columns = append(columns, fmt.Sprintf("column_%d", i))
		}
	}
	if columns == nil {
		columns = []string{}
	}

	return &Table{Columns: columns, Rows: rows}
}
