package genie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestWaitForCompletionReturnsOnCompleted(t *testing.T) {
	var polls int
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			fmt.Fprint(w, `{"id":"msg-1","status":"EXECUTING_QUERY"}`)
			return
		}
		fmt.Fprint(w, `{"id":"msg-1","status":"COMPLETED","content":"done"}`)
	})

	poller := NewPoller(time.Millisecond, time.Second)
	msg, err := poller.WaitForCompletion(context.Background(), client, "conv-1", "msg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", msg.Status)
	}
	if polls != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
}

func TestWaitForCompletionReturnsErrorStatusAsMessage(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg-1","status":"FAILED"}`)
	})

	poller := NewPoller(time.Millisecond, time.Second)
	msg, err := poller.WaitForCompletion(context.Background(), client, "conv-1", "msg-1")
	if err != nil {
		t.Fatalf("expected no error for a service-reported failure, got %v", err)
	}
	if msg.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", msg.Status)
	}
}

func TestWaitForCompletionTimesOut(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg-1","status":"EXECUTING_QUERY"}`)
	})

	poller := NewPoller(5*time.Millisecond, 20*time.Millisecond)
	_, err := poller.WaitForCompletion(context.Background(), client, "conv-1", "msg-1")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
}

func TestWaitForCompletionObservesCancellation(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"msg-1","status":"EXECUTING_QUERY"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	poller := NewPoller(time.Hour, time.Hour)
	_, err := poller.WaitForCompletion(ctx, client, "conv-1", "msg-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
