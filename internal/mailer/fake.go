package mailer

import (
	"context"
	"sync"
)

// SentMessage is one message captured by the recording fake.
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// Recorder is an in-memory Mailer for tests and local development.
type Recorder struct {
	mu       sync.Mutex
	messages []SentMessage
	Err      error
}

// Send captures the message instead of delivering it.
func (r *Recorder) Send(ctx context.Context, to, subject, body string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, SentMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SentMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
