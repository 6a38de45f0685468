package testkit

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/storefront/pkg/mail"
)

// MailRecorder is a mail.Transport backed by testify/mock. NewMailRecorder
// accepts everything; a zero MailRecorder takes the test's own expectations:
//
//	rec := &testkit.MailRecorder{}
//	rec.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
type MailRecorder struct {
	mock.Mock
	mu   sync.Mutex
	sent []mail.Envelope
}

func NewMailRecorder() *MailRecorder {
	r := &MailRecorder{}
	r.On("Deliver", mock.Anything, mock.Anything).Return(nil).Maybe()
	return r
}

func (r *MailRecorder) Deliver(ctx context.Context, env mail.Envelope) error {
	r.mu.Lock()
	r.sent = append(r.sent, env)
	r.mu.Unlock()
	return r.Called(ctx, env).Error(0)
}

// Sent returns a copy of every envelope delivered so far.
func (r *MailRecorder) Sent() []mail.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Envelope(nil), r.sent...)
}

// Count returns how many delivered envelopes have a subject starting with
// prefix.
func (r *MailRecorder) Count(prefix string) int {
	n := 0
	for _, env := range r.Sent() {
		if strings.HasPrefix(env.Subject, prefix) {
			n++
		}
	}
	return n
}

// Install swaps the recorder in as the mail transport until the returned
// function is called.
func (r *MailRecorder) Install() (restore func()) {
	prev := mail.SetTransport(r)
	return func() { mail.SetTransport(prev) }
}
