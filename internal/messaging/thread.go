// Package messaging is the in-memory chat thread of the messages screen.
package messaging

import (
	"strings"
	"sync"
	"time"

	"marketpaline/internal/domain"
)

// AutoReply is what the other side answers when the thread is refreshed.
const AutoReply = "I have received your request. Let me check my schedule."

const clockLayout = "03:04 PM"

// Thread is safe for concurrent use; the API appends delayed replies from
// timer goroutines.
type Thread struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func NewThread(seed []domain.Message) *Thread {
	return &Thread{msgs: append([]domain.Message(nil), seed...)}
}

// Send appends an outgoing message. Blank text is ignored and ok is false.
func (t *Thread) Send(text string, now time.Time) (domain.Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, false
	}
	return t.add(domain.SenderMe, text, now), true
}

func (t *Thread) Reply(text string, now time.Time) domain.Message {
	return t.add(domain.SenderOther, text, now)
}

func (t *Thread) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.msgs...)
}

func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}

func (t *Thread) add(from domain.Sender, text string, now time.Time) domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := domain.Message{ID: len(t.msgs) + 1, Sender: from, Text: text, Timestamp: now.Format(clockLayout)}
	t.msgs = append(t.msgs, m)
	return m
}

// ContactName is the header of the messages screen.
func ContactName(selected *domain.Listing) string {
	if selected == nil || selected.SellerName == "" {
		return "Messages"
	}
	return selected.SellerName
}
