package web

import (
	"sync"
	"time"
)

const noticeTTL = 5 * time.Second

// Message is one banner entry.
type Message struct {
	Title string
	Body  string
	Modal bool
}

// Banner holds the messages shown at the top of every page: short-lived
// refresh notices and push notifications that stay until dismissed.
type Banner struct {
	mu      sync.Mutex
	notice  string
	expires time.Time
	modal   *Message
	now     func() time.Time
}

// NewBanner creates an empty banner.
func NewBanner() *Banner {
	return &Banner{now: time.Now}
}

// Notice shows a transient message.
func (b *Banner) Notice(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = message
	b.expires = b.now().Add(noticeTTL)
}

// Show displays a notification until Dismiss is called.
func (b *Banner) Show(title, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modal = &Message{Title: title, Body: body, Modal: true}
}

// Dismiss clears the notification.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modal = nil
}

// Messages returns what should be displayed now, modal first.
func (b *Banner) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Message
	if b.modal != nil {
		out = append(out, *b.modal)
	}
	if b.notice != "" && b.now().Before(b.expires) {
		out = append(out, Message{Body: b.notice})
	}
	return out
}
