package services

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

// DefaultNoticeTTL is how long a notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// Notifier holds at most one transient notice. Each new notice replaces the
// previous one and restarts the single auto-clear timer.
type Notifier struct {
	ttl time.Duration

	mu       sync.Mutex
	current  *models.Notice
	timer    *time.Timer
	gen      uint64
	listener func(models.Notice, bool)
}

// NewNotifier returns a notifier clearing notices after ttl
// (DefaultNoticeTTL when ttl <= 0).
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notifier{ttl: ttl}
}

// OnChange registers fn to be called after a notice is set (true) or
// cleared (false). fn runs outside the notifier lock.
func (n *Notifier) OnChange(fn func(notice models.Notice, visible bool)) {
	n.mu.Lock()
	n.listener = fn
	n.mu.Unlock()
}

func (n *Notifier) Success(text string) { n.set(models.NoticeSuccess, text) }

func (n *Notifier) Error(text string) { n.set(models.NoticeError, text) }

func (n *Notifier) set(kind models.NoticeKind, text string) {
	notice := models.Notice{Kind: kind, Text: text, Created: time.Now()}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = &notice
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	listener := n.listener
	n.mu.Unlock()

	if listener != nil {
		listener(notice, true)
	}
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.current == nil {
		n.mu.Unlock()
		return
	}
	old := *n.current
	n.current = nil
	n.timer = nil
	listener := n.listener
	n.mu.Unlock()

	if listener != nil {
		listener(old, false)
	}
}

// Current returns the visible notice, if any.
func (n *Notifier) Current() (models.Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return models.Notice{}, false
	}
	return *n.current, true
}

// Clear dismisses the visible notice and its timer.
func (n *Notifier) Clear() {
	n.mu.Lock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
	n.mu.Unlock()
}
