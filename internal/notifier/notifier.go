package notifier

import (
	"sync"
	"time"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/logger"
)

// Kind selects one of the two banner slots
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notification is the content of one banner slot
type Notification struct {
	Kind       Kind
	Text       string
	Generation uint64
	ExpiresAt  time.Time
}

type timer interface {
	Stop() bool
}

var (
	nowFunc   = time.Now
	afterFunc = func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }
)

// Sink receives every slot change with the slot generation it belongs to.
// A nil notification means the slot was cleared. Calls may arrive out of
// order; a receiver should ignore generations older than the last one seen.
type Sink func(kind Kind, gen uint64, n *Notification)

// Notifier keeps at most one banner per kind. Each push bumps the slot's
// generation; a pending expiry only clears the slot if its generation still
// matches.
type Notifier struct {
	mu     sync.Mutex
	slots  [2]*Notification
	timers [2]timer
	gens   [2]uint64
	ttl    [2]time.Duration
	sink   Sink
}

type Option func(*Notifier)

// WithTTL overrides the auto-dismiss durations
func WithTTL(success, err time.Duration) Option {
	return func(n *Notifier) {
		n.ttl[KindSuccess] = success
		n.ttl[KindError] = err
	}
}

// WithSink forwards slot changes, typically into the application store
func WithSink(s Sink) Option {
	return func(n *Notifier) { n.sink = s }
}

func New(opts ...Option) *Notifier {
	n := &Notifier{}
	n.ttl[KindSuccess] = constants.SuccessNotifyTTL
	n.ttl[KindError] = constants.ErrorNotificationTTL
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Success shows a success banner
func (n *Notifier) Success(text string) Notification {
	return n.Notify(KindSuccess, text)
}

// Error shows an error banner
func (n *Notifier) Error(text string) Notification {
	logger.Debug("Error banner", "text", text)
	return n.Notify(KindError, text)
}

// Notify replaces the banner of the given kind and re-arms its expiry
func (n *Notifier) Notify(kind Kind, text string) Notification {
	n.mu.Lock()
	if n.timers[kind] != nil {
		n.timers[kind].Stop()
	}
	n.gens[kind]++
	gen := n.gens[kind]
	ttl := n.ttl[kind]
	note := &Notification{Kind: kind, Text: text, Generation: gen, ExpiresAt: nowFunc().Add(ttl)}
	n.slots[kind] = note
	n.timers[kind] = afterFunc(ttl, func() { n.expire(kind, gen) })
	sink := n.sink
	n.mu.Unlock()

	if sink != nil {
		cp := *note
		sink(kind, gen, &cp)
	}
	return *note
}

// DismissError clears the error banner early. Success banners only expire.
func (n *Notifier) DismissError() {
	n.mu.Lock()
	gen := n.gens[KindError]
	n.mu.Unlock()
	n.expire(KindError, gen)
}

// Current returns the visible banner of a kind
func (n *Notifier) Current(kind Kind) (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.slots[kind] == nil {
		return Notification{}, false
	}
	return *n.slots[kind], true
}

// Close stops pending timers without clearing the slots
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, t := range n.timers {
		if t != nil {
			t.Stop()
			n.timers[i] = nil
		}
	}
}

// Reset clears both slots, as on logout
func (n *Notifier) Reset() {
	n.mu.Lock()
	for i := range n.slots {
		if n.timers[i] != nil {
			n.timers[i].Stop()
			n.timers[i] = nil
		}
		n.gens[i]++
		n.slots[i] = nil
	}
	gens := n.gens
	sink := n.sink
	n.mu.Unlock()

	if sink != nil {
		sink(KindSuccess, gens[KindSuccess], nil)
		sink(KindError, gens[KindError], nil)
	}
}

func (n *Notifier) expire(kind Kind, gen uint64) {
	n.mu.Lock()
	if n.gens[kind] != gen || n.slots[kind] == nil {
		n.mu.Unlock()
		return
	}
	n.slots[kind] = nil
	n.timers[kind] = nil
	sink := n.sink
	n.mu.Unlock()

	if sink != nil {
		sink(kind, gen, nil)
	}
}
