package scan

import "sync"

// Mailbox is a single-slot, latest-wins channel between the scan goroutines
// and the frame loop. A slow consumer only ever sees the newest message and
// producers never block.
type Mailbox struct {
	mu     sync.Mutex
	msg    Message
	notify chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

// Offer replaces any pending message with m. Offering to a nil mailbox
// discards m.
func (b *Mailbox) Offer(m Message) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.msg = m
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Take returns and clears the pending message.
func (b *Mailbox) Take() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.msg
	b.msg = nil
	return m, m != nil
}

// Ready is signalled after every Offer. A receive does not guarantee a
// message: a previous Take may already have consumed it.
func (b *Mailbox) Ready() <-chan struct{} { return b.notify }
