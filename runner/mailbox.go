package runner

// Mailbox is a single slot, most-recent-wins channel.
// Put never blocks, a pending value is replaced by the new one.
// Intended for one sender and one receiver.
type Mailbox[T any] struct {
	ch chan T
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, dropping any value not yet taken.
func (mb *Mailbox[T]) Put(v T) {
	for {
		select {
		case mb.ch <- v:
			return
		default:
		}
		// Full, discard the stale value and retry.
		select {
		case <-mb.ch:
		default:
		}
	}
}

// Take returns the pending value, if any, without blocking.
func (mb *Mailbox[T]) Take() (T, bool) {
	select {
	case v := <-mb.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// C exposes the slot for use in a select.
func (mb *Mailbox[T]) C() <-chan T { return mb.ch }
