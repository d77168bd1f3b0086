// Package buffer implements the bounded frame queue that sits between
// the capture loop and the encoder.
package buffer

import (
	"fmt"
	"sync"
	"time"

	"github.com/screenkit/screenkit/pkg/media"
)

// Policy decides what happens when a frame is pushed into a full buffer.
type Policy int

const (
	// DropNewest evicts the most recently queued frame and appends the incoming one,
	// so the tail always tracks wall-clock time.
	DropNewest Policy = iota
	// DropOldest evicts the head of the queue.
	DropOldest
	// Block makes the producer wait for free space up to Options.Wait,
	// then rejects the incoming frame.
	Block
)

const (
	DefaultCapacity = 30
	DefaultWait     = 50 * time.Millisecond
)

func (p Policy) String() string {
	switch p {
	case DropNewest:
		return "drop-newest"
	case DropOldest:
		return "drop-oldest"
	case Block:
		return "block"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "drop-newest":
		return DropNewest, nil
	case "drop-oldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	}
	return DropNewest, fmt.Errorf("unknown buffer policy [%v]", s)
}

type Options struct {
	Capacity int
	Policy   Policy
	Wait     time.Duration
}

type Stats struct {
	Pushed  uint64
	Dropped uint64
	Popped  uint64
	Len     int
	Cap     int
	Closed  bool
}

// Buffer is a FIFO queue of frames with a fixed capacity.
// Frames are never reordered or duplicated; an overflow removes exactly one frame.
type Buffer struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	q      []media.Frame
	head   int
	size   int
	closed bool
	last   time.Time

	opts Options

	pushed  uint64
	dropped uint64
	popped  uint64
}

func New(opts Options) *Buffer {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Policy == Block && opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	b := &Buffer{q: make([]media.Frame, opts.Capacity), opts: opts}
	b.notEmpty = sync.NewCond(&b.mu)
	b.notFull = sync.NewCond(&b.mu)
	return b
}

// Push appends a frame to the tail of the queue.
// It returns false if the frame was not accepted, either because the buffer
// is closed or because it stayed full for the whole wait of the Block policy.
func (b *Buffer) Push(f media.Frame) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if b.full() {
		switch b.opts.Policy {
		case DropNewest:
			b.size--
			b.dropped++
		case DropOldest:
			b.q[b.head] = media.Frame{}
			b.head = (b.head + 1) % len(b.q)
			b.size--
			b.dropped++
		case Block:
			if !b.waitNotFull(b.opts.Wait) {
				b.dropped++
				return false
			}
			if b.closed {
				return false
			}
		}
	}

	if f.CapturedAt.Before(b.last) {
		f.CapturedAt = b.last
	}
	b.last = f.CapturedAt

	b.q[(b.head+b.size)%len(b.q)] = f
	b.size++
	b.pushed++
	b.notEmpty.Signal()
	return true
}

// waitNotFull waits until there is a free slot, the buffer is closed or d has passed.
// Must be called with the lock held.
func (b *Buffer) waitNotFull(d time.Duration) bool {
	deadline := time.Now().Add(d)
	t := time.AfterFunc(d, func() {
		b.mu.Lock()
		b.notFull.Broadcast()
		b.mu.Unlock()
	})
	defer t.Stop()
	for b.full() && !b.closed && time.Now().Before(deadline) {
		b.notFull.Wait()
	}
	return !b.full() || b.closed
}

// Pop removes the head frame, waiting for one if the buffer is empty.
// The second value is false when the buffer is closed and fully drained.
func (b *Buffer) Pop() (media.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.size == 0 && !b.closed {
		b.notEmpty.Wait()
	}
	return b.pop()
}

// TryPop is Pop without waiting.
func (b *Buffer) TryPop() (media.Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pop()
}

func (b *Buffer) pop() (media.Frame, bool) {
	if b.size == 0 {
		return media.Frame{}, false
	}
	f := b.q[b.head]
	b.q[b.head] = media.Frame{}
	b.head = (b.head + 1) % len(b.q)
	b.size--
	b.popped++
	b.notFull.Signal()
	return f, true
}

// Close stops accepting new frames. Queued frames stay poppable.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Pushed:  b.pushed,
		Dropped: b.dropped,
		Popped:  b.popped,
		Len:     b.size,
		Cap:     len(b.q),
		Closed:  b.closed,
	}
}

func (b *Buffer) full() bool { return b.size == len(b.q) }
