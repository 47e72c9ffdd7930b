// Package edittest provides fakes for testing the line editor.
package edittest

import (
	"io"
	"sync"
	"time"

	"src.shline.sh/pkg/cli/term"
	"src.shline.sh/pkg/edit"
)

// Maximum number of items that can be queued in a FakeTTY.
const fakeTTYItems = 4096

// Initial size of a fake terminal.
const (
	FakeTTYHeight = 20
	FakeTTYWidth  = 50
)

// An item in the input queue of a fake terminal.
type item struct {
	event term.Event
	err   error
	// If non-nil, called when the item is reached instead of returning.
	do func()
}

// An implementation of the edit.TTY interface that is useful in tests.
type fakeTTY struct {
	setup func() (func(), error)

	queue       chan item
	queueClosed bool
	queueMutex  sync.Mutex

	resizeCh chan struct{}

	sizeMutex     sync.RWMutex
	height, width int

	countMutex      sync.Mutex
	setups, restore int
}

// NewFakeTTY creates a fake terminal and a handle for controlling it.
func NewFakeTTY() (edit.TTY, TTYCtrl) {
	tty := &fakeTTY{
		queue:    make(chan item, fakeTTYItems),
		resizeCh: make(chan struct{}, 1),
		height:   FakeTTYHeight, width: FakeTTYWidth,
	}
	return tty, TTYCtrl{tty}
}

// Delegates to the function set with TTYCtrl.SetSetup, and counts calls to
// the setup and restore functions.
func (t *fakeTTY) Setup() (func(), error) {
	t.countMutex.Lock()
	t.setups++
	t.countMutex.Unlock()
	restore, err := func() {}, error(nil)
	if t.setup != nil {
		restore, err = t.setup()
	}
	if err != nil {
		return nil, err
	}
	return func() {
		t.countMutex.Lock()
		t.restore++
		t.countMutex.Unlock()
		restore()
	}, nil
}

// Returns the next queued item. When the queue is empty, it waits for at
// most timeout; when the queue is closed and drained, it returns io.EOF.
func (t *fakeTTY) ReadEvent(timeout time.Duration) (term.Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case it, ok := <-t.queue:
			if !ok {
				return nil, io.EOF
			}
			if it.do != nil {
				it.do()
				continue
			}
			return it.event, it.err
		case <-timer.C:
			return nil, term.ErrTimeout
		}
	}
}

func (t *fakeTTY) Size() (h, w int) {
	t.sizeMutex.RLock()
	defer t.sizeMutex.RUnlock()
	return t.height, t.width
}

func (t *fakeTTY) NotifyResize() <-chan struct{} { return t.resizeCh }

// TTYCtrl is a handle for controlling a fake terminal.
type TTYCtrl struct{ *fakeTTY }

// SetSetup sets the return values of the Setup method.
func (t TTYCtrl) SetSetup(restore func(), err error) {
	t.setup = func() (func(), error) { return restore, err }
}

// SetSize sets the size of the terminal and signals a resize.
func (t TTYCtrl) SetSize(h, w int) {
	t.sizeMutex.Lock()
	t.height, t.width = h, w
	t.sizeMutex.Unlock()
	select {
	case t.resizeCh <- struct{}{}:
	default:
	}
}

// Inject queues events.
func (t TTYCtrl) Inject(events ...term.Event) {
	for _, event := range events {
		t.push(item{event: event})
	}
}

// InjectKeys queues key events, each given in the descriptor notation. It
// panics on a malformed descriptor.
func (t TTYCtrl) InjectKeys(descs ...string) {
	for _, desc := range descs {
		t.Inject(K(desc))
	}
}

// Type queues a key event for each rune of s.
func (t TTYCtrl) Type(s string) {
	for _, r := range s {
		t.Inject(term.K(r))
	}
}

// InjectError queues an error to be returned by ReadEvent.
func (t TTYCtrl) InjectError(err error) {
	t.push(item{err: err})
}

// Do queues a function, to be called by ReadEvent when it reaches it.
func (t TTYCtrl) Do(f func()) {
	t.push(item{do: f})
}

// CloseInput makes ReadEvent return io.EOF after the queued items.
func (t TTYCtrl) CloseInput() {
	t.queueMutex.Lock()
	defer t.queueMutex.Unlock()
	if !t.queueClosed {
		close(t.queue)
		t.queueClosed = true
	}
}

func (t TTYCtrl) push(it item) {
	t.queueMutex.Lock()
	defer t.queueMutex.Unlock()
	if !t.queueClosed {
		t.queue <- it
	}
}

// SetupCalls returns the number of times the terminal was set up and
// restored.
func (t TTYCtrl) SetupCalls() (setups, restores int) {
	t.countMutex.Lock()
	defer t.countMutex.Unlock()
	return t.setups, t.restore
}
