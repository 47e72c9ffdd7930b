package edittest

import (
	"context"
	"sync"
	"testing"
	"time"

	"src.shline.sh/pkg/cli/term"
	"src.shline.sh/pkg/edit"
	"src.shline.sh/pkg/ui"
)

// Prompt used by Fixture.ReadLine.
const Prompt = "> "

// Fixture is an Editor wired to fakes.
type Fixture struct {
	Editor  *edit.Editor
	TTY     TTYCtrl
	Display *FakeDisplay
	Clock   *FakeClock
}

// Setup creates a Fixture. The functions can change the Spec before the
// Editor is created.
func Setup(t testing.TB, fns ...func(*edit.Spec)) *Fixture {
	t.Helper()
	tty, ttyCtrl := NewFakeTTY()
	display := NewFakeDisplay()
	clock := NewFakeClock()
	spec := edit.Spec{
		TTY: tty, Display: display, Now: clock.Now,
		ReadTimeout: 10 * time.Millisecond,
	}
	for _, fn := range fns {
		fn(&spec)
	}
	ed, err := edit.New(spec)
	if err != nil {
		t.Fatal(err)
	}
	return &Fixture{ed, ttyCtrl, display, clock}
}

// ReadLine calls ReadLine on the Editor with Prompt.
func (f *Fixture) ReadLine() (string, error) {
	return f.Editor.ReadLine(context.Background(), Prompt)
}

// FakeClock is a clock that only moves when told to.
type FakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

// NewFakeClock creates a FakeClock.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the time of the clock.
func (c *FakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

// K parses a key descriptor into a key event. It panics on a malformed
// descriptor.
func K(desc string) term.KeyEvent {
	k, err := ui.ParseKey(desc)
	if err != nil {
		panic(err)
	}
	return term.KeyEvent(k)
}
