package edittest

import (
	"sync"

	"src.shline.sh/pkg/cli/term"
)

// FakeDisplay is an implementation of edit.Display that records what it is
// asked to show.
type FakeDisplay struct {
	mutex    sync.Mutex
	views    []term.View
	notes    []string
	finished []term.View
	clears   int
}

// NewFakeDisplay creates a FakeDisplay.
func NewFakeDisplay() *FakeDisplay { return &FakeDisplay{} }

func (d *FakeDisplay) Refresh(v term.View) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.views = append(d.views, v)
}

func (d *FakeDisplay) Notify(msg string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.notes = append(d.notes, msg)
}

func (d *FakeDisplay) Finish(v term.View) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.finished = append(d.finished, v)
}

func (d *FakeDisplay) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.clears++
}

// LastView returns the view of the last Refresh.
func (d *FakeDisplay) LastView() term.View {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if len(d.views) == 0 {
		return term.View{}
	}
	return d.views[len(d.views)-1]
}

// Views returns the views of all Refresh calls.
func (d *FakeDisplay) Views() []term.View {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]term.View(nil), d.views...)
}

// Notes returns all notifications.
func (d *FakeDisplay) Notes() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]string(nil), d.notes...)
}

// Finished returns the views passed to Finish.
func (d *FakeDisplay) Finished() []term.View {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]term.View(nil), d.finished...)
}

// Clears returns the number of Clear calls.
func (d *FakeDisplay) Clears() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.clears
}
