// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suggest tracks the state of a translated-query suggestion shown
// next to a PubMed query field.
//
// A suggestion is Hidden while there is nothing to offer, Visible once a
// non-empty translation exists, and Highlighted for a short time after the
// user accepts it. Accepting again while highlighted restarts the timer.
package suggest

import (
	"sync"
	"time"

	"github.com/pdiddy/litbridge/internal/querytrans"
)

// DefaultHighlight is how long an accepted suggestion stays highlighted.
const DefaultHighlight = 2 * time.Second

// State is the presentation state of a suggestion.
type State int

const (
	Hidden State = iota
	Visible
	Highlighted
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case Highlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}

// Timer is the part of *time.Timer the presenter needs.
type Timer interface {
	Stop() bool
}

// Clock schedules highlight expiry. RealClock uses time.AfterFunc; tests
// substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the wall clock.
type RealClock struct{}

// AfterFunc implements Clock.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Snapshot is a consistent view of the presenter.
type Snapshot struct {
	State      State
	Source     string
	Suggestion string
	DateStart  string
	DateEnd    string
	// Accepted is the text last copied into the target field.
	Accepted string
}

// Options configures a Presenter. Zero values select defaults.
type Options struct {
	Clock     Clock
	Highlight time.Duration
	// Translate overrides the translator, mainly for tests.
	Translate func(string) string
	// OnChange is called after every state change, outside the lock. It may
	// be called from the timer goroutine.
	OnChange func(Snapshot)
}

// Presenter is the suggestion state machine. It is safe for concurrent use.
type Presenter struct {
	clock     Clock
	highlight time.Duration
	translate func(string) string
	onChange  func(Snapshot)

	mu         sync.Mutex
	snap       Snapshot
	timer      Timer
	generation uint64
}

// New returns a Presenter in the Hidden state.
func New(opts Options) *Presenter {
	p := &Presenter{
		clock:     opts.Clock,
		highlight: opts.Highlight,
		translate: opts.Translate,
		onChange:  opts.OnChange,
	}
	if p.clock == nil {
		p.clock = RealClock{}
	}
	if p.highlight <= 0 {
		p.highlight = DefaultHighlight
	}
	if p.translate == nil {
		p.translate = querytrans.Translate
	}
	return p
}

// Snapshot returns the current state.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// SetSource recomputes the suggestion for a new PubMed query. An empty
// translation hides the suggestion and cancels any running highlight.
func (p *Presenter) SetSource(source string) Snapshot {
	suggestion := p.translate(source)
	start, end := querytrans.ExtractISODates(source)

	p.mu.Lock()
	p.snap.Source = source
	p.snap.Suggestion = suggestion
	p.snap.DateStart = start
	p.snap.DateEnd = end
	switch {
	case suggestion == "":
		p.cancelLocked()
		p.snap.State = Hidden
	case p.snap.State == Hidden:
		p.snap.State = Visible
	}
	snap := p.snap
	p.mu.Unlock()

	p.notify(snap)
	return snap
}

// Accept copies the suggestion into the target field and starts the
// highlight. It reports false when there is no suggestion to accept.
func (p *Presenter) Accept() (string, bool) {
	p.mu.Lock()
	if p.snap.State == Hidden {
		p.mu.Unlock()
		return "", false
	}
	p.cancelLocked()
	p.generation++
	gen := p.generation
	p.snap.Accepted = p.snap.Suggestion
	p.snap.State = Highlighted
	p.timer = p.clock.AfterFunc(p.highlight, func() { p.expire(gen) })
	snap := p.snap
	p.mu.Unlock()

	p.notify(snap)
	return snap.Accepted, true
}

// expire clears the highlight armed by generation gen. Timers from earlier
// generations that fire after being stopped are ignored.
func (p *Presenter) expire(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || p.snap.State != Highlighted {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.snap.State = Visible
	snap := p.snap
	p.mu.Unlock()

	p.notify(snap)
}

// Close stops any pending highlight timer.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

func (p *Presenter) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.generation++
}

func (p *Presenter) notify(s Snapshot) {
	if p.onChange != nil {
		p.onChange(s)
	}
}
