package uistate

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Effect delays.
const (
	HideDelay = 1600 * time.Millisecond
	TipDelay  = 8000 * time.Millisecond
)

// Step is one write of a timed effect followed by a pause before the next step.
type Step struct {
	Patch Patch
	Delay time.Duration
}

// Task is a handle to a running effect.
type Task struct {
	name      string
	done      chan struct{}
	cancel    chan struct{}
	cancelled bool
	// final is set once the last write is committed; Cancel is a no-op after it.
	final bool
	once  sync.Once
	mu    sync.Mutex
}

// Name is the effect's name.
func (t *Task) Name() string { return t.name }

// Done is closed once the effect has written its last step or was cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the effect before its next write. It reports whether the effect
// was still pending, that is whether at least one write was prevented.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.final || t.cancelled {
		return false
	}
	t.cancelled = true
	t.once.Do(func() { close(t.cancel) })
	return true
}

// claim reserves write i of n for the effect goroutine. It fails once the
// task was cancelled.
func (t *Task) claim(i, n int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return false
	}
	if i == n-1 {
		t.final = true
	}
	return true
}

// Cancelled reports whether Cancel stopped the effect.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Run applies steps in order. The first step is written before Run returns; each
// later step is written after the previous step's delay. Tasks are independent:
// overlapping runs interleave their writes and the last write wins.
func (s *Store) Run(name string, steps ...Step) *Task {
	t := &Task{
		name:   name,
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	if len(steps) <= 1 {
		t.final = true
	}
	if len(steps) == 0 {
		close(t.done)
		return t
	}
	s.Update(steps[0].Patch)
	if len(steps) == 1 {
		close(t.done)
		return t
	}
	s.log.Debug("effect started", zap.String("effect", name), zap.Int("steps", len(steps)))
	s.running.Go(func() {
		defer close(t.done)
		for i := 1; i < len(steps); i++ {
			if d := steps[i-1].Delay; d > 0 {
				select {
				case <-s.clock.After(d):
				case <-t.cancel:
					s.log.Debug("effect cancelled", zap.String("effect", name), zap.Int("step", i))
					return
				}
			}
			if !t.claim(i, len(steps)) {
				return
			}
			s.Update(steps[i].Patch)
		}
		s.log.Debug("effect finished", zap.String("effect", name))
	})
	return t
}

// HiddenMascot says goodbye and hides the mascot after HideDelay.
func (s *Store) HiddenMascot() *Task {
	return s.Run("hiddenMascot",
		Step{Patch: Patch{Tips: String(FarewellTip)}, Delay: HideDelay},
		Step{Patch: Patch{ShowWaifu: Bool(false)}},
	)
}

// ShowTip merges p (normally a tip text) and clears the tip after TipDelay.
func (s *Store) ShowTip(p Patch) *Task {
	return s.Run("showTip",
		Step{Patch: p, Delay: TipDelay},
		Step{Patch: Patch{Tips: String("")}},
	)
}
