package uistate

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires After channels only when Advance moves past their deadline.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Duration
	waiters []waiter
	added   chan struct{}
}

type waiter struct {
	at time.Duration
	ch chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{added: make(chan struct{}, 64)}
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, waiter{at: c.now + d, ch: ch})
	c.added <- struct{}{}
	return ch
}

// blockUntil waits for n calls to After.
func (c *fakeClock) blockUntil(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.added:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for waiter %d", i+1)
		}
	}
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at <= c.now {
			w.ch <- time.Time{}
			continue
		}
		kept = append(kept, w)
	}
	c.waiters = kept
}

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task %s did not finish", task.Name())
	}
}

func TestDefault(t *testing.T) {
	s := NewStore()
	st := s.State()
	assert.False(t, st.DropMenu)
	assert.False(t, st.ShowPlayer)
	assert.False(t, st.IsPlaying)
	assert.True(t, st.ShowWaifu)
	assert.Equal(t, "tia", st.Waifu)
	assert.Equal(t, WelcomeTip, st.Tips)
}

func TestUpdateMergesShallow(t *testing.T) {
	s := NewStore()
	s.Update(Patch{DropMenu: Bool(true)})
	st := s.Update(Patch{ShowPlayer: Bool(true)})

	assert.True(t, st.DropMenu)
	assert.True(t, st.ShowPlayer)
	assert.Equal(t, "tia", st.Waifu)
	assert.Equal(t, st, s.State())
}

func TestUpdateEmptyPatchKeepsState(t *testing.T) {
	s := NewStore()
	before := s.State()
	assert.Equal(t, before, s.Update(Patch{}))
}

func TestPatchFromJSON(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"tips":"","isPlaying":true}`), &p))
	st := p.Apply(Default())
	assert.Equal(t, "", st.Tips)
	assert.True(t, st.IsPlaying)
	assert.True(t, st.ShowWaifu)
}

func TestHiddenMascot(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	task := s.HiddenMascot()
	st := s.State()
	assert.Equal(t, FarewellTip, st.Tips)
	assert.True(t, st.ShowWaifu, "mascot stays visible until the delay passes")

	clock.blockUntil(t, 1)
	clock.Advance(HideDelay - time.Millisecond)
	assert.True(t, s.State().ShowWaifu)

	clock.Advance(time.Millisecond)
	waitDone(t, task)
	assert.False(t, s.State().ShowWaifu)
	assert.Equal(t, FarewellTip, s.State().Tips)
}

func TestShowTip(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	task := s.ShowTip(Patch{Tips: String("hello")})
	assert.Equal(t, "hello", s.State().Tips)

	clock.blockUntil(t, 1)
	clock.Advance(TipDelay)
	waitDone(t, task)
	assert.Equal(t, "", s.State().Tips)
}

func TestHiddenMascotClobbersLaterShow(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	task := s.HiddenMascot()
	s.Update(Patch{ShowWaifu: Bool(true)})

	clock.blockUntil(t, 1)
	clock.Advance(HideDelay)
	waitDone(t, task)
	assert.False(t, s.State().ShowWaifu)
}

func TestOverlappingTipsLastWriteWins(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	first := s.ShowTip(Patch{Tips: String("one")})
	clock.blockUntil(t, 1)
	clock.Advance(4 * time.Second)

	second := s.ShowTip(Patch{Tips: String("two")})
	clock.blockUntil(t, 1)
	assert.Equal(t, "two", s.State().Tips)

	// The first tip's timer clears the second tip early.
	clock.Advance(4 * time.Second)
	waitDone(t, first)
	assert.Equal(t, "", s.State().Tips)

	clock.Advance(4 * time.Second)
	waitDone(t, second)
	assert.Equal(t, "", s.State().Tips)
}

func TestCancelStopsPendingWrite(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	task := s.ShowTip(Patch{Tips: String("stay")})
	clock.blockUntil(t, 1)
	assert.True(t, task.Cancel())
	waitDone(t, task)
	assert.True(t, task.Cancelled())

	clock.Advance(TipDelay)
	s.Wait()
	assert.Equal(t, "stay", s.State().Tips)
	assert.False(t, task.Cancel())
}

func TestCancelAfterLastWriteReportsNothingPending(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock))

	task := s.ShowTip(Patch{Tips: String("bye")})
	clock.blockUntil(t, 1)
	clock.Advance(TipDelay)
	require.Eventually(t, func() bool { return s.State().Tips == "" }, 2*time.Second, time.Millisecond)

	assert.False(t, task.Cancel(), "the last write already happened")
	waitDone(t, task)
	assert.False(t, task.Cancelled())
}

func TestCancelOnFinishedTasks(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Run("empty").Cancel())
	assert.False(t, s.Run("single", Step{Patch: Patch{IsPlaying: Bool(true)}}).Cancel())
}

func TestRunWithoutDelays(t *testing.T) {
	s := NewStore()
	task := s.Run("burst",
		Step{Patch: Patch{IsPlaying: Bool(true)}},
		Step{Patch: Patch{ShowPlayer: Bool(true)}},
	)
	waitDone(t, task)
	st := s.State()
	assert.True(t, st.IsPlaying)
	assert.True(t, st.ShowPlayer)

	empty := s.Run("empty")
	waitDone(t, empty)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Update(Patch{DropMenu: Bool(true)})
	s.Update(Patch{Waifu: String("pio")})

	select {
	case st := <-ch:
		assert.True(t, st.DropMenu)
		assert.Equal(t, "pio", st.Waifu)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	s.Update(Patch{DropMenu: Bool(false)})
	select {
	case <-ch:
		t.Fatal("cancelled subscription should not receive updates")
	default:
	}
}
