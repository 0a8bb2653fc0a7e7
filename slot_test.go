// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wakeslot_test

import (
	"testing"

	"code.hybscloud.com/wakeslot"
)

// =============================================================================
// Test Wakers
// =============================================================================

// probe records waker invocations per waker id.
type probe struct {
	calls  map[int]int
	cs     *mockCS // optional: flags invocations inside the critical section
	inside int
}

func newProbe() *probe {
	return &probe{calls: make(map[int]int)}
}

func (p *probe) total() int {
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// taskWaker coalesces wakers of the same task.
type taskWaker struct {
	id   int // distinct per waker reference
	task int
	p    *probe
}

func (w taskWaker) Wake() {
	w.p.calls[w.id]++
	if w.p.cs != nil && w.p.cs.depth > 0 {
		w.p.inside++
	}
}

func (w taskWaker) WillWake(o taskWaker) bool {
	return w.task == o.task && w.p == o.p
}

// distinctWaker never reports equivalence. Every guarantee must still hold.
type distinctWaker struct {
	taskWaker
}

func (w distinctWaker) WillWake(distinctWaker) bool {
	return false
}

// slotter is the contract shared by Slot and AtomicSlot.
type slotter[W any] interface {
	Register(w W)
	Wake()
	Occupied() bool
}

// =============================================================================
// Plain Slot
// =============================================================================

// TestSlotZeroValueEmpty tests that the zero value is an empty slot.
func TestSlotZeroValueEmpty(t *testing.T) {
	var s wakeslot.Slot[taskWaker]
	if s.Occupied() {
		t.Fatalf("zero Slot: Occupied() = true, want false")
	}
	s.Wake() // no-op on empty
	if s.Occupied() {
		t.Fatalf("after Wake on empty: Occupied() = true, want false")
	}
}

// TestSlotScenario walks the reference scenario:
// register W1, register W2 (same task), register W3 (other task), wake, wake.
func TestSlotScenario(t *testing.T) {
	p := newProbe()
	var s wakeslot.Slot[taskWaker]
	runScenario[taskWaker](t, &s, p, func(id, task int) taskWaker {
		return taskWaker{id: id, task: task, p: p}
	})
}

// TestSlotScenarioWithoutCoalescing runs the scenario with wakers that never
// report equivalence.
func TestSlotScenarioWithoutCoalescing(t *testing.T) {
	p := newProbe()
	var s wakeslot.Slot[distinctWaker]
	runScenarioDistinct[distinctWaker](t, &s, p, func(id, task int) distinctWaker {
		return distinctWaker{taskWaker{id: id, task: task, p: p}}
	})
}

// TestSlotEquivalentRegisterNoDisplacement tests that registering an
// equivalent waker never invokes anything.
func TestSlotEquivalentRegisterNoDisplacement(t *testing.T) {
	p := newProbe()
	var s wakeslot.Slot[taskWaker]
	for i := range 100 {
		s.Register(taskWaker{id: i, task: 7, p: p})
	}
	if got := p.total(); got != 0 {
		t.Fatalf("invocations after equivalent registers: got %d, want 0", got)
	}
	s.Wake()
	if got := p.total(); got != 1 {
		t.Fatalf("invocations after Wake: got %d, want 1", got)
	}
}

// TestSlotDisplacementWakesOldOnce tests that a non-equivalent register
// wakes the previous waker exactly once and stores only the new one.
func TestSlotDisplacementWakesOldOnce(t *testing.T) {
	p := newProbe()
	var s wakeslot.Slot[taskWaker]
	for i := range 10 {
		s.Register(taskWaker{id: i, task: i, p: p})
		if i > 0 && p.calls[i-1] != 1 {
			t.Fatalf("waker %d: got %d invocations, want 1", i-1, p.calls[i-1])
		}
		if p.calls[i] != 0 {
			t.Fatalf("new waker %d invoked on register", i)
		}
	}
	s.Wake()
	for i := range 10 {
		if p.calls[i] != 1 {
			t.Fatalf("waker %d: got %d invocations, want 1", i, p.calls[i])
		}
	}
}

// TestSlotReentrantWake tests a displaced waker that re-registers into the
// same slot while being invoked.
func TestSlotReentrantWake(t *testing.T) {
	var s wakeslot.Slot[reentrantWaker]
	var log []int
	s.Register(reentrantWaker{id: 1, s: &s, log: &log})
	s.Register(reentrantWaker{id: 2, s: &s, log: &log})

	// Waker 1 re-registered itself as id 10 and displaced waker 2.
	want := []int{1, 2}
	if len(log) != len(want) || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("wake log: got %v, want %v", log, want)
	}
	if !s.Occupied() {
		t.Fatalf("slot empty after re-registration, want occupied")
	}
	s.Wake()
	if got := log[len(log)-1]; got != 10 {
		t.Fatalf("last woken: got %d, want 10", got)
	}
	if s.Occupied() {
		t.Fatalf("slot occupied after Wake, want empty")
	}
}

type reentrantWaker struct {
	id  int
	s   *wakeslot.Slot[reentrantWaker]
	log *[]int
}

func (w reentrantWaker) Wake() {
	*w.log = append(*w.log, w.id)
	if w.id == 1 {
		w.s.Register(reentrantWaker{id: 10, s: w.s, log: w.log})
	}
}

func (w reentrantWaker) WillWake(o reentrantWaker) bool { return w.id == o.id }

// =============================================================================
// Shared Scenario
// =============================================================================

func runScenario[W any](t *testing.T, s slotter[W], p *probe, mk func(id, task int) W) {
	t.Helper()

	// register(W1) on empty: holds W1, no invocation.
	s.Register(mk(1, 1))
	if !s.Occupied() || p.total() != 0 {
		t.Fatalf("after W1: occupied=%v invocations=%d, want true 0", s.Occupied(), p.total())
	}

	// register(W2), same task: no invocation either way.
	s.Register(mk(2, 1))
	if p.total() != 0 {
		t.Fatalf("after W2 (same task): invocations=%d, want 0", p.total())
	}

	// register(W3), other task: the task-1 waker is invoked exactly once.
	s.Register(mk(3, 2))
	if got := p.calls[1] + p.calls[2]; got != 1 {
		t.Fatalf("after W3: task-1 invocations=%d, want 1", got)
	}
	if p.calls[3] != 0 {
		t.Fatalf("after W3: W3 invoked %d times, want 0", p.calls[3])
	}

	// wake(): W3 exactly once, slot empty.
	s.Wake()
	if p.calls[3] != 1 || s.Occupied() {
		t.Fatalf("after wake: W3=%d occupied=%v, want 1 false", p.calls[3], s.Occupied())
	}

	// wake() again: nothing.
	before := p.total()
	s.Wake()
	if p.total() != before {
		t.Fatalf("second wake: invocations %d -> %d, want no change", before, p.total())
	}
}

// runScenarioDistinct is runScenario for wakers that never coalesce: W2
// displaces W1, W3 displaces W2.
func runScenarioDistinct[W any](t *testing.T, s slotter[W], p *probe, mk func(id, task int) W) {
	t.Helper()

	s.Register(mk(1, 1))
	s.Register(mk(2, 1))
	if p.calls[1] != 1 || p.calls[2] != 0 {
		t.Fatalf("after W2: W1=%d W2=%d, want 1 0", p.calls[1], p.calls[2])
	}
	s.Register(mk(3, 2))
	if p.calls[2] != 1 || p.calls[3] != 0 {
		t.Fatalf("after W3: W2=%d W3=%d, want 1 0", p.calls[2], p.calls[3])
	}
	s.Wake()
	s.Wake()
	for id := 1; id <= 3; id++ {
		if p.calls[id] != 1 {
			t.Fatalf("W%d: got %d invocations, want 1", id, p.calls[id])
		}
	}
	if s.Occupied() {
		t.Fatalf("slot occupied after wake, want empty")
	}
}
