// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wakeslot

// AtomicSlot holds at most one waker shared between task code and
// interrupt handlers.
//
// Register and Wake each perform their state change inside one
// Enter/Exit pair of the critical section passed to [NewAtomicSlot].
// Wakers are invoked only after Exit, so a waker may itself enter the
// same critical section (or touch this slot) without reentrant mutation.
// The slot never nests the section.
//
// A contending caller does not wait on the slot: on a single core it runs
// after interrupts are re-enabled, in program order.
//
// An AtomicSlot dropped while occupied discards its waker without
// invoking it.
//
// Example:
//
//	var ctl irq.Controller
//	s := wakeslot.NewAtomicSlot[sched.Waker](&ctl)
//
//	// Interrupt handler
//	ctl.Attach(irq.Line(3), func(irq.Line) { s.Wake() })
//
//	// Task
//	s.Register(w)
type AtomicSlot[W Waker[W], C CriticalSection] struct {
	cs    C
	waker W
	ok    bool
}

// NewAtomicSlot returns an empty slot guarded by cs.
// The result is a value so it can be embedded in a driver struct.
func NewAtomicSlot[W Waker[W], C CriticalSection](cs C) AtomicSlot[W, C] {
	return AtomicSlot[W, C]{cs: cs}
}

// Register stores w in the slot.
//
// Same contract as [Slot.Register]: an equivalent stored waker is kept,
// a different one is displaced and invoked exactly once before Register
// returns. The displaced waker runs outside the critical section.
func (s *AtomicSlot[W, C]) Register(w W) {
	st := s.cs.Enter()
	if s.ok && s.waker.WillWake(w) {
		s.cs.Exit(st)
		return
	}
	old, had := s.waker, s.ok
	s.waker, s.ok = w, true
	s.cs.Exit(st)

	if had {
		old.Wake()
	}
}

// Wake removes the stored waker and invokes it outside the critical
// section. No-op if the slot is empty. Safe from interrupt context.
func (s *AtomicSlot[W, C]) Wake() {
	st := s.cs.Enter()
	if !s.ok {
		s.cs.Exit(st)
		return
	}
	w := s.waker
	var zero W
	s.waker, s.ok = zero, false
	s.cs.Exit(st)

	w.Wake()
}

// Occupied reports whether a waker is stored.
func (s *AtomicSlot[W, C]) Occupied() bool {
	st := s.cs.Enter()
	ok := s.ok
	s.cs.Exit(st)
	return ok
}
