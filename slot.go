// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wakeslot

// Slot holds at most one waker for a single execution context.
//
// Slot performs no locking. Use it when Register and Wake are both called
// from task context and no interrupt handler touches the slot; otherwise
// use [AtomicSlot].
//
// The zero value is an empty slot. A slot dropped while occupied discards
// its waker without invoking it: destruction is not a wake.
//
// Example:
//
//	var s wakeslot.Slot[sched.Waker]
//
//	// Task side: check, register, check.
//	if !ready() {
//	    s.Register(w)
//	    if !ready() {
//	        return false
//	    }
//	}
//
//	// Event side (same context).
//	s.Wake()
type Slot[W Waker[W]] struct {
	waker W
	ok    bool
}

// Register stores w in the slot.
//
// If the stored waker already wakes the same task as w, the slot is left
// unchanged. Otherwise w replaces the stored waker and the displaced waker
// is invoked before Register returns, so its task can re-register if it is
// still interested.
//
// A Wake that completed before Register is not observed. Callers must
// re-check their readiness condition after registering.
func (s *Slot[W]) Register(w W) {
	if s.ok && s.waker.WillWake(w) {
		return
	}
	old, had := s.waker, s.ok
	s.waker, s.ok = w, true
	if had {
		old.Wake()
	}
}

// Wake removes the stored waker and invokes it.
// No-op if the slot is empty.
func (s *Slot[W]) Wake() {
	if !s.ok {
		return
	}
	w := s.waker
	var zero W
	s.waker, s.ok = zero, false
	w.Wake()
}

// Occupied reports whether a waker is stored.
func (s *Slot[W]) Occupied() bool {
	return s.ok
}
