// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wakeslot provides single-slot wake notification for cooperative
// task schedulers.
//
// A slot stores at most one waker. Task code registers the waker of the
// task that is waiting; the event source (often an interrupt handler)
// calls Wake, which removes the waker and invokes it. Nothing on either
// path allocates or blocks.
//
// Two variants share one contract:
//
//   - [Slot]: no locking, single execution context only
//   - [AtomicSlot]: guarded by an explicit [CriticalSection], safe when an
//     interrupt handler and task code both touch the slot
//
// # Quick Start
//
//	var s wakeslot.Slot[sched.Waker]             // zero value is empty
//	a := wakeslot.NewAtomicSlot[sched.Waker](cs) // cs masks interrupts
//
// # Register and Wake
//
// Register follows a small state machine:
//
//	Empty    --Register(w)-----------> Occupied(w)
//	Occupied --Register(same task)---> Occupied   (unchanged)
//	Occupied --Register(other task)--> Occupied(new), old waker invoked
//	Occupied --Wake------------------> Empty, stored waker invoked
//	Empty    --Wake------------------> Empty
//
// Displacing a waker of another task wakes that task so it can re-register
// if it is still interested. Two tasks waiting on one slot therefore wake
// each other in turn. This wastes cycles but never loses a wakeup; use a
// multi-waiter primitive when several tasks wait on the same event.
//
// Whether two wakers belong to the same task is decided by
// [Waker.WillWake]. Coalescing is an optimization only: a WillWake that
// always reports false keeps every guarantee.
//
// # Check, Register, Check
//
// The slot does not remember past wakes. A Wake that completes before
// Register begins is not observed, so every poll must re-check readiness
// after registering:
//
//	func (f *rxFuture) Poll(w sched.Waker) bool {
//	    if f.dev.done() {
//	        return true
//	    }
//	    f.dev.slot.Register(w)
//	    return f.dev.done() // event may have fired before Register
//	}
//
// Omitting the second check causes a missed wakeup: the task hangs. There
// is no runtime error for this misuse.
//
// # Critical Sections
//
// AtomicSlot takes its critical section as a type parameter, so the hot
// path does not go through an interface. On hardware the section masks
// interrupts globally; on the host, package irq provides a simulated
// controller. Wakers are always invoked after the section is released.
//
// # Lifetime
//
// Slots have no teardown. A slot dropped while occupied discards its
// waker without invoking it; destruction is not a wake.
//
// # Race Detection
//
// The simulated interrupt controller synchronizes through atomix
// operations that the race detector does not observe. Stress tests that
// depend on it are excluded via //go:build !race; see [RaceEnabled].
package wakeslot
