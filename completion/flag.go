// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package completion provides driver-style completion events built on
// wake slots.
//
// An interrupt handler signals the event; a task polls it. Every Poll
// follows check, register, check, so a signal that lands between the
// first check and Register is never lost.
package completion

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/wakeslot"
)

// Flag is a latched completion event shared with interrupt handlers.
//
// Signals that arrive before the task observes the flag coalesce.
//
// Example:
//
//	var ctl irq.Controller
//	done := completion.NewFlag[sched.Waker](&ctl)
//	ctl.Attach(dmaLine, func(irq.Line) { done.Signal() })
//
//	ex.Spawn(sched.FutureFunc(done.Poll))
type Flag[W wakeslot.Waker[W], C wakeslot.CriticalSection] struct {
	event atomix.Uint64
	slot  wakeslot.AtomicSlot[W, C]
}

// NewFlag returns a cleared flag whose waker slot is guarded by cs.
func NewFlag[W wakeslot.Waker[W], C wakeslot.CriticalSection](cs C) *Flag[W, C] {
	return &Flag[W, C]{slot: wakeslot.NewAtomicSlot[W](cs)}
}

// Signal latches the event and wakes the registered task.
// Safe from interrupt context.
func (f *Flag[W, C]) Signal() {
	f.event.StoreRelease(1)
	f.slot.Wake()
}

// Poll consumes a latched event and reports whether there was one.
// If there was none, w is registered to be woken by the next Signal.
func (f *Flag[W, C]) Poll(w W) bool {
	if f.take() {
		return true
	}
	f.slot.Register(w)
	return f.take()
}

// IsSet reports whether an event is latched, without consuming it.
func (f *Flag[W, C]) IsSet() bool {
	return f.event.LoadAcquire() != 0
}

// Reset discards a latched event.
func (f *Flag[W, C]) Reset() {
	f.event.StoreRelease(0)
}

func (f *Flag[W, C]) take() bool {
	return f.event.CompareAndSwapAcqRel(1, 0)
}

// Local is a completion event for a single execution context.
//
// Both Signal and Poll must run in task context; Local uses a plain
// [wakeslot.Slot] and performs no synchronization. The zero value is a
// cleared event.
type Local[W wakeslot.Waker[W]] struct {
	set  bool
	slot wakeslot.Slot[W]
}

// Signal latches the event and wakes the registered task.
func (l *Local[W]) Signal() {
	l.set = true
	l.slot.Wake()
}

// Poll consumes a latched event and reports whether there was one.
// If there was none, w is registered to be woken by the next Signal.
func (l *Local[W]) Poll(w W) bool {
	if l.take() {
		return true
	}
	// Register may run a displaced waker; re-check afterwards.
	l.slot.Register(w)
	return l.take()
}

func (l *Local[W]) take() bool {
	if !l.set {
		return false
	}
	l.set = false
	return true
}
