// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wakeslot

// Waker is the constraint satisfied by waker capabilities stored in a slot.
//
// A waker is an opaque, copyable handle meaning "mark this pending task
// ready to be polled again". Slots are parameterized over the concrete
// waker type so the hot path calls methods on a known type.
//
// Wake must be idempotent, non-blocking and safe to call from any context,
// including interrupt handlers. Waking a task that has already completed
// must be a no-op.
//
// WillWake reports whether w and other wake the same logical task. It must
// never report true for wakers of different tasks; it may report false for
// equivalent ones. A WillWake that always returns false is correct.
//
// Example:
//
//	type taskWaker struct{ id int; ready *[8]bool }
//
//	func (w taskWaker) Wake()                     { w.ready[w.id] = true }
//	func (w taskWaker) WillWake(o taskWaker) bool { return w == o }
//
//	var s wakeslot.Slot[taskWaker]
type Waker[W any] interface {
	// Wake marks the task ready. Idempotent and non-blocking.
	Wake()

	// WillWake reports whether the receiver and other wake the same task.
	WillWake(other W) bool
}
