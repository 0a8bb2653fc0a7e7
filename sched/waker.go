// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import "code.hybscloud.com/wakeslot"

// Waker wakes one task of one executor.
//
// Waker is a small value; copying it is free. Wake is safe from any
// goroutine and never blocks. Waking a task that has completed is a no-op.
// The zero Waker wakes nothing.
type Waker struct {
	ex  *Executor
	id  uint32
	gen uint64
}

var _ wakeslot.Waker[Waker] = Waker{}

// Wake schedules the task for polling. Multiple wakes before the next
// poll coalesce into one.
func (w Waker) Wake() {
	if w.ex == nil {
		return
	}
	w.ex.schedule(w.id, w.gen)
}

// WillWake reports whether w and o wake the same task.
func (w Waker) WillWake(o Waker) bool {
	return w == o
}

// Task returns the task index within its executor.
func (w Waker) Task() uint32 {
	return w.id
}
