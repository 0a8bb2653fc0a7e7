// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import "code.hybscloud.com/wakeslot/internal/runq"

// Options configures executor creation.
type Options struct {
	// Task table size (rounds up to next power of 2)
	capacity int

	// Idle strategy: spin instead of backing off
	busyPoll bool
}

// Builder creates executors with fluent configuration.
//
// Example:
//
//	// Default: idle with adaptive backoff
//	ex := sched.New(16).Build()
//
//	// Busy-poll: spin while idle, lowest wake latency
//	ex := sched.New(16).BusyPoll().Build()
type Builder struct {
	opts Options
}

// New creates an executor builder for up to capacity live tasks.
//
// Capacity rounds up to the next power of 2.
// Panics if capacity < 2.
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("sched: capacity must be >= 2")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// BusyPoll makes Run spin on an empty run queue instead of backing off.
// Models a core that never enters a low-power wait.
func (b *Builder) BusyPoll() *Builder {
	b.opts.busyPoll = true
	return b
}

// Build creates the executor.
func (b *Builder) Build() *Executor {
	n := runq.RoundToPow2(b.opts.capacity)
	e := &Executor{
		tasks:    make([]task, n),
		free:     make([]uint32, 0, n),
		ready:    runq.New(n),
		busyPoll: b.opts.busyPoll,
	}
	for i := n - 1; i >= 0; i-- {
		e.free = append(e.free, uint32(i))
	}
	return e
}
