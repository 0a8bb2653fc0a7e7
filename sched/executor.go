// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sched provides a cooperative executor for host-side use of
// wake slots.
//
// Tasks are polled only when woken. Wakers may be invoked from any
// goroutine, including simulated interrupt handlers; every other method
// belongs to the goroutine that runs the executor.
//
// Example:
//
//	ex := sched.New(8).Build()
//	ex.Spawn(sched.FutureFunc(func(w sched.Waker) bool {
//	    return flag.Poll(w)
//	}))
//	if err := ex.Run(ctx); err != nil {
//	    // ctx expired before every task completed
//	}
package sched

import (
	"context"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/wakeslot/internal/runq"
)

// Future is a unit of cooperative work.
//
// Poll advances the work and reports whether it is done. A Poll that
// returns false must have arranged for w to be woken when progress is
// possible. Poll may be called spuriously.
type Future interface {
	Poll(w Waker) bool
}

// FutureFunc adapts a function to [Future].
type FutureFunc func(w Waker) bool

// Poll calls f(w).
func (f FutureFunc) Poll(w Waker) bool {
	return f(w)
}

// Executor is a single-threaded cooperative task runner.
type Executor struct {
	tasks    []task
	free     []uint32
	ready    *runq.Queue
	live     int
	busyPoll bool
}

type task struct {
	gen    atomix.Uint64 // bumped on completion; stale wakers compare against it
	queued atomix.Uint64 // 1 while the index sits on the run queue
	fut    Future
}

// Spawn adds f to the executor and schedules its first poll.
// Returns ErrWouldBlock if the task table is full.
func (e *Executor) Spawn(f Future) (Waker, error) {
	if len(e.free) == 0 {
		return Waker{}, ErrWouldBlock
	}
	id := e.free[len(e.free)-1]
	e.free = e.free[:len(e.free)-1]

	t := &e.tasks[id]
	t.fut = f
	e.live++

	w := Waker{ex: e, id: id, gen: t.gen.LoadAcquire()}
	w.Wake()
	return w, nil
}

// RunOnce polls the tasks on the run queue and returns how many were
// polled. A task woken during its own poll may be polled again within the
// same call; the total is bounded by the task table size.
func (e *Executor) RunOnce() int {
	polled := 0
	for budget := len(e.tasks); budget > 0; budget-- {
		id, err := e.ready.Pop()
		if err != nil {
			break
		}
		t := &e.tasks[id]
		// Clear before polling so a wake during Poll requeues the task.
		t.queued.StoreRelease(0)
		if t.fut == nil {
			continue // stale wake for a completed task
		}

		polled++
		w := Waker{ex: e, id: id, gen: t.gen.LoadAcquire()}
		if t.fut.Poll(w) {
			t.fut = nil
			t.gen.AddAcqRel(1)
			e.free = append(e.free, id)
			e.live--
		}
	}
	return polled
}

// Run polls woken tasks until every task has completed or ctx is done.
// Returns nil when all tasks completed, ctx.Err() otherwise.
func (e *Executor) Run(ctx context.Context) error {
	backoff := iox.Backoff{}
	sw := spin.Wait{}
	for e.live > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.RunOnce() > 0 {
			backoff.Reset()
			continue
		}
		if e.busyPoll {
			sw.Once()
		} else {
			backoff.Wait()
		}
	}
	return nil
}

// Live returns the number of spawned tasks that have not completed.
func (e *Executor) Live() int {
	return e.live
}

// Cap returns the task table size.
func (e *Executor) Cap() int {
	return len(e.tasks)
}

func (e *Executor) schedule(id uint32, gen uint64) {
	t := &e.tasks[id]
	if t.gen.LoadAcquire() != gen {
		return // task completed; wake is a no-op
	}
	if !t.queued.CompareAndSwapAcqRel(0, 1) {
		return // already on the run queue
	}
	if err := e.ready.Push(id); err != nil {
		// Each index is queued at most once and the queue holds every index.
		panic("sched: run queue overflow")
	}
}
