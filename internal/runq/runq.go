// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runq provides the executor's ready queue: a bounded
// multi-producer single-consumer queue of task indices.
//
// Wakers push from any goroutine, including simulated interrupt handlers;
// only the executor pops.
package runq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// emptyBit marks a slot as free. The low bits of a free slot hold the
// round in which it may next be filled.
const emptyBit = uint64(1) << 63

// Queue is a compact MPSC queue of task indices.
//
// Producers claim a slot with CAS on its round marker and then help
// advance the tail; the single consumer reads sequentially.
//
// Memory: 8 bytes per slot
type Queue struct {
	_        pad
	head     atomix.Uint64 // Consumer reads from here
	_        pad
	tail     atomix.Uint64 // Producers CAS here
	_        pad
	slots    []atomix.Uint64
	mask     uint64
	capacity uint64
	order    uint64
}

type pad [64]byte

// New creates a queue holding at least capacity indices.
// Capacity rounds up to the next power of 2. Panics if capacity < 2.
func New(capacity int) *Queue {
	if capacity < 2 {
		panic("runq: capacity must be >= 2")
	}

	n := uint64(RoundToPow2(capacity))
	order := uint64(0)
	for (1 << order) < n {
		order++
	}

	q := &Queue{
		slots:    make([]atomix.Uint64, n),
		mask:     n - 1,
		capacity: n,
		order:    order,
	}
	for i := range q.slots {
		q.slots[i].StoreRelaxed(emptyBit | 0)
	}
	return q
}

// Push appends a task index (multiple producers safe).
// Returns iox.ErrWouldBlock if the queue is full.
func (q *Queue) Push(idx uint32) error {
	elem := uint64(idx)
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if tail >= head+q.capacity {
			return iox.ErrWouldBlock
		}

		slot := &q.slots[tail&q.mask]
		round := (tail >> q.order) & (emptyBit - 1)
		if slot.CompareAndSwapAcqRel(emptyBit|round, elem) {
			q.tail.CompareAndSwapAcqRel(tail, tail+1)
			return nil
		}
		// Slot already filled for this round: help the owner advance.
		q.tail.CompareAndSwapAcqRel(tail, tail+1)
		sw.Once()
	}
}

// Pop removes the oldest task index (single consumer only).
// Returns (0, iox.ErrWouldBlock) if the queue is empty.
func (q *Queue) Pop() (uint32, error) {
	head := q.head.LoadRelaxed()
	tail := q.tail.LoadAcquire()
	if head >= tail {
		return 0, iox.ErrWouldBlock
	}

	slot := &q.slots[head&q.mask]
	elem := slot.LoadAcquire()
	if elem&emptyBit != 0 {
		return 0, iox.ErrWouldBlock
	}

	nextRound := ((head >> q.order) + 1) & (emptyBit - 1)
	slot.StoreRelease(emptyBit | nextRound)
	q.head.StoreRelease(head + 1)
	return uint32(elem), nil
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return int(q.capacity)
}

// RoundToPow2 rounds n up to the next power of 2, with a minimum of 2.
func RoundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
