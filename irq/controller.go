// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package irq simulates a single-core interrupt controller on the host.
//
// A [Controller] stands in for the hardware abstraction layer: it provides
// the global interrupt mask used as a [wakeslot.CriticalSection] and a
// small NVIC-like set of interrupt lines whose handlers play the part of
// interrupt service routines.
//
// Handlers run on the goroutine that caused delivery: the caller of Pend
// when the controller is unmasked, or the caller of Exit/Enable when a
// latched request is released. A handler never starts while the mask is
// held, but it may still be running when task code enters the critical
// section afterwards, so handler code must itself use the critical section
// for shared state.
package irq

import (
	"math/bits"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"code.hybscloud.com/wakeslot"
)

// Lines is the number of interrupt lines a Controller provides.
const Lines = 64

// Line identifies an interrupt line in [0, Lines).
type Line uint8

// Handler services an interrupt line.
type Handler func(Line)

// Controller is a simulated interrupt controller.
//
// The zero value has all lines disabled, nothing pending and interrupts
// unmasked. Handlers must be attached before their line is enabled.
type Controller struct {
	_         pad
	mask      atomix.Uint64 // 1 while a critical section is held
	_         pad
	enabled   atomix.Uint64 // one bit per line
	pending   atomix.Uint64 // one bit per line
	_         pad
	handlers  [Lines]Handler
	delivered [Lines]atomix.Uint64
}

type pad [64]byte

var _ wakeslot.CriticalSection = (*Controller)(nil)

// Enter masks interrupts and returns the previous mask state.
//
// On the host a concurrent holder is waited out by spinning, which models
// that an interrupt cannot be taken while task code holds the mask.
// Enter must not be nested on one goroutine.
func (c *Controller) Enter() wakeslot.State {
	sw := spin.Wait{}
	for !c.mask.CompareAndSwapAcqRel(0, 1) {
		sw.Once()
	}
	return wakeslot.Unmasked
}

// Exit restores the mask state returned by Enter.
// Unmasking delivers every request latched while the mask was held.
func (c *Controller) Exit(s wakeslot.State) {
	if s == wakeslot.Masked {
		return
	}
	c.mask.CompareAndSwapAcqRel(1, 0)
	c.dispatch()
}

// Masked reports whether interrupts are currently masked.
func (c *Controller) Masked() bool {
	return c.mask.LoadAcquire() != 0
}

// Free runs fn with interrupts masked.
func (c *Controller) Free(fn func()) {
	s := c.Enter()
	defer c.Exit(s)
	fn()
}

// Attach installs h as the handler for line l.
// Panics if l is out of range.
func (c *Controller) Attach(l Line, h Handler) {
	checkLine(l)
	c.handlers[l] = h
}

// Enable unmasks line l. A request latched while the line was disabled
// is delivered immediately if interrupts are not masked.
func (c *Controller) Enable(l Line) {
	checkLine(l)
	setBit(&c.enabled, l)
	c.dispatch()
}

// Disable masks line l. Requests keep latching but are not delivered.
func (c *Controller) Disable(l Line) {
	checkLine(l)
	clearBit(&c.enabled, l)
}

// Pend requests an interrupt on line l.
//
// If the line is enabled and interrupts are unmasked, the handler runs
// before Pend returns. Otherwise the request is latched. A line latches a
// single request: pends issued before delivery coalesce.
func (c *Controller) Pend(l Line) {
	checkLine(l)
	setBit(&c.pending, l)
	c.dispatch()
}

// Pending reports whether line l has a latched request.
func (c *Controller) Pending(l Line) bool {
	checkLine(l)
	return c.pending.LoadAcquire()&(1<<l) != 0
}

// Delivered returns the number of times the handler of line l has run.
func (c *Controller) Delivered(l Line) uint64 {
	checkLine(l)
	return c.delivered[l].LoadAcquire()
}

// dispatch delivers latched requests on enabled lines, lowest line first,
// until none remain or interrupts become masked.
func (c *Controller) dispatch() {
	for {
		if c.mask.LoadAcquire() != 0 {
			return
		}
		ready := c.pending.LoadAcquire() & c.enabled.LoadAcquire()
		if ready == 0 {
			return
		}
		l := Line(bits.TrailingZeros64(ready))
		if !clearBit(&c.pending, l) {
			continue // claimed by another dispatcher
		}
		if h := c.handlers[l]; h != nil {
			h(l)
		}
		c.delivered[l].AddAcqRel(1)
	}
}

// setBit sets bit l and reports whether it was previously clear.
func setBit(w *atomix.Uint64, l Line) bool {
	bit := uint64(1) << l
	for {
		old := w.LoadAcquire()
		if old&bit != 0 {
			return false
		}
		if w.CompareAndSwapAcqRel(old, old|bit) {
			return true
		}
	}
}

// clearBit clears bit l and reports whether it was previously set.
func clearBit(w *atomix.Uint64, l Line) bool {
	bit := uint64(1) << l
	for {
		old := w.LoadAcquire()
		if old&bit == 0 {
			return false
		}
		if w.CompareAndSwapAcqRel(old, old&^bit) {
			return true
		}
	}
}

func checkLine(l Line) {
	if l >= Lines {
		panic("irq: line out of range")
	}
}
