// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package completion

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/wakeslot"
)

// Counter accumulates events from interrupt handlers for one task.
//
// Unlike [Flag], no event is coalesced away: Poll returns how many
// arrived since the previous successful Poll.
type Counter[W wakeslot.Waker[W], C wakeslot.CriticalSection] struct {
	count atomix.Uint64
	slot  wakeslot.AtomicSlot[W, C]
}

// NewCounter returns a zeroed counter whose waker slot is guarded by cs.
func NewCounter[W wakeslot.Waker[W], C wakeslot.CriticalSection](cs C) *Counter[W, C] {
	return &Counter[W, C]{slot: wakeslot.NewAtomicSlot[W](cs)}
}

// Add records n events and wakes the registered task.
// Safe from interrupt context.
func (c *Counter[W, C]) Add(n uint64) {
	if n == 0 {
		return
	}
	c.count.AddAcqRel(n)
	c.slot.Wake()
}

// Poll takes the accumulated events. If none are pending, w is
// registered and Poll reports (0, false) unless events arrived meanwhile.
func (c *Counter[W, C]) Poll(w W) (uint64, bool) {
	if n := c.take(); n > 0 {
		return n, true
	}
	c.slot.Register(w)
	n := c.take()
	return n, n > 0
}

func (c *Counter[W, C]) take() uint64 {
	for {
		n := c.count.LoadAcquire()
		if n == 0 {
			return 0
		}
		if c.count.CompareAndSwapAcqRel(n, 0) {
			return n
		}
	}
}
