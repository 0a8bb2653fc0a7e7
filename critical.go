// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wakeslot

// State is the interrupt mask word saved by [CriticalSection.Enter] and
// restored by [CriticalSection.Exit].
type State uint32

// Saved mask states.
const (
	Unmasked State = 0
	Masked   State = 1
)

// CriticalSection is the mutual-exclusion capability used by [AtomicSlot].
//
// On a microcontroller Enter disables interrupts on the current core and
// returns the previous mask; Exit restores it. On the host any value that
// excludes concurrent Enter/Exit pairs serves, such as the simulated
// controller in package irq.
//
// The section must be short and must not block: while it is held, no
// interrupt is delivered.
type CriticalSection interface {
	// Enter masks interrupts and returns the previous mask state.
	Enter() State

	// Exit restores the mask state returned by the matching Enter.
	Exit(s State)
}
