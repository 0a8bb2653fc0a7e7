// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package wakeslot

// RaceEnabled is true when the race detector is active.
// Tests use it to skip preemption simulations whose happens-before edges
// come from atomix operations the detector cannot see.
const RaceEnabled = true
