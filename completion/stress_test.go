// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package completion_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/spin"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/wakeslot/completion"
	"code.hybscloud.com/wakeslot/irq"
	"code.hybscloud.com/wakeslot/sched"
)

// TestCounterConcurrentInterrupts runs the executor while another goroutine
// raises interrupts. A lost wakeup shows up as a timeout.
func TestCounterConcurrentInterrupts(t *testing.T) {
	const events = 20000

	var ctl irq.Controller
	c := completion.NewCounter[sched.Waker](&ctl)
	const line irq.Line = 5
	ctl.Attach(line, func(irq.Line) { c.Add(1) })
	ctl.Enable(line)

	ex := sched.New(2).BusyPoll().Build()
	var total uint64
	_, err := ex.Spawn(sched.FutureFunc(func(w sched.Waker) bool {
		for {
			n, ok := c.Poll(w)
			if !ok {
				return total >= events
			}
			total += n
		}
	}))
	require.NoError(t, err)

	go func() {
		sw := spin.Wait{}
		for range events {
			// Wait for delivery so pends do not coalesce on the line.
			before := ctl.Delivered(line)
			ctl.Pend(line)
			for ctl.Delivered(line) == before {
				sw.Once()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, ex.Run(ctx), "missed wakeup")
	require.EqualValues(t, events, total)
}

// TestFlagConcurrentRounds hands a flag back and forth between a task and an
// interrupt source for many rounds.
func TestFlagConcurrentRounds(t *testing.T) {
	const rounds = 5000

	var ctl irq.Controller
	f := completion.NewFlag[sched.Waker](&ctl)
	const line irq.Line = 6
	ctl.Attach(line, func(irq.Line) { f.Signal() })
	ctl.Enable(line)

	var seen int
	ack := make(chan struct{}, 1)
	ex := sched.New(2).Build()
	_, err := ex.Spawn(sched.FutureFunc(func(w sched.Waker) bool {
		for f.Poll(w) {
			seen++
			ack <- struct{}{}
			if seen == rounds {
				return true
			}
		}
		return false
	}))
	require.NoError(t, err)

	go func() {
		for range rounds {
			ctl.Pend(line)
			<-ack
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, ex.Run(ctx), "missed wakeup")
	require.Equal(t, rounds, seen)
}
