// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"code.hybscloud.com/wakeslot/completion"
	"code.hybscloud.com/wakeslot/irq"
	"code.hybscloud.com/wakeslot/sched"
)

// config describes one simulation run.
type config struct {
	Tasks    int           // tasks, one interrupt line each
	Events   uint64        // deliveries each task waits for
	Rate     float64       // interrupt requests per second, all lines
	Timeout  time.Duration // a run exceeding this is a missed wakeup
	BusyPoll bool
}

// Stats summarizes a simulation run.
type Stats struct {
	Tasks     int
	Pends     uint64 // interrupt requests raised
	Delivered uint64 // handler invocations
	Polls     uint64 // task polls
	Elapsed   time.Duration
}

var errConfig = errors.New("invalid config")

func (c config) validate() error {
	switch {
	case c.Tasks < 1 || c.Tasks > irq.Lines:
		return fmt.Errorf("%w: tasks must be in [1, %d], got %d", errConfig, irq.Lines, c.Tasks)
	case c.Events < 1:
		return fmt.Errorf("%w: events must be >= 1", errConfig)
	case c.Rate <= 0:
		return fmt.Errorf("%w: rate must be > 0, got %g", errConfig, c.Rate)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be > 0, got %s", errConfig, c.Timeout)
	}
	return nil
}

// simulate runs cfg.Tasks tasks on one executor. Task i waits for
// cfg.Events deliveries of interrupt line i; a paced peripheral goroutine
// raises the lines round-robin until every task has finished.
func simulate(ctx context.Context, cfg config, log *logrus.Logger) (Stats, error) {
	if err := cfg.validate(); err != nil {
		return Stats{}, err
	}

	var ctl irq.Controller
	finished := make([]atomix.Bool, cfg.Tasks)

	b := sched.New(max(cfg.Tasks, 2))
	if cfg.BusyPoll {
		b = b.BusyPoll()
	}
	ex := b.Build()

	st := Stats{Tasks: cfg.Tasks}
	for i := range cfg.Tasks {
		l := irq.Line(i)
		c := completion.NewCounter[sched.Waker](&ctl)
		ctl.Attach(l, func(irq.Line) { c.Add(1) })
		ctl.Enable(l)

		var seen uint64
		_, err := ex.Spawn(sched.FutureFunc(func(w sched.Waker) bool {
			st.Polls++
			for {
				n, ok := c.Poll(w)
				if !ok {
					break
				}
				seen += n
			}
			if seen < cfg.Events {
				return false
			}
			finished[i].StoreRelease(true)
			log.WithFields(logrus.Fields{"task": i, "events": seen}).Debug("task complete")
			return true
		}))
		if err != nil {
			return st, fmt.Errorf("spawn task %d: %w", i, err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		st.Pends = raise(runCtx, &ctl, finished, rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Tasks))
	}()

	start := time.Now()
	err := ex.Run(runCtx)
	st.Elapsed = time.Since(start)
	cancel()
	wg.Wait()

	for i := range cfg.Tasks {
		st.Delivered += ctl.Delivered(irq.Line(i))
	}
	if err != nil {
		return st, fmt.Errorf("%d of %d tasks incomplete: %w", ex.Live(), cfg.Tasks, err)
	}
	return st, nil
}

// raise pends the lines of unfinished tasks round-robin, paced by lim,
// until ctx is done. Returns the number of requests raised.
func raise(ctx context.Context, ctl *irq.Controller, finished []atomix.Bool, lim *rate.Limiter) uint64 {
	var pends uint64
	for i := 0; ; i = (i + 1) % len(finished) {
		if ctx.Err() != nil {
			return pends
		}
		if finished[i].LoadAcquire() {
			continue
		}
		if err := lim.Wait(ctx); err != nil {
			return pends
		}
		ctl.Pend(irq.Line(i))
		pends++
	}
}
