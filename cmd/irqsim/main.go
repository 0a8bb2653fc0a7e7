// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command irqsim exercises wake slots end to end on the host.
//
// Each task waits on a completion counter fed by its own simulated
// interrupt line. A paced peripheral raises the lines while a cooperative
// executor polls the tasks. A missed wakeup shows up as a timeout and a
// non-zero exit status.
//
//	irqsim --tasks 16 --events 1000 --rate 200000
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "irqsim"
	app.Usage = "simulate interrupt-driven wakeups on a cooperative executor"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "tasks,t",
			Usage: "number of tasks, one interrupt line each",
			Value: 8,
		},
		cli.Uint64Flag{
			Name:  "events,e",
			Usage: "interrupt deliveries each task waits for",
			Value: 1000,
		},
		cli.Float64Flag{
			Name:  "rate,r",
			Usage: "interrupt requests per second across all lines",
			Value: 100000,
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "fail the run if tasks have not completed by then",
			Value: 30 * time.Second,
		},
		cli.BoolFlag{
			Name:  "busy-poll",
			Usage: "spin while the run queue is empty instead of backing off",
		},
		cli.BoolFlag{
			Name:  "verbose,v",
			Usage: "log every task completion",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func run(c *cli.Context) error {
	log := logrus.New()
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config{
		Tasks:    c.Int("tasks"),
		Events:   c.Uint64("events"),
		Rate:     c.Float64("rate"),
		Timeout:  c.Duration("timeout"),
		BusyPoll: c.Bool("busy-poll"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"tasks":     cfg.Tasks,
		"events":    cfg.Events,
		"rate":      cfg.Rate,
		"busy_poll": cfg.BusyPoll,
	}).Info("starting simulation")

	st, err := simulate(ctx, cfg, log)
	fields := logrus.Fields{
		"pends":     st.Pends,
		"delivered": st.Delivered,
		"polls":     st.Polls,
		"elapsed":   st.Elapsed,
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("simulation failed")
		return cli.NewExitError(err.Error(), 1)
	}
	log.WithFields(fields).Info("simulation complete")
	return nil
}
