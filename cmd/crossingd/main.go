package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/crossing/pkg/cli/sh"
	"github.com/robotalks/crossing/pkg/env"
	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw/sim"
	"github.com/robotalks/crossing/pkg/status"
)

var console bool

func init() {
	env.SetupFlags()
	flag.BoolVar(&console, "console", console, "Run the operator console instead of the status line.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	board := sim.NewBoard()
	runner := fx.NewRunner().HandleSignals()
	e := env.NewConfig().MustNewEnv(runner.Context, board)
	defer e.Close()
	e.Crossing.OnShutdown = runner.Stop

	loop := e.NewLoop()
	if console {
		shell := sh.New(board, e.Status)
		if e.Poller != nil {
			shell.Responses = e.Poller.Client
		}
		go func() {
			shell.Run()
			runner.Stop()
		}()
	} else {
		loop.Add(status.NewDisplay(os.Stdout, e.Status))
	}

	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
