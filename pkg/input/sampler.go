// Package input samples the button and switch ports and posts discrete
// events into the control loop.
package input

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
)

// PedestrianPressed is posted on a walk button edge.
type PedestrianPressed struct{}

// TrainSwitch is posted when the train switch changes.
type TrainSwitch struct {
	On bool
}

// MaintenanceSwitch is posted when the maintenance switch changes.
type MaintenanceSwitch struct {
	On bool
}

// ShutdownRequested is posted on a shutdown button edge.
type ShutdownRequested struct{}

// Sampler turns port values into events. Each edge produces exactly one
// message; the loop delivers it to the next tick.
type Sampler struct {
	Inputs hw.Inputs

	buttons  uint32
	switches uint32
}

// NewSampler creates a Sampler. The current switch positions are taken as
// the initial levels and reported by the first Sample.
func NewSampler(inputs hw.Inputs) *Sampler {
	return &Sampler{Inputs: inputs}
}

// Name implements Named.
func (s *Sampler) Name() string {
	return "input-sampler"
}

// Sample reads both ports and returns the events since the last call.
func (s *Sampler) Sample() (events []fx.Message) {
	buttons := s.Inputs.ReadButtons()
	pressed := buttons &^ s.buttons
	s.buttons = buttons
	if latch, ok := s.Inputs.(hw.EdgeLatch); ok {
		pressed |= latch.TakePressed()
	}
	if pressed&(hw.ButtonPedestrian|hw.ButtonPedestrianAlt) != 0 {
		events = append(events, &PedestrianPressed{})
	}
	if pressed&hw.ButtonShutdown != 0 {
		events = append(events, &ShutdownRequested{})
	}

	switches := s.Inputs.ReadSwitches()
	changed := switches ^ s.switches
	s.switches = switches
	if changed&hw.SwitchTrain != 0 {
		events = append(events, &TrainSwitch{On: switches&hw.SwitchTrain != 0})
	}
	if changed&hw.SwitchMaintenance != 0 {
		events = append(events, &MaintenanceSwitch{On: switches&hw.SwitchMaintenance != 0})
	}
	return
}

// Run implements Runnable. It samples once at start and then on every
// change notification from the ports.
func (s *Sampler) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	s.post(loopCtl)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Inputs.Changed():
			s.post(loopCtl)
		}
	}
}

// AddToLoop implements LoopAdder.
func (s *Sampler) AddToLoop(l *fx.Loop) {
	l.AddRunnable(s)
}

func (s *Sampler) post(loopCtl fx.LoopControl) {
	for _, ev := range s.Sample() {
		glog.V(1).Infof("[INPUT] %T %+v", ev, ev)
		loopCtl.PostMessage(ev)
	}
}
