// Package status renders the crossing state for operators and remote
// monitors. Everything here reads snapshots and never feeds back into
// control.
package status

import (
	"fmt"
	"io"

	"github.com/robotalks/crossing/pkg/crossing"
	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/substation"
)

// Snapshot combines the crossing state with the substation link state.
type Snapshot struct {
	crossing.Snapshot
	// Poll is valid when Polling is set.
	Poll    substation.PollStats
	Polling bool
}

// Line renders the one-line console status.
func (s Snapshot) Line() string {
	return FormatLine(s.State.String(), s.GateStatus(), s.TrainStatus(), s.PedestrianStatus())
}

// FormatLine formats the console status fields.
func FormatLine(state, gate, train, ped string) string {
	return fmt.Sprintf("%-15s | Gate: %-6s | Train: %-8s | Ped: %s", state, gate, train, ped)
}

// Source provides snapshots.
type Source interface {
	Snapshot() Snapshot
}

// CrossingSource provides the crossing part of a snapshot.
type CrossingSource interface {
	Snapshot() crossing.Snapshot
}

// PollSource provides the substation part of a snapshot.
type PollSource interface {
	Stats() substation.PollStats
}

// Collector implements Source over the running components.
type Collector struct {
	Crossing CrossingSource
	// Poller is nil when no substation is configured.
	Poller PollSource
}

// Snapshot implements Source.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{Snapshot: c.Crossing.Snapshot()}
	if c.Poller != nil {
		s.Poll, s.Polling = c.Poller.Stats(), true
	}
	return s
}

// Display writes the console line whenever it changes.
type Display struct {
	Out    io.Writer
	Source Source

	last string
}

// NewDisplay creates a Display.
func NewDisplay(out io.Writer, src Source) *Display {
	return &Display{Out: out, Source: src}
}

// AddToLoop implements LoopAdder.
func (d *Display) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvIdle, d)
}

// Control implements Controller.
func (d *Display) Control(cc fx.ControlContext) error {
	line := d.Source.Snapshot().Line()
	if line == d.last {
		return nil
	}
	d.last = line
	_, err := fmt.Fprintln(d.Out, line)
	return err
}
