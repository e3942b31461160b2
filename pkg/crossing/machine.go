package crossing

import (
	"github.com/robotalks/crossing/pkg/gate"
	"github.com/robotalks/crossing/pkg/hw"
)

// Overrides are the externally set conditions evaluated every tick.
// MaintenanceActive outranks TrainArriving which outranks the light cycle.
type Overrides struct {
	TrainArriving     bool
	MaintenanceActive bool
}

// Input is everything a tick consumes.
type Input struct {
	Overrides
	// PedestrianPressed reports a walk request edge since the last tick.
	PedestrianPressed bool
	// Potentiometer is the knob reading in [0, 1], used in Maintenance.
	Potentiometer float64
}

// Command is the actuator output of one tick. GateDuty is not clamped;
// the gate actuator does that.
type Command struct {
	State    State
	Light    hw.Color
	GateDuty float64
	Walk     bool
	// Entered is true when State was entered on this tick.
	Entered bool
}

// Machine sequences the crossing. It has no notion of wall time: every
// call to Tick is one tick. It is not safe for concurrent use.
type Machine struct {
	Config Config

	state      State
	elapsed    uint
	pedestrian bool
}

// NewMachine creates a Machine in RedLight.
func NewMachine(conf Config) *Machine {
	return &Machine{Config: conf, state: RedLight}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Elapsed returns the ticks since the current state was entered.
func (m *Machine) Elapsed() uint {
	return m.elapsed
}

// PedestrianRequested returns the pedestrian latch.
func (m *Machine) PedestrianRequested() bool {
	return m.pedestrian
}

// Tick advances one tick: overrides first, then the state's own exit
// condition. A state entered by an override stays for at least this tick.
func (m *Machine) Tick(in Input) Command {
	m.elapsed++
	if in.PedestrianPressed {
		m.pedestrian = true
	}

	switch {
	case in.MaintenanceActive && m.state != Maintenance:
		m.enter(Maintenance)
	case in.TrainArriving && m.state.Priority() < TrainClosing.Priority():
		m.enter(TrainClosing)
	default:
		if next, ok := m.exit(in.Overrides); ok {
			m.enter(next)
		}
	}
	return m.command(in)
}

func (m *Machine) enter(s State) {
	m.state, m.elapsed = s, 0
}

func (m *Machine) exit(o Overrides) (State, bool) {
	conf := &m.Config
	switch m.state {
	case RedLight:
		dwell := conf.RedTicks
		if m.pedestrian {
			dwell = conf.PedestrianRedTicks
		}
		if m.elapsed >= dwell {
			m.pedestrian = false
			return Yellow1, true
		}
	case Yellow1:
		if m.elapsed >= conf.YellowTicks {
			return Green, true
		}
	case Green:
		if m.elapsed >= conf.MinGreenTicks {
			return Yellow2, true
		}
	case Yellow2:
		if m.elapsed >= conf.YellowTicks {
			return RedLight, true
		}
	case TrainClosing:
		return TrainClosed, true
	case TrainClosed:
		if !o.TrainArriving {
			return TrainOpening, true
		}
	case TrainOpening:
		return TrainWaitPed, true
	case TrainWaitPed:
		if m.elapsed >= conf.PedestrianRedTicks {
			return Yellow1, true
		}
	case Maintenance:
		if !o.MaintenanceActive {
			return RedLight, true
		}
	}
	return m.state, false
}

func (m *Machine) command(in Input) Command {
	cmd := Command{State: m.state, GateDuty: gate.Max, Entered: m.elapsed == 0}
	switch m.state {
	case RedLight:
		cmd.Light, cmd.Walk = hw.Red, m.pedestrian
	case Yellow1, Yellow2:
		cmd.Light = hw.Yellow
	case Green:
		cmd.Light = hw.Green
	case TrainClosing, TrainClosed:
		cmd.Light, cmd.GateDuty, cmd.Walk = hw.Red, gate.Min, true
	case TrainOpening, TrainWaitPed:
		cmd.Light, cmd.Walk = hw.Red, true
	case Maintenance:
		cmd.Walk = true
		flash := m.Config.FlashTicks
		if flash == 0 {
			flash = DefaultFlashTicks
		}
		if (m.elapsed/flash)%2 == 0 {
			cmd.Light = hw.Blue
		}
		if m.elapsed == 0 {
			cmd.GateDuty = gate.Min
		} else {
			cmd.GateDuty = gate.FromPotentiometer(in.Potentiometer)
		}
	}
	return cmd
}
