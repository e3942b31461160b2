package crossing

import (
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/gate"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/input"
)

// Snapshot is the read-only view of the crossing between ticks.
type Snapshot struct {
	Tick                uint64
	State               State
	Light               hw.Color
	GateDuty            float64
	Walk                bool
	TrainArriving       bool
	MaintenanceActive   bool
	PedestrianRequested bool
	Clamps              uint64
}

// GateOpen reports whether the gate is commanded open.
func (s Snapshot) GateOpen() bool {
	return gate.IsOpen(s.GateDuty)
}

// GateStatus returns OPEN or CLOSED.
func (s Snapshot) GateStatus() string {
	if s.GateOpen() {
		return "OPEN"
	}
	return "CLOSED"
}

// TrainStatus returns ARRIVING or CLEAR.
func (s Snapshot) TrainStatus() string {
	if s.TrainArriving {
		return "ARRIVING"
	}
	return "CLEAR"
}

// PedestrianStatus returns WALK or STOP.
func (s Snapshot) PedestrianStatus() string {
	if s.Walk {
		return "WALK"
	}
	return "STOP"
}

// Controller runs the Machine inside the loop: it consumes input events,
// reads the potentiometer, ticks the machine and drives the actuators.
type Controller struct {
	Machine *Machine
	Board   hw.Board
	Gate    *gate.Actuator
	// OnShutdown is called when the shutdown button is pressed.
	OnShutdown func()

	overrides Overrides
	pot       float64

	lock     sync.RWMutex
	snapshot Snapshot
}

// NewController creates a Controller over the board.
func NewController(conf Config, board hw.Board) *Controller {
	m := NewMachine(conf)
	return &Controller{
		Machine:  m,
		Board:    board,
		Gate:     gate.NewActuator(board),
		snapshot: Snapshot{State: m.State(), GateDuty: gate.Mid},
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, c)
}

// Overrides returns the overrides that the next tick will use.
func (c *Controller) Overrides() Overrides {
	return c.overrides
}

// SetMaintenance changes the maintenance override. It must be called from
// the loop, e.g. by another controller.
func (c *Controller) SetMaintenance(on bool) {
	if c.overrides.MaintenanceActive != on {
		glog.Infof("maintenance override %v", on)
	}
	c.overrides.MaintenanceActive = on
}

// Snapshot returns the state after the last tick. Safe for concurrent use.
func (c *Controller) Snapshot() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snapshot
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	var pressed bool
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *input.PedestrianPressed:
			mctx.MessageTaken()
			glog.Info("[INPUT] pedestrian request")
			pressed = true
		case *input.TrainSwitch:
			mctx.MessageTaken()
			glog.Infof("[INPUT] train: %v", msg.On)
			c.overrides.TrainArriving = msg.On
		case *input.MaintenanceSwitch:
			mctx.MessageTaken()
			glog.Infof("[INPUT] maintenance: %v", msg.On)
			c.overrides.MaintenanceActive = msg.On
		case *input.ShutdownRequested:
			mctx.MessageTaken()
			glog.Info("[INPUT] shutdown requested")
			if fn := c.OnShutdown; fn != nil {
				fn()
			}
		}
	}))

	var errs fx.AggregatedError
	if pot, err := c.Board.ReadPotentiometer(); err != nil {
		errs.Add(err)
	} else {
		c.pot = pot
	}

	prev := c.Machine.State()
	cmd := c.Machine.Tick(Input{
		Overrides:         c.overrides,
		PedestrianPressed: pressed,
		Potentiometer:     c.pot,
	})
	if cmd.Entered && cmd.State != prev {
		glog.Infof("tick %d: %s -> %s", cc.Tick(), prev, cmd.State)
		switch {
		case cmd.State.IsTrain() && !prev.IsTrain():
			glog.Infof("tick %d: train sequence started", cc.Tick())
		case prev.IsTrain() && !cmd.State.IsTrain():
			glog.Infof("tick %d: train sequence ended", cc.Tick())
		}
	}

	duty, err := c.Gate.Set(cmd.GateDuty)
	errs.Add(err,
		c.Board.SetLight(cmd.Light),
		c.Board.SetWalk(cmd.Walk))

	c.lock.Lock()
	c.snapshot = Snapshot{
		Tick:                cc.Tick(),
		State:               cmd.State,
		Light:               cmd.Light,
		GateDuty:            duty,
		Walk:                cmd.Walk,
		TrainArriving:       c.overrides.TrainArriving,
		MaintenanceActive:   c.overrides.MaintenanceActive,
		PedestrianRequested: c.Machine.PedestrianRequested(),
		Clamps:              c.Gate.Clamps(),
	}
	c.lock.Unlock()
	return errs.Aggregate()
}
