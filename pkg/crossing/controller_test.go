package crossing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/gate"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
	"github.com/robotalks/crossing/pkg/input"
)

type failingBoard struct {
	*sim.Board
	lightErr error
	potErr   error
}

func (b *failingBoard) SetLight(c hw.Color) error {
	if b.lightErr != nil {
		return b.lightErr
	}
	return b.Board.SetLight(c)
}

func (b *failingBoard) ReadPotentiometer() (float64, error) {
	if b.potErr != nil {
		return 0, b.potErr
	}
	return b.Board.ReadPotentiometer()
}

func newTestLoop(board hw.Board) (*fx.Loop, *Controller) {
	c := NewController(*NewConfig(), board)
	return fx.NewLoop().Add(c), c
}

func stepN(l *fx.Loop, n int) {
	for i := 0; i < n; i++ {
		l.Step(context.Background())
	}
}

func TestControllerDrivesBoard(t *testing.T) {
	board := sim.NewBoard()
	l, c := newTestLoop(board)
	l.Step(context.Background())

	snap := c.Snapshot()
	require.Equal(t, uint64(1), snap.Tick)
	require.Equal(t, RedLight, snap.State)
	require.Equal(t, hw.Red, board.Light())
	require.Equal(t, gate.Max, board.Duty())
	require.False(t, board.Walk())
	require.Equal(t, "OPEN", snap.GateStatus())
	require.Equal(t, "CLEAR", snap.TrainStatus())
	require.Equal(t, "STOP", snap.PedestrianStatus())
}

func TestControllerConsumesEvents(t *testing.T) {
	board := sim.NewBoard()
	l, c := newTestLoop(board)

	l.PostMessage(&input.PedestrianPressed{})
	l.Step(context.Background())
	require.True(t, board.Walk())
	require.True(t, c.Snapshot().PedestrianRequested)

	l.PostMessage(&input.TrainSwitch{On: true})
	l.Step(context.Background())
	snap := c.Snapshot()
	require.Equal(t, TrainClosing, snap.State)
	require.Equal(t, "CLOSED", snap.GateStatus())
	require.Equal(t, "ARRIVING", snap.TrainStatus())
	require.Equal(t, gate.Min, board.Duty())

	// the switch level persists without new events
	stepN(l, 5)
	require.Equal(t, TrainClosed, c.Snapshot().State)

	l.PostMessage(&input.TrainSwitch{On: false})
	l.Step(context.Background())
	require.Equal(t, TrainOpening, c.Snapshot().State)

	l.PostMessage(&input.MaintenanceSwitch{On: true})
	l.Step(context.Background())
	require.Equal(t, Maintenance, c.Snapshot().State)
	require.Equal(t, hw.Blue, board.Light())
}

func TestControllerShutdownRequest(t *testing.T) {
	l, c := newTestLoop(sim.NewBoard())
	var called int
	c.OnShutdown = func() { called++ }
	l.PostMessage(&input.ShutdownRequested{})
	stepN(l, 2)
	require.Equal(t, 1, called)
}

func TestControllerSetMaintenance(t *testing.T) {
	board := sim.NewBoard()
	board.SetPotentiometer(1.5)
	l, c := newTestLoop(board)

	c.SetMaintenance(true)
	l.Step(context.Background())
	require.Equal(t, Maintenance, c.Snapshot().State)
	require.Equal(t, gate.Min, board.Duty())

	l.Step(context.Background())
	snap := c.Snapshot()
	require.Equal(t, gate.Max, board.Duty())
	require.Equal(t, uint64(1), snap.Clamps)

	c.SetMaintenance(false)
	l.Step(context.Background())
	require.Equal(t, RedLight, c.Snapshot().State)
	require.False(t, c.Overrides().MaintenanceActive)
}

func TestControllerCollaboratorErrors(t *testing.T) {
	board := &failingBoard{
		Board:    sim.NewBoard(),
		lightErr: errors.New("light stuck"),
		potErr:   errors.New("adc busy"),
	}
	c := NewController(*NewConfig(), board)
	l := fx.NewLoop()

	var err error
	l.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		err = c.Control(cc)
		return err
	}))
	l.Step(context.Background())
	require.EqualError(t, err, "multiple errors: adc busy; light stuck")
	// sequencing continues despite failures
	require.Equal(t, RedLight, c.Snapshot().State)
	require.Equal(t, gate.Max, board.Duty())
}
