package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
)

type levelInputs struct {
	buttons, switches uint32
	changed           chan struct{}
}

func (i *levelInputs) ReadButtons() uint32      { return i.buttons }
func (i *levelInputs) ReadSwitches() uint32     { return i.switches }
func (i *levelInputs) Changed() <-chan struct{} { return i.changed }

func TestSamplerEdges(t *testing.T) {
	in := &levelInputs{}
	s := NewSampler(in)
	require.Empty(t, s.Sample())

	in.buttons = hw.ButtonPedestrian
	require.Equal(t, []fx.Message{&PedestrianPressed{}}, s.Sample())
	// held button is not a new edge
	require.Empty(t, s.Sample())

	in.buttons = hw.ButtonPedestrian | hw.ButtonPedestrianAlt
	require.Equal(t, []fx.Message{&PedestrianPressed{}}, s.Sample())

	in.buttons = 0
	require.Empty(t, s.Sample())

	in.buttons = hw.ButtonShutdown
	require.Equal(t, []fx.Message{&ShutdownRequested{}}, s.Sample())
}

func TestSamplerSwitchLevels(t *testing.T) {
	in := &levelInputs{switches: hw.SwitchTrain}
	s := NewSampler(in)
	require.Equal(t, []fx.Message{&TrainSwitch{On: true}}, s.Sample())
	require.Empty(t, s.Sample())

	in.switches = hw.SwitchMaintenance
	require.Equal(t, []fx.Message{
		&TrainSwitch{On: false},
		&MaintenanceSwitch{On: true},
	}, s.Sample())

	in.switches = 0
	require.Equal(t, []fx.Message{&MaintenanceSwitch{On: false}}, s.Sample())
}

func TestSamplerLatchedTap(t *testing.T) {
	board := sim.NewBoard()
	s := NewSampler(board)
	board.Press(hw.ButtonPedestrian)
	require.Equal(t, []fx.Message{&PedestrianPressed{}}, s.Sample())
	require.Empty(t, s.Sample())
}

func TestSamplerDeliversEachEdgeOnce(t *testing.T) {
	board := sim.NewBoard()
	l := fx.NewLoop()
	l.Interval = time.Millisecond
	l.Add(NewSampler(board))

	got := make(chan fx.Message, 16)
	l.AddController(fx.PrLvSense, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			mctx.MessageTaken()
			got <- mctx.CurrentMessage()
		}))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	board.SetSwitch(hw.SwitchTrain, true)
	select {
	case msg := <-got:
		require.Equal(t, &TrainSwitch{On: true}, msg)
	case <-time.After(time.Second):
		t.Fatal("switch event not delivered")
	}
	board.Press(hw.ButtonPedestrianAlt)
	select {
	case msg := <-got:
		require.Equal(t, &PedestrianPressed{}, msg)
	case <-time.After(time.Second):
		t.Fatal("button event not delivered")
	}
	select {
	case msg := <-got:
		t.Fatalf("unexpected event %#v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}
