package sh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crossing/pkg/crossing"
	"github.com/robotalks/crossing/pkg/gate"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
	"github.com/robotalks/crossing/pkg/status"
	"github.com/robotalks/crossing/pkg/substation"
)

type fixedSource struct {
	snap status.Snapshot
}

func (f *fixedSource) Snapshot() status.Snapshot { return f.snap }

func TestParseOnOff(t *testing.T) {
	testCases := []struct {
		args []string
		on   bool
		err  bool
	}{
		{[]string{"on"}, true, false},
		{[]string{"OFF"}, false, false},
		{[]string{"1"}, true, false},
		{[]string{"maybe"}, false, true},
		{nil, false, true},
		{[]string{"on", "off"}, false, true},
	}
	for _, tc := range testCases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			on, err := parseOnOff(tc.args)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.on, on)
		})
	}
}

func TestFormatStatus(t *testing.T) {
	snap := status.Snapshot{Snapshot: crossing.Snapshot{
		Tick: 12, State: crossing.Green, Light: hw.Green, GateDuty: gate.Max,
	}}
	require.Equal(t,
		"GREEN_LIGHT     | Gate: OPEN   | Train: CLEAR    | Ped: STOP\n"+
			"tick 12 | light GREEN | duty 10.250% | clamps 0 | ped latch false\n",
		FormatStatus(snap))

	snap.Polling = true
	snap.Poll = substation.PollStats{Polls: 3, LastTick: 12, Last: substation.Outcome{Kind: substation.Applied}}
	require.True(t, strings.HasSuffix(FormatStatus(snap),
		"substation: 3 polls, 0 failed, last at tick 12 APPLIED NONE\n"))
}

func TestFormatResponse(t *testing.T) {
	require.Equal(t, "no response yet\n", FormatResponse(nil))
	resp := &substation.UpdateResponse{ID: 2, Average: 1}
	resp.Values[substation.DirectiveIndex] = 1
	out := FormatResponse(resp)
	require.True(t, strings.HasPrefix(out, "id 2 | average 1 | directive ENTER_MAINTENANCE\n"))
	require.Contains(t, out, "27: 1")
	require.Equal(t, 6, strings.Count(out, "\n"))
}

func TestCommandsDriveBoard(t *testing.T) {
	board := sim.NewBoard()
	s := New(board, &fixedSource{})

	require.NoError(t, s.Run("train", "on"))
	require.Equal(t, hw.SwitchTrain, board.ReadSwitches())
	require.NoError(t, s.Run("maint", "on"))
	require.NoError(t, s.Run("train", "off"))
	require.Equal(t, hw.SwitchMaintenance, board.ReadSwitches())

	require.NoError(t, s.Run("pot", "0.25"))
	pot, err := board.ReadPotentiometer()
	require.NoError(t, err)
	require.Equal(t, 0.25, pot)

	require.NoError(t, s.Run("ped"))
	require.NoError(t, s.Run("shutdown"))
	require.Equal(t, hw.ButtonPedestrian|hw.ButtonShutdown, board.TakePressed())
}
