package gate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingGate struct {
	duties []float64
	err    error
}

func (g *recordingGate) SetDuty(percent float64) error {
	g.duties = append(g.duties, percent)
	return g.err
}

func TestClamp(t *testing.T) {
	testCases := []struct {
		name   string
		duty   float64
		expect float64
		ok     bool
	}{
		{"min", Min, Min, true},
		{"max", Max, Max, true},
		{"mid", Mid, Mid, true},
		{"below", 0, Min, false},
		{"above", 100, Max, false},
		{"nan", math.NaN(), Min, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			duty, ok := Clamp(tc.duty)
			require.Equal(t, tc.expect, duty)
			require.Equal(t, tc.ok, ok)
		})
	}
}

func TestFromPotentiometer(t *testing.T) {
	require.Equal(t, Min, FromPotentiometer(0))
	require.Equal(t, Max, FromPotentiometer(1))
	require.InDelta(t, (Min+Max)/2, FromPotentiometer(0.5), 1e-9)
	require.True(t, FromPotentiometer(1.2) > Max)
}

func TestIsOpen(t *testing.T) {
	require.True(t, IsOpen(Max))
	require.False(t, IsOpen(Min))
	require.False(t, IsOpen(Mid))
}

func TestActuatorClampsBeforeDriver(t *testing.T) {
	drv := &recordingGate{}
	a := NewActuator(drv)
	require.Equal(t, Mid, a.Duty())

	applied, err := a.Set(42)
	require.NoError(t, err)
	require.Equal(t, Max, applied)
	applied, err = a.Set(-1)
	require.NoError(t, err)
	require.Equal(t, Min, applied)
	applied, err = a.Set(8)
	require.NoError(t, err)
	require.Equal(t, 8.0, applied)

	require.Equal(t, []float64{Max, Min, 8}, drv.duties)
	require.Equal(t, uint64(2), a.Clamps())
	require.Equal(t, 8.0, a.Duty())
}

func TestActuatorDriverError(t *testing.T) {
	drv := &recordingGate{err: errors.New("pwm stalled")}
	a := NewActuator(drv)
	applied, err := a.Set(Max)
	require.Error(t, err)
	require.Contains(t, err.Error(), "pwm stalled")
	require.Equal(t, Max, applied)
}

func TestClampErrorMessage(t *testing.T) {
	err := &ClampError{Requested: 11, Applied: Max}
	require.Contains(t, err.Error(), "maximum")
	err = &ClampError{Requested: 1, Applied: Min}
	require.Contains(t, err.Error(), "minimum")
}
