// Package sim provides an in-memory board so the crossing runs on a
// desktop and in tests.
package sim

import (
	"sync"

	"github.com/robotalks/crossing/pkg/hw"
)

// Board implements hw.Board in memory. Inputs are driven by Press,
// SetSwitch and SetPotentiometer.
type Board struct {
	lock     sync.Mutex
	buttons  uint32
	pressed  uint32
	switches uint32
	pot      float64
	duty     float64
	light    hw.Color
	walk     bool
	changed  chan struct{}
}

// NewBoard creates a Board with the gate at mid position.
func NewBoard() *Board {
	return &Board{duty: 7.5, changed: make(chan struct{}, 1)}
}

// SetDuty implements hw.Gate.
func (b *Board) SetDuty(percent float64) error {
	b.lock.Lock()
	b.duty = percent
	b.lock.Unlock()
	return nil
}

// SetLight implements hw.Lights.
func (b *Board) SetLight(c hw.Color) error {
	b.lock.Lock()
	b.light = c
	b.lock.Unlock()
	return nil
}

// SetWalk implements hw.PedestrianSignal.
func (b *Board) SetWalk(on bool) error {
	b.lock.Lock()
	b.walk = on
	b.lock.Unlock()
	return nil
}

// ReadPotentiometer implements hw.Potentiometer.
func (b *Board) ReadPotentiometer() (float64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.pot, nil
}

// ReadButtons implements hw.Inputs.
func (b *Board) ReadButtons() uint32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buttons
}

// ReadSwitches implements hw.Inputs.
func (b *Board) ReadSwitches() uint32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.switches
}

// Changed implements hw.Inputs.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

// SetButtons sets the raw button port value.
func (b *Board) SetButtons(mask uint32) {
	b.lock.Lock()
	b.buttons = mask
	b.lock.Unlock()
	b.notify()
}

// Press taps buttons: the rising edge is latched until TakePressed
// even though the level never stays high.
func (b *Board) Press(mask uint32) {
	b.lock.Lock()
	b.pressed |= mask
	b.lock.Unlock()
	b.notify()
}

// TakePressed implements hw.EdgeLatch.
func (b *Board) TakePressed() uint32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	pressed := b.pressed
	b.pressed = 0
	return pressed
}

// SetSwitch flips switch bits on or off.
func (b *Board) SetSwitch(mask uint32, on bool) {
	b.lock.Lock()
	if on {
		b.switches |= mask
	} else {
		b.switches &^= mask
	}
	b.lock.Unlock()
	b.notify()
}

// SetPotentiometer sets the knob position; values are not clamped so
// callers can exercise the gate clamp.
func (b *Board) SetPotentiometer(v float64) {
	b.lock.Lock()
	b.pot = v
	b.lock.Unlock()
}

// Duty returns the last commanded gate duty.
func (b *Board) Duty() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.duty
}

// Light returns the current light color.
func (b *Board) Light() hw.Color {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.light
}

// Walk returns the walk indicator state.
func (b *Board) Walk() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.walk
}

func (b *Board) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}
