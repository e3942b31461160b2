// Package gate maps gate positions onto servo PWM duty.
package gate

import (
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/crossing/pkg/hw"
)

// Duty limits in percent of the 20ms servo period.
const (
	Min = 5.5   // closed
	Max = 10.25 // open
	Mid = 7.5   // nominal midpoint, used as open/closed threshold
)

// ClampError describes a duty correction. It is a diagnostic, not a
// failure: the clamped value has already been applied.
type ClampError struct {
	Requested float64
	Applied   float64
}

// Error implements error.
func (e *ClampError) Error() string {
	limit := "minimum"
	if e.Requested > Max {
		limit = "maximum"
	}
	return fmt.Sprintf("gate duty %.3f exceeds %s limit, clamped to %.3f", e.Requested, limit, e.Applied)
}

// Clamp limits duty to [Min, Max]. ok is false when duty was corrected.
func Clamp(duty float64) (clamped float64, ok bool) {
	switch {
	case duty < Min:
		return Min, false
	case duty > Max:
		return Max, false
	case duty != duty: // NaN
		return Min, false
	}
	return duty, true
}

// FromPotentiometer scales a knob reading in [0, 1] linearly onto
// [Min, Max]. Out of range readings produce out of range duty which
// the Actuator clamps.
func FromPotentiometer(pot float64) float64 {
	return pot*(Max-Min) + Min
}

// IsOpen reports whether duty commands the gate above midpoint.
func IsOpen(duty float64) bool {
	return duty > Mid
}

// Actuator clamps every command before it reaches the servo driver.
type Actuator struct {
	Driver hw.Gate

	lock   sync.Mutex
	duty   float64
	clamps uint64
}

// NewActuator creates an Actuator over the driver.
func NewActuator(driver hw.Gate) *Actuator {
	return &Actuator{Driver: driver, duty: Mid}
}

// Set clamps duty, drives the servo and returns the applied duty.
// A correction is logged and counted but never returned as an error;
// only driver failures are.
func (a *Actuator) Set(duty float64) (float64, error) {
	applied, ok := Clamp(duty)
	a.lock.Lock()
	if !ok {
		a.clamps++
	}
	a.duty = applied
	a.lock.Unlock()
	if !ok {
		glog.Warning((&ClampError{Requested: duty, Applied: applied}).Error())
	}
	if err := a.Driver.SetDuty(applied); err != nil {
		return applied, fmt.Errorf("gate driver: %w", err)
	}
	return applied, nil
}

// Duty returns the last applied duty.
func (a *Actuator) Duty() float64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.duty
}

// Clamps returns how many commands were corrected so far.
func (a *Actuator) Clamps() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.clamps
}
