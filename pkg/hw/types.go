// Package hw defines the narrow collaborator interfaces between the
// crossing core and the board peripherals.
package hw

// Color is a traffic light color.
type Color int

// Light colors.
const (
	Off Color = iota
	Red
	Yellow
	Green
	Blue
)

var colorNames = [...]string{"OFF", "RED", "YELLOW", "GREEN", "BLUE"}

// String implements fmt.Stringer.
func (c Color) String() string {
	if c >= 0 && int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "UNKNOWN"
}

// Button bits as read from the button port.
const (
	ButtonPedestrian    uint32 = 1 << 0
	ButtonPedestrianAlt uint32 = 1 << 2
	ButtonShutdown      uint32 = 1 << 3
)

// Switch bits as read from the switch port.
const (
	SwitchTrain       uint32 = 1 << 0
	SwitchMaintenance uint32 = 1 << 1
)

// Gate drives the gate servo.
type Gate interface {
	// SetDuty commands the PWM duty in percent. Callers clamp first.
	SetDuty(percent float64) error
}

// Lights drives the traffic light.
type Lights interface {
	SetLight(Color) error
}

// PedestrianSignal drives the walk indicator.
type PedestrianSignal interface {
	SetWalk(on bool) error
}

// Potentiometer reads the manual gate control knob, normalized to [0, 1].
type Potentiometer interface {
	ReadPotentiometer() (float64, error)
}

// Inputs exposes the debounced button and switch ports.
type Inputs interface {
	ReadButtons() uint32
	ReadSwitches() uint32
	// Changed is signaled (interrupt-style) whenever a port value changes.
	Changed() <-chan struct{}
}

// EdgeLatch is implemented by inputs that latch button edges in hardware
// so a tap shorter than the sampling period is not lost.
type EdgeLatch interface {
	// TakePressed returns and clears the latched rising edges.
	TakePressed() uint32
}

// Board bundles all collaborators of one crossing.
type Board interface {
	Gate
	Lights
	PedestrianSignal
	Potentiometer
	Inputs
}
