// Package sh provides the operator console of a crossing running on the
// simulated board.
package sh

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/hw/sim"
	"github.com/robotalks/crossing/pkg/status"
	"github.com/robotalks/crossing/pkg/substation"
)

// ResponseSource provides the last substation response.
type ResponseSource interface {
	LastResponse() *substation.UpdateResponse
}

// Shell provides an ishell backed console driving the simulated board.
type Shell struct {
	Shell  *ishell.Shell
	Board  *sim.Board
	Status status.Source
	// Responses is nil without a substation.
	Responses ResponseSource
}

const shellKey = "$shell"

var commands = []*ishell.Cmd{
	&StatusCmd,
	&PedestrianCmd,
	&TrainCmd,
	&MaintenanceCmd,
	&PotCmd,
	&SubstationCmd,
	&ShutdownCmd,
}

// New creates a Shell.
func New(board *sim.Board, src status.Source) *Shell {
	s := &Shell{Shell: ishell.New(), Board: board, Status: src}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("crossing > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run runs the console until exit, or evaluates args as one command.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	s.Shell.Run()
	return nil
}

// FormatStatus renders a snapshot for the status command.
func FormatStatus(snap status.Snapshot) string {
	var w bytes.Buffer
	fmt.Fprintln(&w, snap.Line())
	fmt.Fprintf(&w, "tick %d | light %s | duty %.3f%% | clamps %d | ped latch %v\n",
		snap.Tick, snap.Light, snap.GateDuty, snap.Clamps, snap.PedestrianRequested)
	if snap.Polling {
		fmt.Fprintf(&w, "substation: %d polls, %d failed", snap.Poll.Polls, snap.Poll.Failures)
		if snap.Poll.Polls > 0 {
			fmt.Fprintf(&w, ", last at tick %d %s", snap.Poll.LastTick, snap.Poll.Last)
		}
		w.WriteString("\n")
	}
	return w.String()
}

// FormatResponse renders the values of a substation response.
func FormatResponse(resp *substation.UpdateResponse) string {
	if resp == nil {
		return "no response yet\n"
	}
	var w bytes.Buffer
	fmt.Fprintf(&w, "id %d | average %d | directive %s\n", resp.ID, resp.Average, resp.Directive())
	for n, v := range resp.Values {
		fmt.Fprintf(&w, "%2d: %d", n, v)
		if n%6 == 5 {
			w.WriteString("\n")
		} else {
			w.WriteString("\t")
		}
	}
	return w.String()
}

func parseOnOff(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expect on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, got %q", args[0])
}

func switchCmd(mask uint32) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		on, err := parseOnOff(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		ShellFrom(c).Board.SetSwitch(mask, on)
	}
}

var (
	// StatusCmd prints the crossing status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			c.Print(FormatStatus(ShellFrom(c).Status.Snapshot()))
		},
	}

	// PedestrianCmd taps the walk button.
	PedestrianCmd = ishell.Cmd{
		Name:    "ped",
		Aliases: []string{"p"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Board.Press(hw.ButtonPedestrian)
		},
	}

	// TrainCmd flips the train switch.
	TrainCmd = ishell.Cmd{
		Name:    "train",
		Aliases: []string{"t"},
		Help:    "on|off",
		Func:    switchCmd(hw.SwitchTrain),
	}

	// MaintenanceCmd flips the maintenance switch.
	MaintenanceCmd = ishell.Cmd{
		Name:    "maint",
		Aliases: []string{"m"},
		Help:    "on|off",
		Func:    switchCmd(hw.SwitchMaintenance),
	}

	// PotCmd sets the potentiometer.
	PotCmd = ishell.Cmd{
		Name: "pot",
		Help: "VALUE (0..1)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect a value"))
				return
			}
			v, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Board.SetPotentiometer(v)
		},
	}

	// SubstationCmd prints the last substation response.
	SubstationCmd = ishell.Cmd{
		Name:    "substation",
		Aliases: []string{"sub"},
		Help:    "",
		Func: func(c *ishell.Context) {
			src := ShellFrom(c).Responses
			if src == nil {
				c.Err(fmt.Errorf("no substation configured"))
				return
			}
			c.Print(FormatResponse(src.LastResponse()))
		},
	}

	// ShutdownCmd presses the shutdown button.
	ShutdownCmd = ishell.Cmd{
		Name: "shutdown",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Board.Press(hw.ButtonShutdown)
		},
	}
)
