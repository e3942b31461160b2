package crossing

import (
	"flag"
	"fmt"
)

// Config defines the dwell of each state in ticks.
type Config struct {
	RedTicks           uint
	PedestrianRedTicks uint
	YellowTicks        uint
	MinGreenTicks      uint
	// FlashTicks is the half period of the blue light in maintenance.
	FlashTicks uint
}

// Defaults at 10 ticks per second.
const (
	DefaultRedTicks           uint = 30
	DefaultPedestrianRedTicks uint = 100
	DefaultYellowTicks        uint = 30
	DefaultMinGreenTicks      uint = 100
	DefaultFlashTicks         uint = 10
)

var defaultConfig = Config{
	RedTicks:           DefaultRedTicks,
	PedestrianRedTicks: DefaultPedestrianRedTicks,
	YellowTicks:        DefaultYellowTicks,
	MinGreenTicks:      DefaultMinGreenTicks,
	FlashTicks:         DefaultFlashTicks,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.RedTicks, "red-ticks", defaultConfig.RedTicks, "Red light dwell in ticks.")
	flag.UintVar(&defaultConfig.PedestrianRedTicks, "ped-red-ticks", defaultConfig.PedestrianRedTicks, "Red light dwell in ticks when a pedestrian is waiting.")
	flag.UintVar(&defaultConfig.YellowTicks, "yellow-ticks", defaultConfig.YellowTicks, "Yellow light dwell in ticks.")
	flag.UintVar(&defaultConfig.MinGreenTicks, "green-ticks", defaultConfig.MinGreenTicks, "Minimum green light dwell in ticks.")
	flag.UintVar(&defaultConfig.FlashTicks, "flash-ticks", defaultConfig.FlashTicks, "Maintenance light flashing half period in ticks.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate rejects zero dwells.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		val  uint
	}{
		{"red-ticks", c.RedTicks},
		{"ped-red-ticks", c.PedestrianRedTicks},
		{"yellow-ticks", c.YellowTicks},
		{"green-ticks", c.MinGreenTicks},
		{"flash-ticks", c.FlashTicks},
	} {
		if f.val == 0 {
			return fmt.Errorf("%s must be positive", f.name)
		}
	}
	return nil
}
