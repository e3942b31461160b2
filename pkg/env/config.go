// Package env assembles a crossing controller from configuration.
package env

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/crossing/pkg/crossing"
	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/substation"
)

// Config provides the options of a crossing controller.
type Config struct {
	// ID identifies the crossing on the status broker.
	ID string
	// LocalID is sent in every substation request.
	LocalID int64
	// Interval is the tick period.
	Interval time.Duration

	// SubstationURL selects the substation link, empty disables polling.
	// e.g. serial:///dev/ttyUSB0?baud=9600, tcp://host:port, ws://host:port/
	SubstationURL string
	PollTimeout   time.Duration
	// PollEvery is the poll period in ticks.
	PollEvery uint

	// MQTTBrokerURL specifies the status broker, empty disables publishing.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string

	Crossing crossing.Config
}

var defaultConfig = Config{
	Interval:    fx.DefaultInterval,
	PollTimeout: substation.DefaultTimeout,
	PollEvery:   1,
}

func init() {
	loadEnv(&defaultConfig, os.Getenv)
	if defaultConfig.ID == "" {
		defaultConfig.ID = MachineID()
	}
}

func loadEnv(conf *Config, getenv func(string) string) {
	if val := getenv("CROSSING_ID"); val != "" {
		conf.ID = val
	}
	if val := getenv("CROSSING_LOCAL_ID"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			conf.LocalID = n
		}
	}
	if val := getenv("CROSSING_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			conf.Interval = d
		}
	}
	if val := getenv("CROSSING_SUBSTATION_URL"); val != "" {
		conf.SubstationURL = val
	}
	if val := getenv("CROSSING_POLL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			conf.PollTimeout = d
		}
	}
	if val := getenv("CROSSING_POLL_EVERY"); val != "" {
		if n, err := strconv.ParseUint(val, 10, 32); err == nil {
			conf.PollEvery = uint(n)
		}
	}
	if val := getenv("CROSSING_MQTT_URL"); val != "" {
		conf.MQTTBrokerURL = val
	}
}

// MachineID derives a stable crossing id from the machine id. It returns
// an empty string when the machine id is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID("crossing")
	if err != nil {
		return ""
	}
	return id[:12]
}

// SetupFlags sets command line flags, including the crossing timing.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Crossing ID.")
	flag.Int64Var(&defaultConfig.LocalID, "local-id", defaultConfig.LocalID, "ID sent to the substation.")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Tick period.")
	flag.StringVar(&defaultConfig.SubstationURL, "substation", defaultConfig.SubstationURL, "Substation URL.")
	flag.DurationVar(&defaultConfig.PollTimeout, "poll-timeout", defaultConfig.PollTimeout, "Substation response timeout.")
	flag.UintVar(&defaultConfig.PollEvery, "poll-every", defaultConfig.PollEvery, "Substation poll period in ticks.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for status.")
	crossing.SetupFlags()
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults. Call it after flags are parsed.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Crossing = *crossing.Default()
	return &conf
}

var errMissing = errors.New("must be specified")

// ConfigError reports an invalid option.
type ConfigError struct {
	Option string
	Err    error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Option, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Validate checks the options.
func (c *Config) Validate() error {
	if c.ID == "" {
		return &ConfigError{Option: "id", Err: errMissing}
	}
	if c.LocalID < math.MinInt32 || c.LocalID > math.MaxInt32 {
		return &ConfigError{Option: "local-id", Err: fmt.Errorf("%d out of int32 range", c.LocalID)}
	}
	if c.Interval <= 0 {
		return &ConfigError{Option: "interval", Err: fmt.Errorf("must be positive")}
	}
	if c.SubstationURL != "" && c.PollTimeout <= 0 {
		return &ConfigError{Option: "poll-timeout", Err: fmt.Errorf("must be positive")}
	}
	if err := c.Crossing.Validate(); err != nil {
		return &ConfigError{Option: "crossing timing", Err: err}
	}
	return nil
}
