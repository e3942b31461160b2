package env

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crossing/pkg/crossing"
	"github.com/robotalks/crossing/pkg/hw/sim"
	"github.com/robotalks/crossing/pkg/substation"
)

func newTestConfig() *Config {
	conf := NewConfig()
	conf.ID = "test"
	conf.SubstationURL, conf.MQTTBrokerURL = "", ""
	return conf
}

func TestLoadEnv(t *testing.T) {
	vars := map[string]string{
		"CROSSING_ID":             "c7",
		"CROSSING_LOCAL_ID":       "3",
		"CROSSING_INTERVAL":       "50ms",
		"CROSSING_SUBSTATION_URL": "tcp://sub:9000",
		"CROSSING_POLL_TIMEOUT":   "bad",
		"CROSSING_POLL_EVERY":     "5",
		"CROSSING_MQTT_URL":       "mqtt://broker:1883/crossing/",
	}
	conf := Config{PollTimeout: time.Second}
	loadEnv(&conf, func(key string) string { return vars[key] })
	require.Equal(t, Config{
		ID:            "c7",
		LocalID:       3,
		Interval:      50 * time.Millisecond,
		SubstationURL: "tcp://sub:9000",
		PollTimeout:   time.Second,
		PollEvery:     5,
		MQTTBrokerURL: "mqtt://broker:1883/crossing/",
	}, conf)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"id", func(c *Config) { c.ID = "" }, "invalid id: must be specified"},
		{"local-id", func(c *Config) { c.LocalID = 1 << 40 }, "invalid local-id: 1099511627776 out of int32 range"},
		{"interval", func(c *Config) { c.Interval = 0 }, "invalid interval: must be positive"},
		{"poll-timeout", func(c *Config) { c.SubstationURL, c.PollTimeout = "tcp://x:1", 0 }, "invalid poll-timeout: must be positive"},
		{"timing", func(c *Config) { c.Crossing.RedTicks = 0 }, "invalid crossing timing: red-ticks must be positive"},
	}
	require.NoError(t, newTestConfig().Validate())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := newTestConfig()
			tc.modify(conf)
			err := conf.Validate()
			require.EqualError(t, err, tc.err)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
		})
	}
}

func TestNewEnvStandalone(t *testing.T) {
	board := sim.NewBoard()
	e, err := newTestConfig().NewEnv(context.Background(), board)
	require.NoError(t, err)
	defer e.Close()
	require.Nil(t, e.Poller)
	require.Nil(t, e.Link)
	require.NotEmpty(t, e.BootID)

	l := e.NewLoop()
	l.Step(context.Background())
	require.Equal(t, crossing.RedLight, e.Status.Snapshot().State)
	require.False(t, e.Status.Snapshot().Polling)

	_, err = newTestConfig().NewEnv(context.Background(), nil)
	require.EqualError(t, err, "invalid board: must be specified")
}

func TestNewEnvWithSubstation(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := substation.NewServer()
	srv.SetDirective(substation.EnterMaintenance)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, ln)

	conf := newTestConfig()
	conf.SubstationURL = "tcp://" + ln.Addr().String()
	conf.PollTimeout = time.Second
	e, err := conf.NewEnv(ctx, sim.NewBoard())
	require.NoError(t, err)
	defer e.Close()
	require.NotNil(t, e.Poller)

	l := e.NewLoop()
	// the directive applies on the tick after the poll
	l.Step(ctx)
	require.Equal(t, crossing.RedLight, e.Crossing.Snapshot().State)
	l.Step(ctx)
	require.Equal(t, crossing.Maintenance, e.Crossing.Snapshot().State)
	snap := e.Status.Snapshot()
	require.True(t, snap.Polling)
	require.Equal(t, uint64(2), snap.Poll.Polls)
	require.Equal(t, substation.Applied, snap.Poll.Last.Kind)
}

func TestNewEnvBadURLs(t *testing.T) {
	conf := newTestConfig()
	conf.SubstationURL = "bogus://x"
	_, err := conf.NewEnv(context.Background(), sim.NewBoard())
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "substation", cerr.Option)

	conf = newTestConfig()
	conf.MQTTBrokerURL = "mqtt://[::1"
	_, err = conf.NewEnv(context.Background(), sim.NewBoard())
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "mqtt", cerr.Option)
}
