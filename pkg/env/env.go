package env

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/crossing/pkg/crossing"
	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/hw"
	"github.com/robotalks/crossing/pkg/input"
	"github.com/robotalks/crossing/pkg/status"
	"github.com/robotalks/crossing/pkg/status/mqtt"
	"github.com/robotalks/crossing/pkg/substation"
)

// Env is a fully wired crossing controller.
type Env struct {
	Config *Config
	// BootID is unique per process start.
	BootID string
	Board  hw.Board

	Sampler  *input.Sampler
	Crossing *crossing.Controller
	// Poller is nil without a substation.
	Poller *substation.Poller
	Status *status.Collector
	// Link and Publisher are nil without a broker.
	Link      *mqtt.Link
	Publisher *mqtt.Publisher
}

// NewEnv validates the config and wires the components over the board.
// The substation link is opened here so a bad URL fails at startup.
func (c *Config) NewEnv(ctx context.Context, board hw.Board) (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if board == nil {
		return nil, &ConfigError{Option: "board", Err: errMissing}
	}
	e := &Env{
		Config:   c,
		BootID:   uuid.New().String(),
		Board:    board,
		Sampler:  input.NewSampler(board),
		Crossing: crossing.NewController(c.Crossing, board),
	}
	e.Status = &status.Collector{Crossing: e.Crossing}

	if c.SubstationURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		transport, err := substation.Dial(dialCtx, c.SubstationURL)
		cancel()
		if err != nil {
			return nil, &ConfigError{Option: "substation", Err: err}
		}
		client := substation.NewClient(transport)
		client.Timeout = c.PollTimeout
		e.Poller = substation.NewPoller(client, e.Crossing, int32(c.LocalID))
		e.Poller.Every = uint64(c.PollEvery)
		e.Status.Poller = e.Poller
	}

	if c.MQTTBrokerURL != "" {
		link, err := mqtt.NewLink(c.MQTTBrokerURL, mqtt.Meta{
			ID:         c.ID,
			BootID:     e.BootID,
			Started:    time.Now(),
			Substation: c.SubstationURL,
		})
		if err != nil {
			e.Close()
			return nil, &ConfigError{Option: "mqtt", Err: err}
		}
		e.Link = link
		e.Publisher = mqtt.NewPublisher(link.Queue, e.Status, c.ID, e.BootID)
	}
	glog.Infof("crossing %s boot %s", c.ID, e.BootID)
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(ctx context.Context, board hw.Board) *Env {
	e, err := c.NewEnv(ctx, board)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// NewLoop creates a loop ticking at the configured interval with all
// components added.
func (e *Env) NewLoop() *fx.Loop {
	l := fx.NewLoop()
	l.Interval = e.Config.Interval
	e.AddToLoop(l)
	return l
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(l *fx.Loop) {
	l.Add(e.Sampler, e.Crossing)
	if e.Poller != nil {
		l.Add(e.Poller)
	}
	if e.Link != nil {
		l.Add(e.Link, e.Publisher)
	}
}

// Close releases the substation link.
func (e *Env) Close() error {
	if e.Poller != nil {
		return e.Poller.Client.Close()
	}
	return nil
}
