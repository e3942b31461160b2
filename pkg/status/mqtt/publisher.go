package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/status"
)

// Topics relative to the queue prefix.
const (
	StatusTopicPattern = "+/status"
	MetaTopicPattern   = "+/meta"
)

// StatusTopic is where a crossing publishes CrossingStatus records.
func StatusTopic(id string) string {
	return id + "/status"
}

// MetaTopic is where a crossing announces itself. It's retained and
// cleared by the will when the crossing goes away.
func MetaTopic(id string) string {
	return id + "/meta"
}

// Meta is the JSON payload of the meta topic.
type Meta struct {
	ID         string    `json:"id"`
	BootID     string    `json:"boot_id"`
	Started    time.Time `json:"started"`
	Substation string    `json:"substation,omitempty"`
}

// Pub publishes a payload.
type Pub interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher publishes the crossing status from the loop when it changes.
type Publisher struct {
	Queue  Pub
	Source status.Source
	ID     string
	BootID string

	last *status.CrossingStatus
}

// NewPublisher creates a Publisher.
func NewPublisher(q Pub, src status.Source, id, bootID string) *Publisher {
	return &Publisher{Queue: q, Source: src, ID: id, BootID: bootID}
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvIdle, p)
}

// Control implements Controller.
func (p *Publisher) Control(cc fx.ControlContext) error {
	msg := status.NewCrossingStatus(p.ID, p.BootID, p.Source.Snapshot())
	if msg.SameState(p.last) {
		return nil
	}
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	// not waiting: the loop must not block on the broker
	p.Queue.PubWith(StatusTopic(p.ID), data, 0, true)
	p.last = msg
	return nil
}

// Link keeps the broker connection and the retained meta record.
type Link struct {
	Queue *Queue
	Meta  Meta
}

// NewLink creates a Link. The will clears the meta topic.
func NewLink(brokerURL string, meta Meta) (*Link, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+MetaTopic(meta.ID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("crossing:" + meta.ID)
	}
	l := &Link{Queue: NewQueue(opts, prefix), Meta: meta}
	l.Queue.OnConnect = func(*Queue) { l.announce() }
	return l, nil
}

// Name implements Named.
func (l *Link) Name() string {
	return "mqtt-link"
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	l.Queue.Connect()
	<-ctx.Done()
	l.Queue.PubWith(MetaTopic(l.Meta.ID), nil, 1, true).WaitTimeout(time.Second)
	l.Queue.Close()
	return ctx.Err()
}

func (l *Link) announce() {
	data, err := json.Marshal(&l.Meta)
	if err != nil {
		glog.Errorf("encode meta: %v", err)
		return
	}
	l.Queue.PubWith(MetaTopic(l.Meta.ID), data, 1, true)
}
