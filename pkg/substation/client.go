package substation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Directive is the instruction carried by a response.
type Directive int

// Directives.
const (
	NoDirective Directive = iota
	EnterMaintenance
	LeaveMaintenance
)

func (d Directive) String() string {
	switch d {
	case EnterMaintenance:
		return "ENTER_MAINTENANCE"
	case LeaveMaintenance:
		return "LEAVE_MAINTENANCE"
	}
	return "NONE"
}

// OutcomeKind classifies a poll.
type OutcomeKind int

// Outcome kinds.
const (
	Applied OutcomeKind = iota
	Malformed
	Timeout
	TransportFailed
)

var outcomeKindNames = []string{"APPLIED", "MALFORMED", "TIMEOUT", "TRANSPORT_FAILED"}

func (k OutcomeKind) String() string {
	if k >= 0 && int(k) < len(outcomeKindNames) {
		return outcomeKindNames[k]
	}
	return "UNKNOWN"
}

// Outcome is the result of one poll.
type Outcome struct {
	Kind OutcomeKind
	// Directive is valid when Kind is Applied.
	Directive Directive
	Response  *UpdateResponse
	Err       error
}

func (o Outcome) String() string {
	if o.Kind == Applied {
		return o.Kind.String() + " " + o.Directive.String()
	}
	return fmt.Sprintf("%s: %v", o.Kind, o.Err)
}

// DefaultTimeout bounds a poll when Client.Timeout is not set.
const DefaultTimeout = 250 * time.Millisecond

// Client polls the substation over a Transport.
type Client struct {
	Transport Transport
	Timeout   time.Duration

	lock sync.Mutex
	last *UpdateResponse
	// owed is the tail of a partially received response still expected
	// from the substation.
	owed int
}

// NewClient creates a Client.
func NewClient(t Transport) *Client {
	return &Client{Transport: t, Timeout: DefaultTimeout}
}

// Poll sends an update request with the local id and waits for the
// response, bounded by Timeout and ctx.
func (c *Client) Poll(ctx context.Context, id int32) Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	skip := c.owed
	c.owed = 0
	if n := c.Transport.Discard(); n > 0 {
		glog.V(1).Infof("substation: discarded %d stale bytes", n)
		skip = max(skip-n, 0)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, _ := NewUpdateRequest(id).MarshalBinary()
	if err := c.Transport.Send(ctx, req); err != nil {
		return c.fail(TransportFailed, err)
	}
	if skip > 0 {
		if _, err := c.Transport.RecvExact(ctx, skip); err != nil {
			return c.recvFailed(err)
		}
		glog.V(1).Infof("substation: skipped %d late bytes", skip)
	}
	data, err := c.Transport.RecvExact(ctx, ResponseSize)
	if err != nil {
		// the tail of a started frame is skipped by the next poll, only
		// when this poll didn't skip itself
		if skip == 0 && len(data) > 0 && errors.Is(err, ErrTimeout) {
			c.owed = ResponseSize - len(data)
		}
		return c.recvFailed(err)
	}

	resp := &UpdateResponse{}
	if err = resp.UnmarshalBinary(data); err != nil {
		return c.fail(Malformed, err)
	}
	if resp.Type != MsgUpdate {
		return c.fail(Malformed, fmt.Errorf("%w: type %s", ErrMalformed, resp.Type))
	}
	c.last = resp
	out := Outcome{Kind: Applied, Directive: resp.Directive(), Response: resp}
	glog.V(2).Infof("substation: id=%d avg=%d %s", resp.ID, resp.Average, out.Directive)
	return out
}

// LastResponse returns the last applied response, nil if none.
func (c *Client) LastResponse() *UpdateResponse {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.last == nil {
		return nil
	}
	resp := *c.last
	return &resp
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.Transport.Close()
}

func (c *Client) fail(kind OutcomeKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

func (c *Client) recvFailed(err error) Outcome {
	switch {
	case errors.Is(err, ErrTimeout):
		return c.fail(Timeout, err)
	case errors.Is(err, ErrMalformed):
		return c.fail(Malformed, err)
	}
	return c.fail(TransportFailed, err)
}
