package substation

import (
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/crossing/pkg/framework"
)

// MaintenanceSetter receives maintenance directives.
type MaintenanceSetter interface {
	SetMaintenance(on bool)
}

// PollStats counts polls by outcome.
type PollStats struct {
	Polls    uint64
	Failures uint64
	Last     Outcome
	LastTick uint64
}

// Poller polls the substation from the loop and applies directives.
type Poller struct {
	Client *Client
	Target MaintenanceSetter
	ID     int32
	// Every is the poll period in ticks, 0 or 1 polls every tick.
	Every uint64

	lock  sync.RWMutex
	stats PollStats
}

// NewPoller creates a Poller polling every tick.
func NewPoller(client *Client, target MaintenanceSetter, id int32) *Poller {
	return &Poller{Client: client, Target: target, ID: id, Every: 1}
}

// AddToLoop implements LoopAdder.
func (p *Poller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, p)
}

// Stats returns the poll counters and the last outcome.
func (p *Poller) Stats() PollStats {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.stats
}

// Control implements Controller.
func (p *Poller) Control(cc fx.ControlContext) error {
	if every := p.Every; every > 1 && (cc.Tick()-1)%every != 0 {
		return nil
	}
	out := p.Client.Poll(cc.Context(), p.ID)
	if out.Kind == Applied {
		switch out.Directive {
		case EnterMaintenance:
			p.Target.SetMaintenance(true)
		case LeaveMaintenance:
			p.Target.SetMaintenance(false)
		}
	} else {
		glog.Warningf("tick %d: substation poll %s", cc.Tick(), out)
	}

	p.lock.Lock()
	p.stats.Polls++
	if out.Kind != Applied {
		p.stats.Failures++
	}
	p.stats.Last, p.stats.LastTick = out, cc.Tick()
	p.lock.Unlock()
	return nil
}
