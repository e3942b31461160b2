package status

import (
	"github.com/golang/protobuf/proto"
)

// CrossingStatus is the published status record.
type CrossingStatus struct {
	ID                  string  `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	BootID              string  `protobuf:"bytes,2,opt,name=boot_id,proto3" json:"boot_id,omitempty"`
	Tick                uint64  `protobuf:"varint,3,opt,name=tick,proto3" json:"tick,omitempty"`
	State               string  `protobuf:"bytes,4,opt,name=state,proto3" json:"state,omitempty"`
	Light               string  `protobuf:"bytes,5,opt,name=light,proto3" json:"light,omitempty"`
	GateDuty            float64 `protobuf:"fixed64,6,opt,name=gate_duty,proto3" json:"gate_duty,omitempty"`
	GateOpen            bool    `protobuf:"varint,7,opt,name=gate_open,proto3" json:"gate_open,omitempty"`
	Walk                bool    `protobuf:"varint,8,opt,name=walk,proto3" json:"walk,omitempty"`
	TrainArriving       bool    `protobuf:"varint,9,opt,name=train_arriving,proto3" json:"train_arriving,omitempty"`
	MaintenanceActive   bool    `protobuf:"varint,10,opt,name=maintenance_active,proto3" json:"maintenance_active,omitempty"`
	PedestrianRequested bool    `protobuf:"varint,11,opt,name=pedestrian_requested,proto3" json:"pedestrian_requested,omitempty"`
	Clamps              uint64  `protobuf:"varint,12,opt,name=clamps,proto3" json:"clamps,omitempty"`
	Polls               uint64  `protobuf:"varint,13,opt,name=polls,proto3" json:"polls,omitempty"`
	PollFailures        uint64  `protobuf:"varint,14,opt,name=poll_failures,proto3" json:"poll_failures,omitempty"`
	LastPoll            string  `protobuf:"bytes,15,opt,name=last_poll,proto3" json:"last_poll,omitempty"`
}

// NewCrossingStatus builds the record from a snapshot.
func NewCrossingStatus(id, bootID string, s Snapshot) *CrossingStatus {
	m := &CrossingStatus{
		ID:                  id,
		BootID:              bootID,
		Tick:                s.Tick,
		State:               s.State.String(),
		Light:               s.Light.String(),
		GateDuty:            s.GateDuty,
		GateOpen:            s.GateOpen(),
		Walk:                s.Walk,
		TrainArriving:       s.TrainArriving,
		MaintenanceActive:   s.MaintenanceActive,
		PedestrianRequested: s.PedestrianRequested,
		Clamps:              s.Clamps,
	}
	if s.Polling {
		m.Polls, m.PollFailures = s.Poll.Polls, s.Poll.Failures
		if s.Poll.Polls > 0 {
			m.LastPoll = s.Poll.Last.String()
		}
	}
	return m
}

// DecodeCrossingStatus parses a published record.
func DecodeCrossingStatus(data []byte) (*CrossingStatus, error) {
	m := &CrossingStatus{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes the record.
func (m *CrossingStatus) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Line renders the record like the console line.
func (m *CrossingStatus) Line() string {
	gate, train, ped := "CLOSED", "CLEAR", "STOP"
	if m.GateOpen {
		gate = "OPEN"
	}
	if m.TrainArriving {
		train = "ARRIVING"
	}
	if m.Walk {
		ped = "WALK"
	}
	return FormatLine(m.State, gate, train, ped)
}

// SameState reports whether both records differ only in counters that
// advance every tick.
func (m *CrossingStatus) SameState(o *CrossingStatus) bool {
	if o == nil {
		return false
	}
	a, b := *m, *o
	a.Tick, b.Tick = 0, 0
	a.Polls, b.Polls = 0, 0
	return a == b
}

// ProtoMessage implements proto.Message.
func (m *CrossingStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CrossingStatus) Reset() { *m = CrossingStatus{} }

// String implements proto.Message.
func (m *CrossingStatus) String() string { return proto.CompactTextString(m) }
