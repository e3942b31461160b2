package substation

import (
	"encoding/binary"
	"fmt"
)

// MsgType identifies the record type.
type MsgType int32

// Message types. Only MsgUpdate is exchanged by the poll.
const (
	MsgConfigure MsgType = iota
	MsgPing
	MsgUpdate
	MsgOff
)

var msgTypeNames = map[MsgType]string{
	MsgConfigure: "CONFIGURE",
	MsgPing:      "PING",
	MsgUpdate:    "UPDATE",
	MsgOff:       "OFF",
}

func (t MsgType) String() string {
	if name, ok := msgTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MSG(%d)", int32(t))
}

// Record sizes and layout.
const (
	ValueCount   = 30
	RequestSize  = 4 * 3
	ResponseSize = 4 * (3 + ValueCount)

	// DirectiveIndex is the response value carrying the maintenance
	// directive: 1 enters maintenance, -1 leaves it.
	DirectiveIndex = 27
)

// ByteOrder is the wire byte order, native to the platform running the
// controller.
var ByteOrder binary.ByteOrder = binary.NativeEndian

// UpdateRequest is sent by the crossing every poll.
type UpdateRequest struct {
	Type  MsgType
	ID    int32
	Value int32 // reserved, always 0
}

// NewUpdateRequest builds the request for a poll.
func NewUpdateRequest(id int32) *UpdateRequest {
	return &UpdateRequest{Type: MsgUpdate, ID: id}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *UpdateRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RequestSize)
	putInt32s(buf, int32(r.Type), r.ID, r.Value)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *UpdateRequest) UnmarshalBinary(data []byte) error {
	if len(data) != RequestSize {
		return &SizeError{Record: "request", Expected: RequestSize, Actual: len(data)}
	}
	r.Type = MsgType(getInt32(data, 0))
	r.ID = getInt32(data, 1)
	r.Value = getInt32(data, 2)
	return nil
}

// UpdateResponse is returned by the substation.
type UpdateResponse struct {
	Type    MsgType
	ID      int32
	Average int32
	Values  [ValueCount]int32
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *UpdateResponse) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ResponseSize)
	putInt32s(buf, int32(r.Type), r.ID, r.Average)
	putInt32s(buf[12:], r.Values[:]...)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *UpdateResponse) UnmarshalBinary(data []byte) error {
	if len(data) != ResponseSize {
		return &SizeError{Record: "response", Expected: ResponseSize, Actual: len(data)}
	}
	r.Type = MsgType(getInt32(data, 0))
	r.ID = getInt32(data, 1)
	r.Average = getInt32(data, 2)
	for n := range r.Values {
		r.Values[n] = getInt32(data, 3+n)
	}
	return nil
}

// Directive interprets Values[DirectiveIndex].
func (r *UpdateResponse) Directive() Directive {
	switch r.Values[DirectiveIndex] {
	case 1:
		return EnterMaintenance
	case -1:
		return LeaveMaintenance
	}
	return NoDirective
}

func putInt32s(buf []byte, vals ...int32) {
	for n, v := range vals {
		ByteOrder.PutUint32(buf[n*4:], uint32(v))
	}
}

func getInt32(buf []byte, index int) int32 {
	return int32(ByteOrder.Uint32(buf[index*4:]))
}
