// Package substation implements the crossing side of the substation
// polling protocol.
package substation

// Every poll is a single exchange over a peer-to-peer byte stream
// (serial port in the field, TCP or websocket for simulation):
//
//   crossing  -> substation  UpdateRequest   12 bytes
//   substation -> crossing   UpdateResponse 132 bytes
//
// Records are fixed size, in the byte order of the target platform,
// without length prefix, checksum or versioning. Framing relies solely on
// the fixed sizes. Before every request the client discards whatever is
// still buffered. When a response timed out part way, the remainder may
// still be in flight, so the next poll skips exactly that many bytes ahead
// of its own response. The skip is tried once; if that poll times out as
// well, the client falls back to discarding.
//
// Producer: substation server
// Consumer: crossing controller
