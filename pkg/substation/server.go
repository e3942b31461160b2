package substation

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/crossing/pkg/framework"
)

// Server simulates a substation answering update requests from a table
// of values.
type Server struct {
	lock   sync.Mutex
	values [ValueCount]int32
}

// NewServer creates a Server with all values zero.
func NewServer() *Server {
	return &Server{}
}

// SetValue sets one response value.
func (s *Server) SetValue(index int, val int32) error {
	if index < 0 || index >= ValueCount {
		return fmt.Errorf("value index %d out of range [0, %d)", index, ValueCount)
	}
	s.lock.Lock()
	s.values[index] = val
	s.lock.Unlock()
	return nil
}

// SetDirective sets the directive value.
func (s *Server) SetDirective(d Directive) {
	var val int32
	switch d {
	case EnterMaintenance:
		val = 1
	case LeaveMaintenance:
		val = -1
	}
	s.SetValue(DirectiveIndex, val)
}

// Values returns the current values table.
func (s *Server) Values() [ValueCount]int32 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.values
}

// Respond builds the response to a request.
func (s *Server) Respond(req *UpdateRequest) *UpdateResponse {
	resp := &UpdateResponse{Type: MsgUpdate, ID: req.ID, Values: s.Values()}
	var sum int64
	for _, v := range resp.Values {
		sum += int64(v)
	}
	resp.Average = int32(sum / ValueCount)
	return resp
}

// ServeConn answers requests on conn until it's closed or ctx is done.
func (s *Server) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	return fx.RunWithContextCloser(ctx, conn, func() error {
		buf := make([]byte, RequestSize)
		for {
			if _, err := io.ReadFull(conn, buf); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			var req UpdateRequest
			req.UnmarshalBinary(buf)
			if req.Type != MsgUpdate {
				glog.Warningf("substation: ignore %s from %d", req.Type, req.ID)
				continue
			}
			glog.V(2).Infof("substation: update from %d", req.ID)
			data, _ := s.Respond(&req).MarshalBinary()
			if _, err := conn.Write(data); err != nil {
				return err
			}
		}
	})
}

// Serve accepts connections from ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("substation: connection from %s", conn.RemoteAddr())
			go func() {
				if err := s.ServeConn(ctx, conn); err != nil && err != context.Canceled {
					glog.Warningf("substation: %s: %v", conn.RemoteAddr(), err)
				}
			}()
		}
	})
}

// WebsocketHandler serves the protocol over websocket binary frames.
func (s *Server) WebsocketHandler(ctx context.Context) websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		if err := s.ServeConn(ctx, conn); err != nil && err != context.Canceled {
			glog.Warningf("substation: websocket: %v", err)
		}
	}
}
