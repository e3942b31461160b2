package substation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Transport moves raw bytes to and from the substation.
type Transport interface {
	// Send writes all of p.
	Send(ctx context.Context, p []byte) error
	// RecvExact reads exactly n bytes, accumulating partial reads, until
	// ctx is done. On failure the bytes received so far are returned with
	// the error.
	RecvExact(ctx context.Context, n int) ([]byte, error)
	// Discard drops buffered input and returns the number of bytes dropped.
	Discard() int
	// Close releases the link.
	Close() error
}

// StreamTransport implements Transport over a byte stream.
// A background goroutine keeps reading so RecvExact can honor deadlines
// on streams that don't support them. RecvExact and Discard must not be
// called concurrently.
type StreamTransport struct {
	Conn io.ReadWriteCloser
	// ReadTimeout is set when Conn.Read returns periodically without data,
	// e.g. a serial port opened with a read timeout.
	ReadTimeout bool

	chunkCh   chan []byte
	done      chan struct{}
	pending   []byte
	err       error
	closeOnce sync.Once
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

type flusher interface {
	Flush() error
}

// NewStreamTransport creates a StreamTransport and starts reading conn.
func NewStreamTransport(conn io.ReadWriteCloser, readTimeout bool) *StreamTransport {
	t := &StreamTransport{
		Conn:        conn,
		ReadTimeout: readTimeout,
		chunkCh:     make(chan []byte, 16),
		done:        make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// Send implements Transport.
func (t *StreamTransport) Send(ctx context.Context, p []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if d, ok := t.Conn.(writeDeadliner); ok {
			d.SetWriteDeadline(deadline)
		}
	}
	if _, err := t.Conn.Write(p); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// RecvExact implements Transport.
func (t *StreamTransport) RecvExact(ctx context.Context, n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for {
		if len(t.pending) > 0 {
			size := min(n-len(buf), len(t.pending))
			buf = append(buf, t.pending[:size]...)
			t.pending = t.pending[size:]
		}
		if len(buf) == n {
			return buf, nil
		}
		select {
		case chunk, ok := <-t.chunkCh:
			if !ok {
				return buf, t.streamErr(len(buf))
			}
			t.pending = chunk
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return buf, fmt.Errorf("%w: %d of %d bytes", ErrTimeout, len(buf), n)
			}
			return buf, ctx.Err()
		}
	}
}

// Discard implements Transport.
func (t *StreamTransport) Discard() int {
	size := len(t.pending)
	t.pending = nil
	if f, ok := t.Conn.(flusher); ok {
		f.Flush()
	}
	for {
		select {
		case chunk, ok := <-t.chunkCh:
			if !ok {
				return size
			}
			size += len(chunk)
		default:
			return size
		}
	}
}

// Close implements Transport.
func (t *StreamTransport) Close() (err error) {
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.Conn.Close()
	})
	return
}

func (t *StreamTransport) readLoop() {
	defer close(t.chunkCh)
	buf := make([]byte, ResponseSize)
	for {
		n, err := t.Conn.Read(buf)
		if n > 0 {
			select {
			case t.chunkCh <- append([]byte(nil), buf[:n]...):
			case <-t.done:
				return
			}
		}
		select {
		case <-t.done:
			return
		default:
		}
		if err == nil {
			continue
		}
		// serial ports in timeout mode report an idle line as (0, EOF)
		if t.ReadTimeout && (n == 0 && err == io.EOF || os.IsTimeout(err)) {
			continue
		}
		t.err = err
		return
	}
}

// streamErr is valid only after chunkCh is closed.
func (t *StreamTransport) streamErr(received int) error {
	switch t.err {
	case nil:
		return &TransportError{Op: "recv", Err: ErrClosed}
	case io.EOF, io.ErrUnexpectedEOF:
		if received > 0 {
			return fmt.Errorf("%w: %d bytes", ErrTruncated, received)
		}
	}
	return &TransportError{Op: "recv", Err: t.err}
}
