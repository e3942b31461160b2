package substation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/net/websocket"
)

// Serial link defaults.
const (
	DefaultBaud       = 9600
	SerialReadTimeout = 50 * time.Millisecond
)

// Dial opens a Transport from URL:
//
//	serial:///dev/ttyUSB0?baud=9600
//	tcp://host:port
//	ws://host:port/path
func Dial(ctx context.Context, rawURL string) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid substation URL: %w", err)
	}
	switch u.Scheme {
	case "serial":
		return dialSerial(rawURL, u)
	case "tcp":
		if u.Host == "" {
			return nil, fmt.Errorf("substation URL %q: missing host", rawURL)
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, &TransportError{Op: "dial", Err: err}
		}
		return NewStreamTransport(conn, false), nil
	case "ws", "wss":
		if u.Host == "" {
			return nil, fmt.Errorf("substation URL %q: missing host", rawURL)
		}
		origin := "http://" + u.Host + "/"
		if u.Scheme == "wss" {
			origin = "https://" + u.Host + "/"
		}
		conf, err := websocket.NewConfig(rawURL, origin)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			conf.Dialer = &net.Dialer{Deadline: deadline}
		}
		conn, err := websocket.DialConfig(conf)
		if err != nil {
			return nil, &TransportError{Op: "dial", Err: err}
		}
		conn.PayloadType = websocket.BinaryFrame
		return NewStreamTransport(conn, false), nil
	default:
		return nil, fmt.Errorf("unknown substation URL scheme: %q", u.Scheme)
	}
}

func dialSerial(rawURL string, u *url.URL) (Transport, error) {
	device := u.Path
	if device == "" {
		device = u.Opaque
	}
	if device == "" {
		return nil, fmt.Errorf("substation URL %q: missing serial device", rawURL)
	}
	baud := DefaultBaud
	if val := u.Query().Get("baud"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("substation URL %q: invalid baud %q", rawURL, val)
		}
		baud = n
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: SerialReadTimeout,
	})
	if err != nil {
		return nil, &TransportError{Op: "open " + device, Err: err}
	}
	return NewStreamTransport(port, true), nil
}
