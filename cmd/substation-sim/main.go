package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/tarm/serial"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/substation"
)

var (
	listenAddr   = ":9000"
	wsAddr       string
	serialDevice string
	baud         = substation.DefaultBaud
	maintenance  bool
	toggle       time.Duration
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "TCP address to serve, empty to disable.")
	flag.StringVar(&wsAddr, "ws", wsAddr, "Websocket address to serve.")
	flag.StringVar(&serialDevice, "serial", serialDevice, "Serial device to serve.")
	flag.IntVar(&baud, "baud", baud, "Serial baud rate.")
	flag.BoolVar(&maintenance, "maint", maintenance, "Request maintenance at start.")
	flag.DurationVar(&toggle, "toggle", toggle, "Alternate the maintenance directive at this period.")
}

func directive(on bool) substation.Directive {
	if on {
		return substation.EnterMaintenance
	}
	return substation.LeaveMaintenance
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	srv := substation.NewServer()
	srv.SetDirective(directive(maintenance))

	runner := fx.NewRunner().HandleSignals()
	if listenAddr != "" {
		ln, err := net.Listen("tcp", listenAddr)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("serving tcp %s", ln.Addr())
		runner.Go(fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error {
			return srv.Serve(ctx, ln)
		})))
	}
	if wsAddr != "" {
		runner.Go(fx.NamedRun("ws", fx.RunFunc(func(ctx context.Context) error {
			hs := &http.Server{Addr: wsAddr, Handler: srv.WebsocketHandler(ctx)}
			log.Printf("serving websocket %s", wsAddr)
			return fx.RunWithContextCloser(ctx, hs, hs.ListenAndServe)
		})))
	}
	if serialDevice != "" {
		port, err := serial.OpenPort(&serial.Config{Name: serialDevice, Baud: baud})
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("serving serial %s", serialDevice)
		runner.Go(fx.NamedRun("serial", fx.RunFunc(func(ctx context.Context) error {
			return srv.ServeConn(ctx, port)
		})))
	}
	if len(runner.Runners) == 0 {
		log.Fatalln("nothing to serve")
	}
	if toggle > 0 {
		runner.Go(fx.NamedRun("toggle", fx.RunFunc(func(ctx context.Context) error {
			ticker := time.NewTicker(toggle)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					maintenance = !maintenance
					log.Printf("directive %s", directive(maintenance))
					srv.SetDirective(directive(maintenance))
				}
			}
		})))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
