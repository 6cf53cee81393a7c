// Package dispatch owns one long-lived worker per configured DMX output
// (Art-Net, serial, debug) and fans resolved universe frames out to them,
// one buffered channel per worker thread.
package dispatch

import (
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/demexconsole/console/internal/artnetpkt"
	"github.com/demexconsole/console/internal/dmxgen"
	"github.com/demexconsole/console/internal/errs"
	"github.com/demexconsole/console/internal/metrics"
	"github.com/goburrow/serial"
)

// Transport identifies which wire protocol a worker speaks.
type Transport int

const (
	TransportDebug Transport = iota
	TransportSerial
	TransportArtnet
)

func (t Transport) String() string {
	switch t {
	case TransportSerial:
		return "serial"
	case TransportArtnet:
		return "artnet"
	default:
		return "debug"
	}
}

// Config describes one output worker, flattening the transport-specific
// fields of all three transports into a single struct.
type Config struct {
	Transport Transport

	// Serial
	SerialPort     string
	SerialUniverse uint16

	// Art-Net
	ArtnetBindAddr  string
	ArtnetDestAddr  string // explicit unicast IPv4, or "" for broadcast
	ArtnetPort      int
	ArtnetBroadcast bool
}

// ConfigFromEnv builds the default output list from environment variables,
// following an env-var-with-fallback idiom consistent with the rest of this
// console's configuration surface.
func ConfigFromEnv() []Config {
	transport := os.Getenv("CONSOLE_OUTPUT")
	switch transport {
	case "serial":
		universe := 0
		if u := os.Getenv("CONSOLE_SERIAL_UNIVERSE"); u != "" {
			if v, err := strconv.Atoi(u); err == nil {
				universe = v
			}
		}
		return []Config{{
			Transport:      TransportSerial,
			SerialPort:     os.Getenv("CONSOLE_SERIAL_PORT"),
			SerialUniverse: uint16(universe),
		}}
	case "artnet":
		port := artnetpkt.DefaultPort
		if p := os.Getenv("CONSOLE_ARTNET_PORT"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				port = v
			}
		}
		dest := os.Getenv("CONSOLE_ARTNET_DEST")
		return []Config{{
			Transport:       TransportArtnet,
			ArtnetBindAddr:  os.Getenv("CONSOLE_ARTNET_BIND"),
			ArtnetDestAddr:  dest,
			ArtnetPort:      port,
			ArtnetBroadcast: dest == "",
		}}
	default:
		return []Config{{Transport: TransportDebug}}
	}
}

// frame is one resolved universe payload handed to a worker.
type frame struct {
	universe uint16
	data     [dmxgen.UniverseSize]byte
}

// Worker owns a transport connection and a buffered, latest-frame-wins
// channel feeding its send loop running on its own goroutine.
type Worker struct {
	cfg  Config
	ch   chan frame
	done chan struct{}

	udpConn *net.UDPConn
	udpAddr *net.UDPAddr
	serial  serial.Port
}

// NewWorker opens the worker's transport connection (if any) and starts its
// send loop in the background.
func NewWorker(cfg Config) (*Worker, error) {
	w := &Worker{
		cfg:  cfg,
		ch:   make(chan frame, 1),
		done: make(chan struct{}),
	}

	switch cfg.Transport {
	case TransportArtnet:
		bind := cfg.ArtnetBindAddr
		if bind == "" {
			bind = "0.0.0.0"
		}
		port := cfg.ArtnetPort
		if port <= 0 {
			port = artnetpkt.DefaultPort
		}

		dest := cfg.ArtnetDestAddr
		if dest == "" {
			dest = "255.255.255.255"
		}
		addr, err := net.ResolveUDPAddr("udp4", dest+":"+strconv.Itoa(port))
		if err != nil {
			return nil, errs.IO(err, "resolve art-net destination %s", dest)
		}
		w.udpAddr = addr

		localAddr, err := net.ResolveUDPAddr("udp4", bind+":0")
		if err != nil {
			return nil, errs.IO(err, "resolve art-net bind address %s", bind)
		}
		conn, err := net.ListenUDP("udp4", localAddr)
		if err != nil {
			return nil, errs.IO(err, "bind art-net socket on %s", bind)
		}
		w.udpConn = conn

		poll := artnetpkt.BuildPoll()
		if _, err := conn.WriteToUDP(poll, addr); err != nil {
			log.Printf("📡 art-net poll send failed: %v", err)
		}

	case TransportSerial:
		port, err := serial.Open(&serial.Config{
			Address:  cfg.SerialPort,
			BaudRate: 250000,
			DataBits: 8,
			StopBits: 2,
			Parity:   "N",
			Timeout:  time.Second,
		})
		if err != nil {
			return nil, errs.IO(err, "open serial port %s", cfg.SerialPort)
		}
		w.serial = port
	}

	go w.run()
	return w, nil
}

// Send enqueues universe/data for transmission, replacing any frame still
// waiting to be picked up — the dispatcher only ever cares about the
// latest state of a universe, never a historical sequence of them.
func (w *Worker) Send(universe uint16, data [dmxgen.UniverseSize]byte) {
	f := frame{universe: universe, data: data}
	select {
	case w.ch <- f:
	default:
		select {
		case <-w.ch:
		default:
		}
		select {
		case w.ch <- f:
		default:
		}
	}
	metrics.WorkerQueueDepth.WithLabelValues(w.cfg.Transport.String()).Set(float64(len(w.ch)))
}

// Close terminates the worker's send loop and releases its transport.
func (w *Worker) Close() error {
	close(w.ch)
	<-w.done

	if w.udpConn != nil {
		return w.udpConn.Close()
	}
	if w.serial != nil {
		return w.serial.Close()
	}
	return nil
}

func (w *Worker) run() {
	defer close(w.done)
	transport := w.cfg.Transport.String()
	for f := range w.ch {
		metrics.WorkerQueueDepth.WithLabelValues(transport).Set(0)
		switch w.cfg.Transport {
		case TransportDebug:
			log.Printf("🐛 debug output universe %d: %v", f.universe, f.data)
			metrics.PacketsSentTotal.WithLabelValues(transport).Inc()

		case TransportSerial:
			if f.universe != w.cfg.SerialUniverse {
				continue
			}
			if _, err := w.serial.Write(f.data[:]); err != nil {
				log.Printf("📟 serial write failed on %s: %v", w.cfg.SerialPort, err)
				metrics.SendErrorsTotal.WithLabelValues(transport).Inc()
				continue
			}
			metrics.PacketsSentTotal.WithLabelValues(transport).Inc()

		case TransportArtnet:
			packet := artnetpkt.BuildDMX(f.universe, f.data[:], 0)
			if _, err := w.udpConn.WriteToUDP(packet, w.udpAddr); err != nil {
				log.Printf("📡 art-net send failed for universe %d: %v", f.universe, err)
				metrics.SendErrorsTotal.WithLabelValues(transport).Inc()
				continue
			}
			metrics.PacketsSentTotal.WithLabelValues(transport).Inc()
		}
	}
}

// Dispatcher fans out resolved frames to every configured output worker.
type Dispatcher struct {
	workers []*Worker
}

// NewDispatcher opens one worker per config, closing any already-opened
// worker if a later one fails so no transport connection leaks.
func NewDispatcher(configs ...Config) (*Dispatcher, error) {
	d := &Dispatcher{}
	for _, cfg := range configs {
		w, err := NewWorker(cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.workers = append(d.workers, w)
	}
	return d, nil
}

// Dispatch sends gen's current frame for every universe in dirty to each
// worker, sending only universes that actually changed this tick.
func (d *Dispatcher) Dispatch(gen *dmxgen.Generator, dirty []uint16) {
	for _, universe := range dirty {
		data, ok := gen.Frame(universe)
		if !ok {
			continue
		}
		for _, w := range d.workers {
			w.Send(universe, data)
		}
	}
}

// Close stops every worker and releases its transport connection.
func (d *Dispatcher) Close() {
	for _, w := range d.workers {
		if err := w.Close(); err != nil {
			log.Printf("output worker close error: %v", err)
		}
	}
	d.workers = nil
}
