package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/roach88/orbharness/internal/codec"
)

// Exit statuses of the orbfix tool, as the fake reproduces them.
const (
	DeviceOK         = 0
	DeviceFailure    = 1 // validation error, serial error, device NACK
	DeviceUsageError = 2 // unknown command/flag, no port
)

// FakeDevice stands in for the orbfix tool and the receiver behind it.
//
// It implements the runner Invoker method set, parses argv with the same
// flag grammar as the tool, and keeps the receiver's SBAS configuration in
// memory so get reflects earlier sets. Every response starts with a
// timestamped "Connected" line, so two identical gets differ only in
// timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeDevice struct {
	mu    sync.Mutex
	port  string
	state []byte
	calls [][]string
	now   func() time.Time
}

// NewFakeDevice returns a device reachable on port, starting from the
// all-zero configuration (auto/test/enroute/auto). An empty port accepts
// any --port value.
func NewFakeDevice(port string) *FakeDevice {
	return &FakeDevice{
		port:  port,
		state: make([]byte, codec.CommandWidth),
		now:   time.Now,
	}
}

// WithClock replaces the clock used for the Connected timestamp.
func (d *FakeDevice) WithClock(now func() time.Time) *FakeDevice {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
	return d
}

// Calls returns a copy of every argv received, in order.
func (d *FakeDevice) Calls() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// State returns the receiver's current configuration bytes.
func (d *FakeDevice) State() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.state...)
}

// Invoke runs one tool invocation.
func (d *FakeDevice) Invoke(ctx context.Context, args []string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return -1, nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, append([]string(nil), args...))

	var out bytes.Buffer
	status := d.handle(&out, args)
	return status, out.Bytes(), nil
}

type sbasFlags struct {
	satellite, sisMode, navMode, do229, payload, port, sysid string
}

func (d *FakeDevice) handle(w io.Writer, args []string) int {
	if len(args) < 3 || args[0] != codec.ToolGroup || args[1] != codec.ToolCommand {
		fmt.Fprintf(w, "Error: No such command %q\n", strings.Join(args, " "))
		return DeviceUsageError
	}
	verb := args[2]
	if verb != string(codec.VerbGet) && verb != string(codec.VerbSet) {
		fmt.Fprintf(w, "Error: No such command %q\n", verb)
		return DeviceUsageError
	}

	var f sbasFlags
	fs := pflag.NewFlagSet(codec.ToolCommand+" "+verb, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.port, "port", "", "Explicit serial port path")
	fs.StringVar(&f.sysid, "sysid", "0x6A", "System/Subsys ID (1 byte)")
	if verb == string(codec.VerbSet) {
		fs.StringVarP(&f.satellite, "satellite", "s", "", "Satellite")
		fs.StringVar(&f.sisMode, "sis-mode", "", "SIS Mode")
		fs.StringVarP(&f.navMode, "nav-mode", "n", "", "Nav Mode")
		fs.StringVarP(&f.do229, "do229", "d", "", "DO-229 Version")
		fs.StringVar(&f.payload, "payload", "", "Raw hex payload")
	}
	if err := fs.Parse(args[3:]); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return DeviceUsageError
	}

	if f.port == "" {
		fmt.Fprintln(w, "No valid port. Use --port, --auto, or set a saved port.")
		return DeviceUsageError
	}
	if d.port != "" && f.port != d.port {
		fmt.Fprintf(w, "Serial error: could not open port %s\n", f.port)
		return DeviceFailure
	}

	if verb == string(codec.VerbGet) {
		d.connected(w, f.port)
		d.report(w)
		return DeviceOK
	}
	return d.set(w, f)
}

func (d *FakeDevice) set(w io.Writer, f sbasFlags) int {
	if f.payload != "" {
		b, err := codec.ParsePayload(f.payload)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return DeviceFailure
		}
		if len(b) != codec.CommandWidth {
			fmt.Fprintf(w, "Warning: Payload is %d bytes (expected %d)\n", len(b), codec.CommandWidth)
		}
		d.connected(w, f.port)
		fmt.Fprintf(w, "Sent payload: % X\n", b)
		cfg, err := codec.DecodeConfiguration(b)
		if err != nil {
			fmt.Fprintf(w, "NACK: %v\n", err)
			return DeviceFailure
		}
		return d.apply(w, cfg)
	}

	if f.satellite == "" || f.sisMode == "" || f.navMode == "" || f.do229 == "" {
		fmt.Fprintln(w, "Error: All parameters required: --satellite, --sis-mode, --nav-mode, --do229")
		return DeviceFailure
	}
	cfg, err := codec.Validate(codec.Input{
		Verb:         codec.VerbSet,
		Satellite:    f.satellite,
		SisMode:      f.sisMode,
		NavMode:      f.navMode,
		Do229Version: f.do229,
	})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return DeviceFailure
	}
	d.connected(w, f.port)
	return d.apply(w, *cfg.Config)
}

func (d *FakeDevice) apply(w io.Writer, cfg codec.Configuration) int {
	d.state = cfg.Encode()
	fmt.Fprintf(w, "ACK: %s\n", cfg)
	return DeviceOK
}

func (d *FakeDevice) connected(w io.Writer, port string) {
	fmt.Fprintf(w, "[%s] Connected to %s @ 115200\n", d.now().Format("15:04:05.000"), port)
}

func (d *FakeDevice) report(w io.Writer) {
	cfg, err := codec.DecodeConfiguration(d.state)
	if err != nil {
		fmt.Fprintf(w, "Received: % X\n", d.state)
		return
	}
	fmt.Fprintln(w, "SBAS Corrections:")
	fmt.Fprintf(w, "  Satellite: %s\n", cfg.Satellite)
	fmt.Fprintf(w, "  SIS Mode: %s\n", cfg.SisMode)
	fmt.Fprintf(w, "  Nav Mode: %s\n", cfg.NavMode)
	fmt.Fprintf(w, "  DO-229 Version: %s\n", cfg.Do229Version)
}
