// Package netstatus answers the "are we online" capability query the
// dispatcher makes before spending any retry budget.
package netstatus

import (
	"context"
	"net"
	"time"
)

// Status reports current connectivity and the transport type, mirroring the
// platform network-status primitive.
type Status struct {
	Connected   bool
	NetworkType string
}

// Prober queries the current network status.
type Prober interface {
	Status(ctx context.Context) Status
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) Status

func (f ProberFunc) Status(ctx context.Context) Status { return f(ctx) }

// InterfaceProber reports connected when any non-loopback interface is up
// with an address assigned. It never touches the network.
type InterfaceProber struct{}

func (InterfaceProber) Status(_ context.Context) Status {
	ifaces, err := net.Interfaces()
	if err != nil {
		return Status{Connected: false, NetworkType: "unknown"}
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return Status{Connected: true, NetworkType: iface.Name}
	}
	return Status{Connected: false, NetworkType: "none"}
}

// DialProber confirms reachability with a short TCP dial to a fixed
// host:port. More accurate than InterfaceProber but costs a round trip.
type DialProber struct {
	Address string
	Timeout time.Duration
}

func (p DialProber) Status(ctx context.Context) Status {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return Status{Connected: false, NetworkType: "none"}
	}
	_ = conn.Close()
	return Status{Connected: true, NetworkType: "tcp"}
}

// Always returns a fixed status. Useful for tests and offline tooling.
func Always(connected bool) Prober {
	networkType := "wifi"
	if !connected {
		networkType = "none"
	}
	return ProberFunc(func(context.Context) Status {
		return Status{Connected: connected, NetworkType: networkType}
	})
}
