package netstatus

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestAlways(t *testing.T) {
	if status := Always(true).Status(context.Background()); !status.Connected || status.NetworkType != "wifi" {
		t.Errorf("Always(true) = %+v", status)
	}
	if status := Always(false).Status(context.Background()); status.Connected || status.NetworkType != "none" {
		t.Errorf("Always(false) = %+v", status)
	}
}

func TestProberFunc(t *testing.T) {
	called := false
	p := ProberFunc(func(context.Context) Status {
		called = true
		return Status{Connected: true, NetworkType: "4g"}
	})
	status := p.Status(context.Background())
	if !called || status.NetworkType != "4g" {
		t.Errorf("adapter did not delegate, got %+v", status)
	}
}

func TestDialProberReachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := DialProber{Address: ln.Addr().String(), Timeout: time.Second}
	if status := p.Status(context.Background()); !status.Connected {
		t.Errorf("expected connected against live listener, got %+v", status)
	}
}

func TestDialProberUnreachable(t *testing.T) {
	p := DialProber{Address: "127.0.0.1:1", Timeout: 100 * time.Millisecond}
	if status := p.Status(context.Background()); status.Connected {
		t.Errorf("expected disconnected against closed port, got %+v", status)
	}
}
