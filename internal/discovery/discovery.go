// Package discovery advertises the aircanvas server on the local network
// over mDNS so tablets and phones can find the canvas page.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/ayusman/aircanvas/internal/logging"
)

// ServiceType is the DNS-SD service type announced by aircanvas.
const ServiceType = "_aircanvas._tcp"

// Advertiser keeps an mDNS responder running until Shutdown.
type Advertiser struct {
	server *mdns.Server
	port   int
}

// Advertise announces instance on port. An empty instance uses the hostname.
func Advertise(instance string, port int, version string) (*Advertiser, error) {
	if port <= 0 {
		return nil, fmt.Errorf("discovery: invalid port %d", port)
	}
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, TXTRecords(version))
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}

	logging.WithComponent("discovery").Info("advertising on mDNS", "instance", instance, "service", ServiceType, "port", port)
	return &Advertiser{server: server, port: port}, nil
}

// Shutdown stops answering mDNS queries.
func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown()
}

// TXTRecords returns the TXT entries attached to the announcement.
func TXTRecords(version string) []string {
	txt := []string{"app=aircanvas", "path=/"}
	if version != "" {
		txt = append(txt, "version="+version)
	}
	return txt
}

// Peer is one discovered aircanvas server.
type Peer struct {
	Name string
	Addr string
}

// Browse looks for other aircanvas servers until ctx is done or timeout elapses.
func Browse(ctx context.Context, timeout time.Duration) ([]Peer, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	done := make(chan error, 1)
	go func() {
		done <- mdns.Query(params)
		close(entries)
	}()

	var peers []Peer
	for {
		select {
		case <-ctx.Done():
			return peers, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				return peers, <-done
			}
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				Addr: net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)),
			})
		}
	}
}

// PortFromAddr extracts the TCP port from a listen address like ":8080".
func PortFromAddr(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, errors.New("port out of range")
	}
	return port, nil
}
