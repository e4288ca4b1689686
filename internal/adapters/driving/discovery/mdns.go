// Package discovery advertises a running server on the local network so
// editors can find it without configuration.
package discovery

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type under which servers are advertised.
const ServiceType = "_glaximini._tcp"

// Advertisement is a running mDNS responder.
type Advertisement struct {
	server  *mdns.Server
	service *mdns.MDNSService
}

// Service builds the mDNS record set for a server listening on listen
// (host:port or :port). info ends up in the TXT record.
func Service(instance, listen string, info ...string) (*mdns.MDNSService, error) {
	hostPart, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return nil, fmt.Errorf("parsing listen address %q: %w", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("listen address %q has no fixed port", listen)
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("getting hostname: %w", err)
	}
	if instance == "" {
		instance = host
	}

	ips := localIPs()
	if ip := net.ParseIP(hostPart); ip != nil && !ip.IsUnspecified() {
		ips = []net.IP{ip}
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, ips, info)
	if err != nil {
		return nil, fmt.Errorf("creating mDNS service: %w", err)
	}
	return service, nil
}

// Advertise starts answering mDNS queries for the server.
func Advertise(instance, listen string, info ...string) (*Advertisement, error) {
	service, err := Service(instance, listen, info...)
	if err != nil {
		return nil, err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("starting mDNS server: %w", err)
	}

	return &Advertisement{server: server, service: service}, nil
}

// Port returns the advertised port.
func (a *Advertisement) Port() int {
	return a.service.Port
}

// Shutdown stops the responder.
func (a *Advertisement) Shutdown() error {
	return a.server.Shutdown()
}

// localIPs lists the addresses of the interfaces that are up, loopback last.
// Passing them explicitly spares mdns a DNS lookup of the hostname.
func localIPs() []net.IP {
	var ips []net.IP
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return append(ips, net.IPv4(127, 0, 0, 1))
}
