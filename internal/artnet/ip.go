package artnet

import (
	"fmt"
	"net"
)

// FindArtNetIP finds the first local IPv4 address inside network (CIDR).
func FindArtNetIP(network string) (net.IP, error) {
	_, cidrNet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, fmt.Errorf("invalid art-net network %q: %w", network, err)
	}
	address, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("error getting ips: %w", err)
	}

	for _, addr := range address {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil {
			continue
		}

		if cidrNet.Contains(ip) {
			return ip, nil
		}
	}

	return nil, nil
}
