package util

import (
	"fmt"
	"net"
)

// ParseSubnet parses a subnet in CIDR notation and returns the network
// address and mask length. Accepts both IPv4 and IPv6.
func ParseSubnet(cidr string) (net.IP, int, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	ones, _ := ipNet.Mask.Size()
	return ipNet.IP, ones, nil
}

// GatewayInSubnet reports whether gateway is a valid host address inside
// the given subnet. An empty gateway is acceptable (remote will assign one).
func GatewayInSubnet(gateway, cidr string) bool {
	if gateway == "" {
		return true
	}
	gw := net.ParseIP(gateway)
	if gw == nil {
		return false
	}
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return ipNet.Contains(gw)
}

// IsIPv6Subnet reports whether the CIDR describes an IPv6 network.
func IsIPv6Subnet(cidr string) bool {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return ip.To4() == nil
}
