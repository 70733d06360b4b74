package util

import "testing"

func TestParseSubnet(t *testing.T) {
	tests := []struct {
		cidr     string
		wantMask int
		wantErr  bool
	}{
		{"192.168.1.0/24", 24, false},
		{"10.0.0.0/8", 8, false},
		{"2001:db8::/64", 64, false},
		{"not-a-subnet", 0, true},
		{"192.168.1.0", 0, true},
	}

	for _, tt := range tests {
		_, mask, err := ParseSubnet(tt.cidr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSubnet(%q) error = %v, wantErr %v", tt.cidr, err, tt.wantErr)
			continue
		}
		if err == nil && mask != tt.wantMask {
			t.Errorf("ParseSubnet(%q) mask = %d, want %d", tt.cidr, mask, tt.wantMask)
		}
	}
}

func TestGatewayInSubnet(t *testing.T) {
	tests := []struct {
		gateway string
		cidr    string
		want    bool
	}{
		{"192.168.1.1", "192.168.1.0/24", true},
		{"192.168.2.1", "192.168.1.0/24", false},
		{"", "192.168.1.0/24", true},
		{"bogus", "192.168.1.0/24", false},
	}

	for _, tt := range tests {
		if got := GatewayInSubnet(tt.gateway, tt.cidr); got != tt.want {
			t.Errorf("GatewayInSubnet(%q, %q) = %v, want %v", tt.gateway, tt.cidr, got, tt.want)
		}
	}
}

func TestIsIPv6Subnet(t *testing.T) {
	if IsIPv6Subnet("192.168.1.0/24") {
		t.Error("IPv4 subnet reported as IPv6")
	}
	if !IsIPv6Subnet("2001:db8::/64") {
		t.Error("IPv6 subnet not recognized")
	}
}
