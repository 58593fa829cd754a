package fakeengine

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/Rival420/Spynet2/internal/models"
)

var (
	ErrInvalidNetwork = errors.New("invalid network")
	ErrHostNotFound   = errors.New("host not found")
)

// vendors maps an OUI to the name the lookup returns.
var vendors = map[string]string{
	"b8:27:eb": "Raspberry Pi Foundation",
	"00:1a:11": "Google, Inc.",
	"f0:9f:c2": "Ubiquiti Inc",
	"3c:22:fb": "Apple, Inc.",
	"00:50:56": "VMware, Inc.",
}

var ouis = []string{"b8:27:eb", "00:1a:11", "f0:9f:c2", "3c:22:fb", "00:50:56", "02:42:ac"}

// services is what a simulated host may be listening on, with the banner
// a grab returns.
var services = map[int]string{
	21:   "220 (vsFTPd 3.0.5)",
	22:   "SSH-2.0-OpenSSH_9.6p1 Ubuntu-3ubuntu13",
	25:   "220 mail.lan ESMTP Postfix",
	53:   "",
	80:   "HTTP/1.1 200 OK\r\nServer: nginx/1.24.0",
	443:  "",
	445:  "",
	3389: "",
	8080: "HTTP/1.1 401 Unauthorized\r\nServer: Jetty(9.4.z)",
}

var serviceSets = [][]int{{22}, {22, 80}, {53, 80, 443}, {445, 3389}, {21, 22, 25}, {8080}}

type host struct {
	entry     models.SnapshotEntry
	listening []int
}

func (h *host) openAmong(ports []int) []int {
	open := []int{}

	for _, p := range h.listening {
		if slices.Contains(ports, p) {
			open = append(open, p)
		}
	}

	return open
}

// generateHosts builds n deterministic hosts starting after the network
// address of cidr.
func generateHosts(cidr string, n int, seen float64) (map[string]*host, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil || !prefix.Addr().Is4() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, cidr)
	}

	hosts := make(map[string]*host, n)
	addr := prefix.Masked().Addr().Next()

	for i := 0; i < n && addr.IsValid() && prefix.Contains(addr); i++ {
		oct := addr.As4()
		status := string(models.StatusOnline)

		if i%5 == 4 {
			status = string(models.StatusOffline)
		}

		h := &host{
			entry: models.SnapshotEntry{
				Status:   status,
				MAC:      fmt.Sprintf("%s:%02x:%02x:%02x", ouis[i%len(ouis)], oct[1], oct[2], oct[3]),
				Hostname: "",
				IsDHCP:   i%3 == 2,
				Ports:    models.PortList{},
				LastSeen: seen,
			},
			listening: serviceSets[i%len(serviceSets)],
		}

		hosts[addr.String()] = h
		addr = addr.Next()
	}

	return hosts, nil
}

func lookupVendor(mac string) string {
	if len(mac) < 8 {
		return models.UnknownVendor
	}

	if v, ok := vendors[strings.ToLower(mac[:8])]; ok {
		return v
	}

	return models.UnknownVendor
}

func portsFor(req models.PortScanRequest) ([]int, error) {
	switch req.ScanType {
	case models.ScanRange:
		if req.StartPort < 1 || req.EndPort > models.MaxPort || req.StartPort > req.EndPort {
			return nil, errors.New("start_port and end_port required for range scan")
		}

		ports := make([]int, 0, req.EndPort-req.StartPort+1)
		for p := req.StartPort; p <= req.EndPort; p++ {
			ports = append(ports, p)
		}

		return ports, nil
	case models.ScanAll:
		ports := make([]int, 0, models.MaxPort)
		for p := 1; p <= models.MaxPort; p++ {
			ports = append(ports, p)
		}

		return ports, nil
	default:
		return models.PopularPorts, nil
	}
}
