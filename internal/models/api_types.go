package models

import "time"

// ScanType selects which ports a targeted port scan probes.
type ScanType string

const (
	ScanPopular ScanType = "popular"
	ScanRange   ScanType = "range"
	ScanAll     ScanType = "all"
)

// ScanTypes lists the accepted scan types in display order.
var ScanTypes = []ScanType{ScanPopular, ScanRange, ScanAll}

// PopularPorts is the engine's port list for ScanPopular.
var PopularPorts = []int{
	21, 22, 23, 25, 53, 80, 110, 135, 139, 143, 443, 445,
	993, 995, 3389, 8000, 8080, 8443, 9000, 9001, 9443,
}

// MaxPort is the highest valid TCP port.
const MaxPort = 65535

// Seconds renders d the way the engine expects timeouts and intervals.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// PortScanRequest is the body of POST /api/command/portscan.
type PortScanRequest struct {
	Host      string   `json:"host"`
	ScanType  ScanType `json:"scan_type"`
	StartPort int      `json:"start_port,omitempty"`
	EndPort   int      `json:"end_port,omitempty"`
	Timeout   float64  `json:"timeout"`
}

// PortScanResponse is either a finished scan (Ports set) or an
// acknowledgement that the scan started (Ports nil); the latter completes
// through a port_scan_result push.
type PortScanResponse struct {
	Status string    `json:"status,omitempty"`
	Host   string    `json:"host,omitempty"`
	Ports  *PortList `json:"ports,omitempty"`
}

// BannerGrabRequest is the body of POST /api/command/bannergrab.
type BannerGrabRequest struct {
	Host    string  `json:"host"`
	Port    int     `json:"port"`
	Timeout float64 `json:"timeout"`
}

// BannerGrabResponse carries the raw banner text, possibly empty.
type BannerGrabResponse struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Banner string `json:"banner"`
}

// MACLookupRequest is the body of POST /api/command/maclookup.
type MACLookupRequest struct {
	Host string `json:"host"`
}

// MACLookupResponse carries the resolved vendor.
type MACLookupResponse struct {
	Host   string `json:"host"`
	Vendor string `json:"vendor"`
}

// HostUpdateRequest is the body of POST /api/host/update.
type HostUpdateRequest struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	IsDHCP   bool   `json:"is_dhcp"`
}

// ScannerStartRequest is the body of POST /api/scanner/start.
type ScannerStartRequest struct {
	Network   string  `json:"network"`
	PortStart int     `json:"port_start"`
	PortEnd   int     `json:"port_end"`
	Timeout   float64 `json:"timeout"`
	Interval  float64 `json:"interval"`
}

// StatusResponse is the engine's generic acknowledgement.
type StatusResponse struct {
	Status  string `json:"status"`
	Network string `json:"network,omitempty"`
}

// ErrorResponse is what the engine sends with a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
