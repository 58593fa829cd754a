package dispatch

import "errors"

var (
	ErrNoSelection       = errors.New("no host selected")
	ErrPortScanPending   = errors.New("port scan already pending for host")
	ErrInvalidScanType   = errors.New("invalid scan type")
	ErrInvalidPortRange  = errors.New("invalid port range")
	ErrInvalidPort       = errors.New("invalid port")
	ErrInvalidNetwork    = errors.New("invalid network")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
	ErrInvalidInterval   = errors.New("interval must be positive")
	ErrUnknownKind       = errors.New("unknown command kind")
	ErrUnexpectedPayload = errors.New("unexpected command payload")
)
