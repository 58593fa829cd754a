package models

import "encoding/json"

// Push event names.
const (
	EventScanUpdate     = "scan_update"
	EventPortScanResult = "port_scan_result"
)

// PushFrame is one message on the push channel.
type PushFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewPushFrame encodes data under event.
func NewPushFrame(event string, data any) (PushFrame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return PushFrame{}, err
	}

	return PushFrame{Event: event, Data: raw}, nil
}
