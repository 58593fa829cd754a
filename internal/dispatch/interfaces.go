package dispatch

//go:generate mockgen -destination=mock_engine.go -package=dispatch github.com/Rival420/Spynet2/internal/dispatch Engine

import (
	"context"

	"github.com/Rival420/Spynet2/internal/models"
)

// Engine is the scanning engine's request/response surface.
type Engine interface {
	PortScan(ctx context.Context, req models.PortScanRequest) (models.PortScanResponse, error)
	BannerGrab(ctx context.Context, req models.BannerGrabRequest) (models.BannerGrabResponse, error)
	MACLookup(ctx context.Context, req models.MACLookupRequest) (models.MACLookupResponse, error)
	UpdateHost(ctx context.Context, req models.HostUpdateRequest) (models.StatusResponse, error)
	StartScanner(ctx context.Context, req models.ScannerStartRequest) (models.StatusResponse, error)
	PauseScanner(ctx context.Context) (models.StatusResponse, error)
	ResumeScanner(ctx context.Context) (models.StatusResponse, error)
	StopScanner(ctx context.Context) (models.StatusResponse, error)
	// Snapshot pulls the engine's current host map.
	Snapshot(ctx context.Context) (models.Snapshot, error)
}
