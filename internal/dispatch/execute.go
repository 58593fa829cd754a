package dispatch

import (
	"context"
	"fmt"

	"github.com/Rival420/Spynet2/internal/models"
)

// Result is the outcome of one Execute call. Only the fields that belong
// to the command's kind are set.
type Result struct {
	Command Command
	Err     error

	// Port scan. Acknowledged means the engine accepted the scan and will
	// report the ports through a push event instead.
	Ports        []int
	Acknowledged bool

	Banner string
	Vendor string
	Status string
}

// Execute performs cmd against eng and folds the response into a Result.
// It never panics on a malformed command; the problem comes back as Err.
func Execute(ctx context.Context, eng Engine, cmd Command) Result {
	res := Result{Command: cmd}

	switch cmd.Kind {
	case KindPortScan:
		req, ok := cmd.Payload.(models.PortScanRequest)
		if !ok {
			return res.fail(payloadErr(cmd))
		}

		resp, err := eng.PortScan(ctx, req)
		if err != nil {
			return res.fail(err)
		}

		if resp.Ports == nil {
			res.Acknowledged = true
			res.Status = resp.Status

			return res
		}

		res.Ports = append([]int{}, *resp.Ports...)

	case KindBannerGrab:
		req, ok := cmd.Payload.(models.BannerGrabRequest)
		if !ok {
			return res.fail(payloadErr(cmd))
		}

		resp, err := eng.BannerGrab(ctx, req)
		if err != nil {
			return res.fail(err)
		}

		res.Banner = resp.Banner

	case KindMACLookup:
		req, ok := cmd.Payload.(models.MACLookupRequest)
		if !ok {
			return res.fail(payloadErr(cmd))
		}

		resp, err := eng.MACLookup(ctx, req)
		if err != nil {
			return res.fail(err)
		}

		res.Vendor = resp.Vendor

	case KindHostUpdate:
		req, ok := cmd.Payload.(models.HostUpdateRequest)
		if !ok {
			return res.fail(payloadErr(cmd))
		}

		return res.status(eng.UpdateHost(ctx, req))

	case KindScannerStart:
		req, ok := cmd.Payload.(models.ScannerStartRequest)
		if !ok {
			return res.fail(payloadErr(cmd))
		}

		return res.status(eng.StartScanner(ctx, req))

	case KindScannerPause:
		return res.status(eng.PauseScanner(ctx))

	case KindScannerResume:
		return res.status(eng.ResumeScanner(ctx))

	case KindScannerStop:
		return res.status(eng.StopScanner(ctx))

	default:
		return res.fail(fmt.Errorf("%w: %q", ErrUnknownKind, cmd.Kind))
	}

	return res
}

func (r Result) fail(err error) Result {
	r.Err = err

	return r
}

func (r Result) status(resp models.StatusResponse, err error) Result {
	if err != nil {
		return r.fail(err)
	}

	r.Status = resp.Status

	return r
}

func payloadErr(cmd Command) error {
	return fmt.Errorf("%w: %s carries %T", ErrUnexpectedPayload, cmd.Kind, cmd.Payload)
}
