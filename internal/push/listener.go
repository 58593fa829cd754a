// Package push listens to the engine's websocket push channel and turns its
// frames into session events.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/session"
)

var (
	ErrInvalidURL   = errors.New("invalid push URL")
	ErrUnknownEvent = errors.New("unknown push event")
)

const (
	defaultReconnect = 2 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Sink receives decoded events. session.Loop.Post satisfies it.
type Sink func(ctx context.Context, ev session.Event) error

// Listener keeps one connection to the push channel open, redialling after
// a drop at most once per reconnect interval.
type Listener struct {
	url     string
	dialer  *websocket.Dialer
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewListener validates rawURL (ws or wss) and returns a listener for it.
func NewListener(rawURL string, reconnect time.Duration, log logger.Logger) (*Listener, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	if reconnect <= 0 {
		reconnect = defaultReconnect
	}

	return &Listener{
		url:     u.String(),
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		limiter: rate.NewLimiter(rate.Every(reconnect), 1),
		logger:  log,
	}, nil
}

// Run delivers events to sink until ctx is cancelled or sink fails.
// Connection changes are delivered as session.ChannelStatus.
func (l *Listener) Run(ctx context.Context, sink Sink) error {
	for {
		if err := l.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		err := l.listen(ctx, sink)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var sinkErr *sinkError
		if errors.As(err, &sinkErr) {
			return sinkErr.err
		}

		l.logger.Warn().Err(err).Str("url", l.url).Msg("Push channel down")

		if err := sink(ctx, session.ChannelStatus{Err: err}); err != nil {
			return err
		}
	}
}

type sinkError struct{ err error }

func (e *sinkError) Error() string { return e.err.Error() }

func (l *Listener) listen(ctx context.Context, sink Sink) error {
	conn, resp, err := l.dialer.DialContext(ctx, l.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	l.logger.Info().Str("url", l.url).Msg("Push channel connected")

	if err := sink(ctx, session.ChannelStatus{Connected: true}); err != nil {
		return &sinkError{err: err}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		ev, err := Decode(data)
		if err != nil {
			l.logger.Debug().Err(err).Msg("Skipping push frame")

			continue
		}

		if err := sink(ctx, ev); err != nil {
			return &sinkError{err: err}
		}
	}
}

// Decode turns one push frame into a session event.
func Decode(data []byte) (session.Event, error) {
	var frame models.PushFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch frame.Event {
	case models.EventScanUpdate:
		snap := models.Snapshot{}
		if err := json.Unmarshal(frame.Data, &snap); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}

		return session.SnapshotReceived{Snapshot: snap}, nil

	case models.EventPortScanResult:
		var rep models.PortScanReport
		if err := json.Unmarshal(frame.Data, &rep); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}

		return session.PortScanReported{Report: rep}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, frame.Event)
	}
}
