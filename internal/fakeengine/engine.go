// Package fakeengine simulates the scanning engine in-process: the command
// API, the scanner lifecycle and the websocket push channel. No packets
// leave the process.
package fakeengine

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
)

// Options configures the simulation.
type Options struct {
	Network string
	Hosts   int
	// AckPortScans answers port scans with an acknowledgement and reports
	// the result later through a port_scan_result push.
	AckPortScans bool
	ScanDelay    time.Duration
	// BroadcastInterval is the scan_update cadence.
	BroadcastInterval time.Duration
}

type scannerState struct {
	Running bool
	Paused  bool
	Network string
}

// Engine is the simulated engine. Its zero value is not usable; call New.
type Engine struct {
	opts   Options
	logger logger.Logger
	hub    *Hub
	router *gin.Engine
	now    func() time.Time

	mu      sync.Mutex
	hosts   map[string]*host
	scanner scannerState
	scans   sync.WaitGroup
}

// New builds an engine populated with opts.Hosts simulated hosts.
func New(opts Options, log logger.Logger) (*Engine, error) {
	if opts.BroadcastInterval <= 0 {
		opts.BroadcastInterval = time.Second
	}

	e := &Engine{
		opts:   opts,
		logger: log,
		hub:    newHub(log),
		now:    time.Now,
	}

	hosts, err := generateHosts(opts.Network, opts.Hosts, unixSeconds(e.now()))
	if err != nil {
		return nil, err
	}

	e.hosts = hosts
	e.router = e.newRouter()

	return e, nil
}

// Handler serves the engine's HTTP and websocket API.
func (e *Engine) Handler() http.Handler {
	return e.router
}

// Hub exposes the push hub.
func (e *Engine) Hub() *Hub {
	return e.hub
}

// Snapshot is the engine's current host map.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() models.Snapshot {
	snap := make(models.Snapshot, len(e.hosts))
	for addr, h := range e.hosts {
		entry := h.entry
		entry.Ports = slices.Clone(h.entry.Ports)
		snap[addr] = entry
	}

	return snap
}

// Run broadcasts scan_update every BroadcastInterval until ctx ends, then
// waits for background scans and disconnects every listener.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.BroadcastInterval)

	defer func() {
		ticker.Stop()
		e.scans.Wait()
		e.hub.closeAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.tick()
			e.hub.Broadcast(models.EventScanUpdate, e.Snapshot())
		}
	}
}

// tick advances the simulated discovery cycle.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.scanner.Running || e.scanner.Paused {
		return
	}

	seen := unixSeconds(e.now())

	for _, h := range e.hosts {
		if h.entry.Status == string(models.StatusOnline) {
			h.entry.LastSeen = seen
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (e *Engine) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), e.requestLogger())

	r.GET("/ws", e.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/scan", e.handleScan)
		api.POST("/scanner/start", e.handleScannerStart)
		api.POST("/scanner/pause", e.handleScannerPause)
		api.POST("/scanner/resume", e.handleScannerResume)
		api.POST("/scanner/stop", e.handleScannerStop)
		api.POST("/command/portscan", e.handlePortScan)
		api.POST("/command/bannergrab", e.handleBannerGrab)
		api.POST("/command/maclookup", e.handleMACLookup)
		api.POST("/host/update", e.handleHostUpdate)
	}

	return r
}

func (e *Engine) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		e.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Handled request")
	}
}

func (e *Engine) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		e.logger.Warn().Err(err).Msg("WebSocket upgrade failed")

		return
	}

	e.hub.serve(conn)
}

func (e *Engine) handleScan(c *gin.Context) {
	c.JSON(http.StatusOK, e.Snapshot())
}

func (e *Engine) handleScannerStart(c *gin.Context) {
	var req models.ScannerStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)

		return
	}

	if req.Network == "" {
		fail(c, http.StatusBadRequest, errors.New("network parameter is required"))

		return
	}

	e.mu.Lock()
	e.scanner = scannerState{Running: true, Network: req.Network}
	e.mu.Unlock()

	e.logger.Info().Str("network", req.Network).Int("port_start", req.PortStart).
		Int("port_end", req.PortEnd).Msg("Scanner started")

	c.JSON(http.StatusOK, models.StatusResponse{Status: "scanner started", Network: req.Network})
}

func (e *Engine) handleScannerPause(c *gin.Context) {
	e.setScanner(c, "scanner paused", func(s *scannerState) { s.Paused = true })
}

func (e *Engine) handleScannerResume(c *gin.Context) {
	e.setScanner(c, "scanner resumed", func(s *scannerState) { s.Paused = false })
}

func (e *Engine) handleScannerStop(c *gin.Context) {
	e.setScanner(c, "scanner stopped", func(s *scannerState) { *s = scannerState{} })
}

func (e *Engine) setScanner(c *gin.Context, status string, fn func(*scannerState)) {
	e.mu.Lock()
	fn(&e.scanner)
	e.mu.Unlock()

	c.JSON(http.StatusOK, models.StatusResponse{Status: status})
}

func (e *Engine) handlePortScan(c *gin.Context) {
	var req models.PortScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)

		return
	}

	ports, err := portsFor(req)
	if err != nil {
		fail(c, http.StatusBadRequest, err)

		return
	}

	e.mu.Lock()
	h, ok := e.hosts[req.Host]

	if !ok {
		e.mu.Unlock()
		fail(c, http.StatusNotFound, ErrHostNotFound)

		return
	}

	if !e.opts.AckPortScans {
		open := h.openAmong(ports)
		h.entry.Ports = open
		e.mu.Unlock()

		list := models.PortList(open)
		c.JSON(http.StatusOK, models.PortScanResponse{Status: "Port scan finished", Host: req.Host, Ports: &list})

		return
	}

	h.entry.PortScanInProgress = true
	e.mu.Unlock()

	e.scans.Add(1)

	go e.finishScan(req.Host, ports)

	c.JSON(http.StatusOK, models.PortScanResponse{Status: "Port scan started", Host: req.Host})
}

func (e *Engine) finishScan(addr string, ports []int) {
	defer e.scans.Done()

	time.Sleep(e.opts.ScanDelay)

	e.mu.Lock()
	open := []int{}

	if h, ok := e.hosts[addr]; ok {
		open = h.openAmong(ports)
		h.entry.Ports = open
		h.entry.PortScanInProgress = false
	}

	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.hub.Broadcast(models.EventScanUpdate, snap)
	e.hub.Broadcast(models.EventPortScanResult, models.PortScanReport{Host: addr, OpenPorts: open})
}

func (e *Engine) handleBannerGrab(c *gin.Context) {
	var req models.BannerGrabRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Host == "" || req.Port == 0 {
		fail(c, http.StatusBadRequest, errors.New("host and port are required"))

		return
	}

	e.mu.Lock()
	h, ok := e.hosts[req.Host]
	banner := ""

	if ok && slices.Contains(h.listening, req.Port) {
		banner = services[req.Port]
	}
	e.mu.Unlock()

	if !ok {
		fail(c, http.StatusNotFound, ErrHostNotFound)

		return
	}

	c.JSON(http.StatusOK, models.BannerGrabResponse{Host: req.Host, Port: req.Port, Banner: banner})
}

func (e *Engine) handleMACLookup(c *gin.Context) {
	var req models.MACLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Host == "" {
		fail(c, http.StatusBadRequest, errors.New("host is required"))

		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.hosts[req.Host]
	if !ok {
		fail(c, http.StatusNotFound, ErrHostNotFound)

		return
	}

	h.entry.Vendor = lookupVendor(h.entry.MAC)

	c.JSON(http.StatusOK, models.MACLookupResponse{Host: req.Host, Vendor: h.entry.Vendor})
}

func (e *Engine) handleHostUpdate(c *gin.Context) {
	var req models.HostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IP == "" {
		fail(c, http.StatusBadRequest, errors.New("IP is required"))

		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.hosts[req.IP]
	if !ok {
		fail(c, http.StatusNotFound, ErrHostNotFound)

		return
	}

	h.entry.Hostname = req.Hostname
	h.entry.IsDHCP = req.IsDHCP

	c.JSON(http.StatusOK, models.StatusResponse{Status: "Host updated"})
}

// Scanner reports the simulated scanner state.
func (e *Engine) Scanner() (running, paused bool, network string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.scanner.Running, e.scanner.Paused, e.scanner.Network
}

// Hosts returns the simulated addresses, sorted.
func (e *Engine) Hosts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Sorted(maps.Keys(e.hosts))
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
