// Desktop visualizer for snakelights runs. It creates (or attaches to)
// a run on the server, subscribes to its WebSocket frame feed and
// renders each frame as a board of lights.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
	wire "github.com/snakelights/snakelights/transport/websocket"
)

const (
	screenWidth  = 800
	screenHeight = 680
	headerHeight = 60
	boardMargin  = 20
)

var (
	litColor  = color.RGBA{255, 220, 80, 255}  // Warm yellow for lit cells
	dimColor  = color.RGBA{45, 45, 55, 255}    // Unlit cells
	foodHint  = color.RGBA{120, 200, 120, 255} // Accent when the run is won
	backColor = color.RGBA{20, 20, 25, 255}
)

// client is a thin HTTP client for the run API.
type client struct {
	baseURL string
	hc      *http.Client
}

func newClient(baseURL string) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) call(method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *client) createRun(configID string) (service.RunInfo, error) {
	var info service.RunInfo
	req := map[string]string{}
	if configID != "" {
		req["config_id"] = configID
	}
	err := c.call("POST", "/api/runs", req, &info)
	return info, err
}

func (c *client) getRun(id string) (service.RunInfo, error) {
	var info service.RunInfo
	err := c.call("GET", "/api/runs/"+id, nil, &info)
	return info, err
}

func (c *client) getConfig(name string) (config.RunConfig, error) {
	var cfg config.RunConfig
	err := c.call("GET", "/api/configs/"+name, nil, &cfg)
	return cfg, err
}

func (c *client) advance(id string, ticks int) error {
	// Frames come back over the WebSocket feed; the response body is
	// redundant here.
	return c.call("POST", "/api/runs/"+id+"/advance", map[string]int{"ticks": ticks}, nil)
}

func (c *client) reset(id string) error {
	return c.call("POST", "/api/runs/"+id+"/reset", nil, nil)
}

// point is a cell's center in screen coordinates.
type point struct {
	x, y float64
}

// layoutCells places every cell of the board inside the drawing area.
// Rectangles become grids, rings become circles, and custom boards use
// their coords when present (falling back to a circle).
func layoutCells(cfg *board.Config, n int) ([]point, float64) {
	areaW := float64(screenWidth - 2*boardMargin)
	areaH := float64(screenHeight - headerHeight - 2*boardMargin)
	top := float64(headerHeight + boardMargin)
	left := float64(boardMargin)

	points := make([]point, n)

	switch cfg.Kind {
	case board.KindRectangle:
		cw := areaW / float64(cfg.Width)
		ch := areaH / float64(cfg.Height)
		cell := math.Min(cw, ch)
		// Center the grid in the drawing area.
		ox := left + (areaW-cell*float64(cfg.Width))/2
		oy := top + (areaH-cell*float64(cfg.Height))/2
		for i := 0; i < n; i++ {
			x := i % cfg.Width
			y := i / cfg.Width
			points[i] = point{
				x: ox + (float64(x)+0.5)*cell,
				y: oy + (float64(y)+0.5)*cell,
			}
		}
		return points, cell * 0.8

	case board.KindCustom:
		if len(cfg.Coords) == n {
			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, c := range cfg.Coords {
				minX = math.Min(minX, float64(c.X))
				maxX = math.Max(maxX, float64(c.X))
				minY = math.Min(minY, float64(c.Y))
				maxY = math.Max(maxY, float64(c.Y))
			}
			spanX := math.Max(maxX-minX, 1)
			spanY := math.Max(maxY-minY, 1)
			for i, c := range cfg.Coords {
				points[i] = point{
					x: left + (float64(c.X)-minX)/spanX*areaW,
					y: top + (float64(c.Y)-minY)/spanY*areaH,
				}
			}
			cell := math.Min(areaW/spanX, areaH/spanY) * 0.6
			return points, math.Min(cell, 40)
		}
	}

	// Ring and coordless custom boards: evenly spaced on a circle.
	cx := left + areaW/2
	cy := top + areaH/2
	radius := math.Min(areaW, areaH)/2 - 10
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points[i] = point{
			x: cx + radius*math.Sin(angle),
			y: cy - radius*math.Cos(angle),
		}
	}
	cell := 2 * math.Pi * radius / float64(n) * 0.7
	return points, math.Min(cell, 30)
}

// App drives one run and renders its frame feed.
type App struct {
	api      *client
	wsURL    string
	runID    string
	cfg      config.RunConfig
	points   []point
	cellSize float64

	mu      sync.Mutex
	frame   *engine.Frame
	result  sim.Result
	pending []engine.Frame
	errMsg  string

	paused   bool
	stop     chan struct{}
	interval time.Duration
	lastShow time.Time
}

func newApp(api *client, wsURL string, info service.RunInfo, cfg config.RunConfig, cells, tps int) *App {
	points, cellSize := layoutCells(&cfg.Board, cells)

	return &App{
		api:      api,
		wsURL:    wsURL,
		runID:    info.ID,
		cfg:      cfg,
		points:   points,
		cellSize: cellSize,
		result:   info.Result,
		stop:     make(chan struct{}),
		interval: time.Second / time.Duration(tps),
	}
}

// listen reads frames off the WebSocket and queues them for display.
func (a *App) listen() {
	conn, _, err := gws.DefaultDialer.Dial(a.wsURL, nil)
	if err != nil {
		a.setError(fmt.Sprintf("WebSocket connect failed: %v", err))
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			a.setError(fmt.Sprintf("WebSocket closed: %v", err))
			return
		}

		// writePump batches queued messages into one newline-separated
		// payload.
		for _, raw := range bytes.Split(data, []byte{'\n'}) {
			if len(raw) == 0 {
				continue
			}
			var msg wire.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			a.handleMessage(&msg)
		}
	}
}

func (a *App) handleMessage(msg *wire.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch msg.Event {
	case wire.EventFrame:
		if msg.Frame != nil {
			a.pending = append(a.pending, *msg.Frame)
		}
	case wire.EventFinished:
		if msg.Result != nil {
			a.result = *msg.Result
		}
	case wire.EventReset:
		a.pending = nil
		a.frame = nil
		a.result = sim.Result{Reason: sim.ReasonRunning}
	}
}

func (a *App) setError(msg string) {
	a.mu.Lock()
	a.errMsg = msg
	a.mu.Unlock()
}

// drive asks the server for one tick per interval until the run ends.
func (a *App) drive() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			a.mu.Lock()
			paused := a.paused
			done := a.result.Done
			backlog := len(a.pending)
			a.mu.Unlock()

			// Keep a small read-ahead buffer without racing far past
			// the display.
			if paused || done || backlog > 8 {
				continue
			}
			if err := a.api.advance(a.runID, 1); err != nil {
				a.setError(err.Error())
				return
			}
		}
	}
}

func (a *App) restart() {
	if err := a.api.reset(a.runID); err != nil {
		a.setError(err.Error())
		return
	}
	a.mu.Lock()
	a.errMsg = ""
	a.mu.Unlock()
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		close(a.stop)
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.mu.Lock()
		a.paused = !a.paused
		a.mu.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		go a.restart()
	}

	// Show the next queued frame once the display interval has elapsed.
	if time.Since(a.lastShow) >= a.interval {
		a.mu.Lock()
		if len(a.pending) > 0 {
			f := a.pending[0]
			a.pending = a.pending[1:]
			a.frame = &f
			a.lastShow = time.Now()
		}
		a.mu.Unlock()
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backColor)

	a.mu.Lock()
	frame := a.frame
	result := a.result
	errMsg := a.errMsg
	paused := a.paused
	a.mu.Unlock()

	a.drawHeader(screen, frame, result, errMsg, paused)

	onColor := litColor
	if result.Won {
		onColor = foodHint
	}

	half := a.cellSize / 2
	for i, p := range a.points {
		c := color.Color(dimColor)
		if frame != nil && i < len(frame.Lit) && frame.Lit[i] {
			c = onColor
		}
		ebitenutil.DrawRect(screen, p.x-half, p.y-half, a.cellSize, a.cellSize, c)
	}
}

func (a *App) drawHeader(screen *ebiten.Image, frame *engine.Frame, result sim.Result, errMsg string, paused bool) {
	tick := -1
	if frame != nil {
		tick = frame.Tick
	}

	status := fmt.Sprintf("run %s | config %s | tick %d | score %d | filled %d/%d | %s",
		a.runID, a.cfg.Name, tick, result.Score,
		result.CellsFilled, result.CellCount, result.Reason)
	if paused {
		status += " | PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, status, 10, 10)
	ebitenutil.DebugPrintAt(screen, "SPACE pause | R reset | Q quit", 10, 26)

	if errMsg != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+errMsg, 10, 42)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Base URL of the snakelights server")
	configID := flag.String("config", "", "Configuration to run (default: server default)")
	runID := flag.String("run", "", "Attach to an existing run instead of creating one")
	tps := flag.Int("tps", 8, "Run ticks per second")
	flag.Parse()

	if *tps < 1 {
		log.Fatal("tps must be at least 1")
	}

	api := newClient(*serverURL)

	var info service.RunInfo
	var err error
	if *runID != "" {
		info, err = api.getRun(*runID)
	} else {
		info, err = api.createRun(*configID)
	}
	if err != nil {
		log.Fatalf("Failed to open run: %v", err)
	}

	cfg, err := api.getConfig(info.ConfigID)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", info.ConfigID, err)
	}

	g, err := board.Build(&cfg.Board)
	if err != nil {
		log.Fatalf("Invalid board in config %s: %v", info.ConfigID, err)
	}

	u, err := url.Parse(api.baseURL)
	if err != nil {
		log.Fatalf("Invalid server URL: %v", err)
	}
	wsScheme := "ws"
	if u.Scheme == "https" {
		wsScheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/ws?run=%s", wsScheme, u.Host, info.ID)

	app := newApp(api, wsURL, info, cfg, g.CellCount(), *tps)
	go app.listen()
	go app.drive()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Snakelights Visualizer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
