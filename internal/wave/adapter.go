package wave

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Adapter owns at most one engine handle at a time, scoped to the lifetime
// of a single attached file. Attaching a new file releases the previous
// engine and its staged audio copy before anything else happens.
type Adapter struct {
	factory Factory
	height  int
	zoomMin float64
	zoomMax float64
	log     zerolog.Logger

	mu          sync.Mutex
	engine      Engine
	unsubscribe func()
	tempPath    string
	ready       bool
	playing     bool
	currentTime float64
	duration    float64
	zoom        float64
}

// NewAdapter creates an adapter producing surfaces of the given height.
// zoom is the initial pixels-per-second factor, clamped to [zoomMin, zoomMax].
func NewAdapter(factory Factory, height int, zoomMin, zoomMax, zoom float64, log zerolog.Logger) *Adapter {
	a := &Adapter{
		factory: factory,
		height:  height,
		zoomMin: zoomMin,
		zoomMax: zoomMax,
		log:     log,
	}
	a.zoom = a.clamp(zoom)
	return a
}

// Attach loads the given audio file into a fresh surface. Any previously
// attached surface is torn down first: engine destroyed, subscription
// cancelled, staged copy removed. The surface reports not-ready until the
// engine signals readiness with the resolved duration.
func (a *Adapter) Attach(path string) error {
	a.mu.Lock()
	a.detachLocked()

	tempPath, err := stageAudio(path)
	if err != nil {
		a.mu.Unlock()
		return err
	}

	engine := a.factory(a.height)
	a.engine = engine
	a.tempPath = tempPath
	a.ready = false
	a.playing = false
	a.currentTime = 0
	a.duration = 0

	a.unsubscribe = engine.Subscribe(Events{
		Ready:    a.onReady,
		Position: a.onPosition,
		Play:     func() { a.setPlaying(true) },
		Pause:    func() { a.setPlaying(false) },
		Finish:   func() { a.setPlaying(false) },
	})
	a.mu.Unlock()

	if err := engine.Load(tempPath); err != nil {
		a.mu.Lock()
		a.detachLocked()
		a.mu.Unlock()
		return fmt.Errorf("load audio: %w", err)
	}
	return nil
}

// Detach releases the current surface and its staged audio copy. Safe to
// call when nothing is attached.
func (a *Adapter) Detach() {
	a.mu.Lock()
	a.detachLocked()
	a.mu.Unlock()
}

// TogglePlayback switches between playing and paused. It is a no-op while
// no surface is attached or the surface is not ready.
func (a *Adapter) TogglePlayback() {
	a.mu.Lock()
	engine, ready := a.engine, a.ready
	a.mu.Unlock()

	if engine == nil || !ready {
		return
	}
	if err := engine.PlayPause(); err != nil {
		a.log.Warn().Err(err).Msg("toggle playback failed")
	}
}

// SetZoom adjusts the zoom factor by delta pixels-per-second, clamped to
// the configured bounds. The value applies immediately when the surface is
// ready and is retained for application on readiness otherwise.
func (a *Adapter) SetZoom(delta float64) {
	a.mu.Lock()
	a.zoom = a.clamp(a.zoom + delta)
	engine, ready, zoom := a.engine, a.ready, a.zoom
	a.mu.Unlock()

	if engine != nil && ready {
		engine.SetZoom(zoom)
	}
}

// Surface returns the current engine and whether it has signalled
// readiness. Callers must not retain the engine across a re-attach.
func (a *Adapter) Surface() (Engine, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine, a.ready
}

// IsReady reports whether the attached surface finished decoding.
func (a *Adapter) IsReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

// IsPlaying reports whether playback is running.
func (a *Adapter) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// CurrentTime returns the playback position in seconds.
func (a *Adapter) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentTime
}

// Duration returns the loaded source duration in seconds, zero until ready.
func (a *Adapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Zoom returns the current zoom factor in pixels-per-second.
func (a *Adapter) Zoom() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.zoom
}

func (a *Adapter) onReady(duration float64) {
	a.mu.Lock()
	a.ready = true
	a.duration = duration
	engine, zoom := a.engine, a.zoom
	a.mu.Unlock()

	if engine != nil {
		engine.SetZoom(zoom)
	}
}

func (a *Adapter) onPosition(seconds float64) {
	a.mu.Lock()
	a.currentTime = seconds
	a.mu.Unlock()
}

func (a *Adapter) setPlaying(playing bool) {
	a.mu.Lock()
	a.playing = playing
	a.mu.Unlock()
}

func (a *Adapter) detachLocked() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.engine != nil {
		a.engine.Destroy()
		a.engine = nil
	}
	if a.tempPath != "" {
		if err := os.Remove(a.tempPath); err != nil && !os.IsNotExist(err) {
			a.log.Warn().Err(err).Str("path", a.tempPath).Msg("failed to remove staged audio")
		}
		a.tempPath = ""
	}
	a.ready = false
	a.playing = false
	a.currentTime = 0
	a.duration = 0
}

func (a *Adapter) clamp(zoom float64) float64 {
	if zoom < a.zoomMin {
		return a.zoomMin
	}
	if zoom > a.zoomMax {
		return a.zoomMax
	}
	return zoom
}

// stageAudio copies the source into a private temp file so the engine
// never depends on the caller's path outliving the surface. The copy is
// removed on detach.
func stageAudio(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "diamond-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("stage audio: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("stage audio: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("stage audio: %w", err)
	}
	return dst.Name(), nil
}
