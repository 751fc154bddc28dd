package wave

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dan-lund/diamond/internal/logging"
)

type fakeEngine struct {
	mu         sync.Mutex
	source     string
	events     Events
	zooms      []float64
	regions    []Region
	playCalls  int
	destroys   int
	unsubCalls int
}

func (e *fakeEngine) Load(source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = source
	return nil
}

func (e *fakeEngine) Subscribe(ev Events) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = ev
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.unsubCalls++
	}
}

func (e *fakeEngine) PlayPause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playCalls++
	return nil
}

func (e *fakeEngine) Seek(float64) error { return nil }

func (e *fakeEngine) SetZoom(z float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zooms = append(e.zooms, z)
}

func (e *fakeEngine) ClearRegions() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regions = nil
}

func (e *fakeEngine) AddRegion(r Region) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regions = append(e.regions, r)
	return nil
}

func (e *fakeEngine) Regions() []Region {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Region(nil), e.regions...)
}

func (e *fakeEngine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroys++
}

func (e *fakeEngine) fireReady(duration float64) {
	e.mu.Lock()
	ev := e.events
	e.mu.Unlock()
	if ev.Ready != nil {
		ev.Ready(duration)
	}
}

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestAdapter(t *testing.T) (*Adapter, *[]*fakeEngine) {
	t.Helper()
	var engines []*fakeEngine
	factory := func(height int) Engine {
		e := &fakeEngine{}
		engines = append(engines, e)
		return e
	}
	a := NewAdapter(factory, 160, 10, 300, 50, logging.Nop())
	return a, &engines
}

func TestAttachReleasesPreviousSurfaceExactlyOnce(t *testing.T) {
	a, engines := newTestAdapter(t)
	defer a.Detach()

	if err := a.Attach(writeSample(t, "one.wav")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	first := (*engines)[0]
	firstStaged := first.source
	if firstStaged == "" {
		t.Fatal("first engine never loaded a staged copy")
	}

	if err := a.Attach(writeSample(t, "two.wav")); err != nil {
		t.Fatalf("second Attach: %v", err)
	}

	if first.destroys != 1 {
		t.Fatalf("first engine destroys = %d, want exactly 1", first.destroys)
	}
	if first.unsubCalls != 1 {
		t.Fatalf("first engine unsubscribes = %d, want exactly 1", first.unsubCalls)
	}
	if _, err := os.Stat(firstStaged); !os.IsNotExist(err) {
		t.Fatalf("staged copy %s still exists after re-attach", firstStaged)
	}
	if len(*engines) != 2 {
		t.Fatalf("engines created = %d, want 2", len(*engines))
	}
}

func TestDetachIsIdempotent(t *testing.T) {
	a, engines := newTestAdapter(t)

	if err := a.Attach(writeSample(t, "one.wav")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	a.Detach()
	a.Detach()

	if d := (*engines)[0].destroys; d != 1 {
		t.Fatalf("destroys = %d, want 1", d)
	}
}

func TestToggleIsNoopUntilReady(t *testing.T) {
	a, engines := newTestAdapter(t)
	defer a.Detach()

	a.TogglePlayback() // nothing attached

	if err := a.Attach(writeSample(t, "one.wav")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	a.TogglePlayback() // attached but not ready

	engine := (*engines)[0]
	if engine.playCalls != 0 {
		t.Fatalf("playCalls = %d, want 0 before ready", engine.playCalls)
	}

	engine.fireReady(12.5)
	a.TogglePlayback()
	if engine.playCalls != 1 {
		t.Fatalf("playCalls = %d, want 1 after ready", engine.playCalls)
	}
	if a.Duration() != 12.5 {
		t.Fatalf("Duration = %g, want 12.5", a.Duration())
	}
}

func TestZoomClampsAndDefersUntilReady(t *testing.T) {
	a, engines := newTestAdapter(t)
	defer a.Detach()

	if err := a.Attach(writeSample(t, "one.wav")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	engine := (*engines)[0]

	a.SetZoom(1000)
	if a.Zoom() != 300 {
		t.Fatalf("Zoom = %g, want clamped to 300", a.Zoom())
	}
	if len(engine.zooms) != 0 {
		t.Fatalf("zoom applied before ready: %v", engine.zooms)
	}

	engine.fireReady(10)
	if len(engine.zooms) == 0 || engine.zooms[len(engine.zooms)-1] != 300 {
		t.Fatalf("retained zoom not applied on ready: %v", engine.zooms)
	}

	a.SetZoom(-1000)
	if a.Zoom() != 10 {
		t.Fatalf("Zoom = %g, want clamped to 10", a.Zoom())
	}
	if engine.zooms[len(engine.zooms)-1] != 10 {
		t.Fatalf("zoom not applied while ready: %v", engine.zooms)
	}
}

func TestAttachResetsObservableState(t *testing.T) {
	a, engines := newTestAdapter(t)
	defer a.Detach()

	if err := a.Attach(writeSample(t, "one.wav")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	(*engines)[0].fireReady(30)
	if !a.IsReady() {
		t.Fatal("adapter not ready after Ready event")
	}

	if err := a.Attach(writeSample(t, "two.wav")); err != nil {
		t.Fatalf("second Attach: %v", err)
	}
	if a.IsReady() || a.Duration() != 0 || a.CurrentTime() != 0 {
		t.Fatal("observable state leaked across re-attach")
	}
}
