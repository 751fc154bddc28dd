// Package wave wraps an external audio-rendering capability behind a
// playback surface with transport controls, zoom, and overlay regions.
package wave

// Events carries the notifications a rendering engine emits. Any field may
// be nil. Ready fires once per loaded source with the resolved duration;
// Position fires during playback and on explicit seeks.
type Events struct {
	Ready    func(duration float64)
	Position func(seconds float64)
	Play     func()
	Pause    func()
	Finish   func()
}

// Region is one non-interactive annotation over a time range: a
// semi-transparent fill, a solid bottom border in the base color, and an
// upper-case label naming the speaker.
type Region struct {
	Start  float64
	End    float64
	Fill   string
	Border string
	Label  string
}

// Engine is the external waveform-rendering capability. One engine
// instance renders exactly one loaded source; it is destroyed, never
// reused, when the source changes.
type Engine interface {
	// Load decodes the source and eventually emits Ready. Events
	// subscribed before Load are guaranteed to observe it.
	Load(source string) error
	// Subscribe registers event callbacks and returns a cancel func that
	// must be called on teardown.
	Subscribe(ev Events) (cancel func())
	PlayPause() error
	Seek(seconds float64) error
	SetZoom(pxPerSec float64)
	ClearRegions()
	AddRegion(r Region) error
	Regions() []Region
	Destroy()
}

// Factory creates a fresh engine sized to the given visual height.
type Factory func(height int) Engine
