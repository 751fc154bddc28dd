package wave

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// positionInterval is the native granularity of position notifications.
const positionInterval = 100 * time.Millisecond

// BeepEngine renders one audio file through the beep playback library.
// It satisfies Engine; zoom and regions are bookkeeping for the view,
// playback is real.
type BeepEngine struct {
	height int

	mu       sync.Mutex
	subs     map[int]Events
	nextSub  int
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	file     *os.File
	regions  []Region
	zoom     float64
	done     chan struct{}
	playing  bool
}

// NewBeepEngine creates an engine sized to the given visual height.
func NewBeepEngine(height int) Engine {
	return &BeepEngine{
		height: height,
		subs:   make(map[int]Events),
	}
}

// Load decodes the source by extension (wav or mp3), initializes the
// speaker at the source sample rate, and emits Ready with the duration.
// Playback starts paused.
func (e *BeepEngine) Load(source string) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(source)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported audio format %q", filepath.Ext(source))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode source: %w", err)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(positionInterval)); err != nil {
		streamer.Close()
		f.Close()
		return fmt.Errorf("init speaker: %w", err)
	}

	ctrl := &beep.Ctrl{
		Streamer: beep.Seq(streamer, beep.Callback(e.onFinish)),
		Paused:   true,
	}

	e.mu.Lock()
	e.streamer = streamer
	e.format = format
	e.ctrl = ctrl
	e.file = f
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	speaker.Play(ctrl)
	go e.trackPosition(done)

	duration := format.SampleRate.D(streamer.Len()).Seconds()
	e.emit(func(ev Events) {
		if ev.Ready != nil {
			ev.Ready(duration)
		}
	})
	return nil
}

// Subscribe registers callbacks; the returned cancel removes them.
func (e *BeepEngine) Subscribe(ev Events) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ev
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// PlayPause toggles between playing and paused.
func (e *BeepEngine) PlayPause() error {
	e.mu.Lock()
	ctrl := e.ctrl
	e.mu.Unlock()
	if ctrl == nil {
		return fmt.Errorf("no source loaded")
	}

	speaker.Lock()
	ctrl.Paused = !ctrl.Paused
	paused := ctrl.Paused
	speaker.Unlock()

	e.mu.Lock()
	e.playing = !paused
	e.mu.Unlock()

	e.emit(func(ev Events) {
		if paused {
			if ev.Pause != nil {
				ev.Pause()
			}
		} else if ev.Play != nil {
			ev.Play()
		}
	})
	return nil
}

// Seek moves the playback position and emits a Position notification.
func (e *BeepEngine) Seek(seconds float64) error {
	e.mu.Lock()
	streamer, format := e.streamer, e.format
	e.mu.Unlock()
	if streamer == nil {
		return fmt.Errorf("no source loaded")
	}

	speaker.Lock()
	err := streamer.Seek(format.SampleRate.N(time.Duration(seconds * float64(time.Second))))
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	e.emit(func(ev Events) {
		if ev.Position != nil {
			ev.Position(seconds)
		}
	})
	return nil
}

// SetZoom stores the pixels-per-second factor for the view to consume.
func (e *BeepEngine) SetZoom(pxPerSec float64) {
	e.mu.Lock()
	e.zoom = pxPerSec
	e.mu.Unlock()
}

// Zoom returns the last applied zoom factor.
func (e *BeepEngine) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// ClearRegions drops all overlay regions.
func (e *BeepEngine) ClearRegions() {
	e.mu.Lock()
	e.regions = nil
	e.mu.Unlock()
}

// AddRegion appends one overlay region.
func (e *BeepEngine) AddRegion(r Region) error {
	if r.Start < 0 || r.End < r.Start {
		return fmt.Errorf("invalid region span [%g, %g]", r.Start, r.End)
	}
	e.mu.Lock()
	e.regions = append(e.regions, r)
	e.mu.Unlock()
	return nil
}

// Regions returns a copy of the current overlay regions.
func (e *BeepEngine) Regions() []Region {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Region, len(e.regions))
	copy(out, e.regions)
	return out
}

// Destroy stops playback and releases the decoder and source handle.
func (e *BeepEngine) Destroy() {
	e.mu.Lock()
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
	streamer, file := e.streamer, e.file
	e.streamer = nil
	e.ctrl = nil
	e.file = nil
	e.subs = make(map[int]Events)
	e.mu.Unlock()

	if streamer != nil {
		speaker.Clear()
		streamer.Close()
	}
	if file != nil {
		file.Close()
	}
}

func (e *BeepEngine) trackPosition(done chan struct{}) {
	ticker := time.NewTicker(positionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			e.mu.Lock()
			streamer, format, playing := e.streamer, e.format, e.playing
			e.mu.Unlock()
			if streamer == nil || !playing {
				continue
			}

			speaker.Lock()
			pos := streamer.Position()
			speaker.Unlock()

			seconds := format.SampleRate.D(pos).Seconds()
			e.emit(func(ev Events) {
				if ev.Position != nil {
					ev.Position(seconds)
				}
			})
		}
	}
}

func (e *BeepEngine) onFinish() {
	e.mu.Lock()
	e.playing = false
	if e.ctrl != nil {
		e.ctrl.Paused = true
	}
	e.mu.Unlock()

	e.emit(func(ev Events) {
		if ev.Finish != nil {
			ev.Finish()
		}
	})
}

func (e *BeepEngine) emit(fire func(Events)) {
	e.mu.Lock()
	subs := make([]Events, 0, len(e.subs))
	for _, ev := range e.subs {
		subs = append(subs, ev)
	}
	e.mu.Unlock()

	for _, ev := range subs {
		fire(ev)
	}
}
