// Package overlay paints speaker segments as labeled regions on a playback
// surface.
package overlay

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/dan-lund/diamond/internal/palette"
	"github.com/dan-lund/diamond/internal/types"
	"github.com/dan-lund/diamond/internal/wave"
)

// Canvas is the slice of the rendering surface the overlay draws on.
type Canvas interface {
	ClearRegions()
	AddRegion(r wave.Region) error
}

// Renderer redraws the full overlay set from scratch on every call.
type Renderer struct {
	log zerolog.Logger
}

// NewRenderer creates an overlay renderer.
func NewRenderer(log zerolog.Logger) *Renderer {
	return &Renderer{log: log}
}

// Redraw clears all existing regions and draws one region per segment.
// Segments whose speaker has no style are skipped silently; a bad region
// never blocks the rest. Returns the number of regions drawn. Because it
// always starts from a cleared canvas, repeated calls with identical input
// are idempotent.
func (r *Renderer) Redraw(canvas Canvas, segs []types.Segment, styles map[string]palette.Style) int {
	canvas.ClearRegions()

	drawn := 0
	for _, seg := range segs {
		style, ok := styles[seg.Speaker]
		if !ok {
			continue
		}

		region := wave.Region{
			Start:  seg.Start,
			End:    seg.End,
			Fill:   style.Fill,
			Border: style.Base,
			Label:  strings.ToUpper(seg.Speaker),
		}
		if err := canvas.AddRegion(region); err != nil {
			r.log.Warn().Err(err).Str("speaker", seg.Speaker).Msg("skipping region")
			continue
		}
		drawn++
	}
	return drawn
}

// Sync draws segs onto the adapter's surface if and only if it is ready.
// Draws before readiness are no-ops, not queued; callers re-invoke once
// the surface signals ready. Returns the number of regions drawn.
func (r *Renderer) Sync(adapter *wave.Adapter, segs []types.Segment, styles map[string]palette.Style) int {
	surface, ready := adapter.Surface()
	if surface == nil || !ready {
		return 0
	}
	return r.Redraw(surface, segs, styles)
}
