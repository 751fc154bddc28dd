// Package palette assigns stable visual styles to speaker labels.
package palette

import (
	"sort"

	"github.com/dan-lund/diamond/internal/types"
)

// Style is the visual treatment for one speaker: a base color for borders
// and labels, and a semi-transparent fill for regions.
type Style struct {
	Name string
	Base string
	Fill string
}

// Palette is an ordered list of styles, cycled over when the distinct
// speaker count exceeds its length.
type Palette []Style

// Default is the six-entry neon palette used by the timeline view.
func Default() Palette {
	return Palette{
		{Name: "Teal", Base: "#2dd4bf", Fill: "rgba(45, 212, 191, 0.2)"},
		{Name: "Lime", Base: "#a3e635", Fill: "rgba(163, 230, 53, 0.2)"},
		{Name: "Indigo", Base: "#818cf8", Fill: "rgba(129, 140, 248, 0.2)"},
		{Name: "Rose", Base: "#fb7185", Fill: "rgba(251, 113, 133, 0.2)"},
		{Name: "Amber", Base: "#fbbf24", Fill: "rgba(251, 191, 36, 0.2)"},
		{Name: "Cyan", Base: "#22d3ee", Fill: "rgba(34, 211, 238, 0.2)"},
	}
}

// Assign maps every distinct speaker in segs to a palette entry. Labels are
// sorted lexically and assigned by position, wrapping at the palette length,
// so identical input always yields the identical mapping regardless of
// segment order. An empty segment list or palette yields an empty map.
func (p Palette) Assign(segs []types.Segment) map[string]Style {
	styles := make(map[string]Style)
	if len(p) == 0 {
		return styles
	}

	speakers := types.Speakers(segs)
	sort.Strings(speakers)

	for i, speaker := range speakers {
		styles[speaker] = p[i%len(p)]
	}
	return styles
}

// Mapper caches the style mapping for one result list. The cache is keyed
// on slice identity, so recomputation happens only when the result list
// itself is replaced, not on every lookup.
type Mapper struct {
	palette Palette

	last   []types.Segment
	cached map[string]Style
}

// NewMapper creates a mapper over the given palette.
func NewMapper(p Palette) *Mapper {
	return &Mapper{palette: p}
}

// Styles returns the mapping for segs, recomputing only when segs is a
// different slice than the previous call.
func (m *Mapper) Styles(segs []types.Segment) map[string]Style {
	if m.cached != nil && sameSlice(m.last, segs) {
		return m.cached
	}
	m.last = segs
	m.cached = m.palette.Assign(segs)
	return m.cached
}

func sameSlice(a, b []types.Segment) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
