package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dan-lund/diamond/internal/history"
	"github.com/dan-lund/diamond/internal/palette"
	"github.com/dan-lund/diamond/internal/types"
	"github.com/dan-lund/diamond/internal/wave"
)

// timelineMaxColumns caps the rendered bar so long recordings stay on
// screen regardless of zoom.
const timelineMaxColumns = 120

// formatTime renders seconds as m:ss.
func formatTime(seconds float64) string {
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// styleColor maps a palette entry to the closest terminal color.
func styleColor(s palette.Style) text.Color {
	switch s.Name {
	case "Teal":
		return text.FgCyan
	case "Lime":
		return text.FgGreen
	case "Indigo":
		return text.FgBlue
	case "Rose":
		return text.FgRed
	case "Amber":
		return text.FgYellow
	case "Cyan":
		return text.FgHiCyan
	default:
		return text.FgWhite
	}
}

func paint(s string, c text.Color, colorize bool) string {
	if !colorize {
		return s
	}
	return c.Sprint(s)
}

// renderTimeline draws the overlay regions as one colored bar. Each column
// covers duration/columns seconds; overlapping regions stack in input
// order, later regions painting over earlier ones. A cursor row marks the
// current playback position.
func renderTimeline(regions []wave.Region, duration, zoom, currentTime float64, colorize bool) string {
	if duration <= 0 {
		return ""
	}

	// zoom is pixels-per-second; ~10px per character cell.
	columns := int(duration * zoom / 10)
	if columns < 1 {
		columns = 1
	}
	if columns > timelineMaxColumns {
		columns = timelineMaxColumns
	}
	secsPerCol := duration / float64(columns)

	cells := make([]string, columns)
	for i := range cells {
		cells[i] = "·"
	}
	for _, region := range regions {
		start := int(region.Start / secsPerCol)
		end := int(math.Ceil(region.End / secsPerCol))
		if end <= start {
			end = start + 1 // zero-duration segments still get one cell
		}
		for i := start; i < end && i < columns; i++ {
			if i < 0 {
				continue
			}
			cells[i] = paint("█", regionColor(region), colorize)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(cells, ""))
	b.WriteByte('\n')

	cursor := int(currentTime / secsPerCol)
	if cursor >= columns {
		cursor = columns - 1
	}
	if cursor >= 0 {
		b.WriteString(strings.Repeat(" ", cursor))
		b.WriteString("^ ")
		b.WriteString(formatTime(currentTime))
		b.WriteString(" / ")
		b.WriteString(formatTime(duration))
	}
	return b.String()
}

// regionColor recovers a terminal color from the region's border color,
// which carries the palette base hex.
func regionColor(r wave.Region) text.Color {
	for _, s := range palette.Default() {
		if s.Base == r.Border {
			return styleColor(s)
		}
	}
	return text.FgWhite
}

// renderLegend lists each mapped speaker with its color marker.
func renderLegend(styles map[string]palette.Style, segs []types.Segment, colorize bool) string {
	speakers := types.Speakers(segs)
	var parts []string
	for _, speaker := range speakers {
		style, ok := styles[speaker]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s",
			paint("●", styleColor(style), colorize), strings.ToUpper(speaker)))
	}
	return strings.Join(parts, "   ")
}

// renderTranscript renders the segment log as a table, one row per segment
// in input order.
func renderTranscript(segs []types.Segment, styles map[string]palette.Style, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Speaker", "Start", "End", "Duration"})

	for i, seg := range segs {
		label := strings.ToUpper(seg.Speaker)
		if style, ok := styles[seg.Speaker]; ok {
			label = paint(label, styleColor(style), colorize)
		}
		tw.AppendRow(table.Row{
			i + 1,
			label,
			fmt.Sprintf("%.2fs", seg.Start),
			fmt.Sprintf("%.2fs", seg.End),
			fmt.Sprintf("%.2fs", seg.Duration()),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

// renderRoster renders the enrolled speaker identities.
func renderRoster(speakers []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Speaker", "Profile"})
	for _, s := range speakers {
		tw.AppendRow(table.Row{s, "voice id stored"})
	}
	return tw.Render()
}

// renderHistory renders past sessions, newest first.
func renderHistory(sessions []*history.Session) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Name", "File", "Duration", "Segments", "Task"})
	for _, s := range sessions {
		tw.AppendRow(table.Row{
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.RequestName,
			s.SourceFile,
			formatTime(s.Duration),
			s.SegmentCount,
			shortID(s.TaskID),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
