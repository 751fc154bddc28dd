package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dan-lund/diamond/internal/audiofile"
	"github.com/dan-lund/diamond/internal/export"
	"github.com/dan-lund/diamond/internal/history"
	"github.com/dan-lund/diamond/internal/overlay"
	"github.com/dan-lund/diamond/internal/palette"
	"github.com/dan-lund/diamond/internal/task"
	"github.com/dan-lund/diamond/internal/types"
	"github.com/dan-lund/diamond/internal/wave"
)

// surfaceReadyTimeout bounds how long we wait for the playback surface to
// finish decoding before rendering without a timeline.
const surfaceReadyTimeout = 30 * time.Second

func newDiarizeCommand(ctx *commandContext) *cobra.Command {
	var (
		nameFlag   string
		outFlag    string
		playFlag   bool
		noSaveFlag bool
	)

	cmd := &cobra.Command{
		Use:   "diarize FILE",
		Short: "Upload an audio file, wait for diarization, and render the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if err := audiofile.Check(file); err != nil {
				return err
			}

			name := nameFlag
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			snap, err := runLifecycle(runCtx, ctx, file)
			if err != nil {
				return err
			}

			switch snap.State {
			case types.StateFailed:
				return fmt.Errorf("diarization failed for %s (task %s)", file, snap.TaskID)
			case types.StateCompleted:
				// fall through to rendering
			default:
				return fmt.Errorf("interrupted while %s", snap.State)
			}

			mapper := palette.NewMapper(ctx.palette())
			styles := mapper.Styles(snap.Results)

			renderResult(ctx, snap, styles, playFlag, runCtx)

			if !noSaveFlag {
				saveSession(ctx, snap, name, file)
			}
			if outFlag != "" {
				path, err := export.Write(outFlag, export.Result{
					TaskID:      snap.TaskID,
					RequestName: name,
					SourceFile:  file,
					Duration:    lastEnd(snap.Results),
					Segments:    snap.Results,
				})
				if err != nil {
					return fmt.Errorf("export transcript: %w", err)
				}
				fmt.Printf("Transcript written to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "Request name recorded with the session")
	cmd.Flags().StringVar(&outFlag, "out", "", "Directory to export the transcript into")
	cmd.Flags().BoolVar(&playFlag, "play", false, "Play the audio while following the timeline cursor")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Skip recording the session in history")

	return cmd
}

// runLifecycle drives one select -> submit -> poll cycle and returns the
// terminal snapshot.
func runLifecycle(runCtx context.Context, ctx *commandContext, file string) (task.Snapshot, error) {
	updates := make(chan task.Snapshot, 16)
	ctrl := task.New(ctx.client(), ctx.cfg.PollInterval(), ctx.log,
		task.WithObserver(func(s task.Snapshot) {
			select {
			case updates <- s:
			default:
			}
		}))
	defer ctrl.Close()

	ctrl.Select(file)
	fmt.Printf("Uploading %s...\n", file)
	if err := ctrl.Submit(runCtx); err != nil {
		return ctrl.Snapshot(), fmt.Errorf("submit: %w", err)
	}
	fmt.Println("Processing audio, identifying unique voice signatures...")

	for {
		select {
		case <-runCtx.Done():
			return ctrl.Snapshot(), nil
		case snap := <-updates:
			if snap.State == types.StateCompleted || snap.State == types.StateFailed {
				return snap, nil
			}
		}
	}
}

// renderResult attaches the playback surface, paints the overlay, and
// prints the timeline, legend, and transcript log. A surface that cannot
// load (no audio device, unsupported codec) degrades to transcript-only
// output.
func renderResult(ctx *commandContext, snap task.Snapshot, styles map[string]palette.Style, play bool, runCtx context.Context) {
	color := colorize()

	adapter := wave.NewAdapter(wave.NewBeepEngine,
		ctx.cfg.Surface.Height,
		ctx.cfg.Surface.ZoomMin, ctx.cfg.Surface.ZoomMax, ctx.cfg.Surface.ZoomDefault,
		ctx.log)
	renderer := overlay.NewRenderer(ctx.log)

	surfaceUp := false
	if err := adapter.Attach(snap.File); err != nil {
		ctx.log.Warn().Err(err).Msg("playback surface unavailable, rendering transcript only")
	} else {
		defer adapter.Detach()
		surfaceUp = waitReady(runCtx, adapter, surfaceReadyTimeout)
	}

	if surfaceUp {
		drawn := renderer.Sync(adapter, snap.Results, styles)
		ctx.log.Debug().Int("regions", drawn).Msg("overlay drawn")

		surface, _ := adapter.Surface()
		fmt.Println()
		fmt.Println(renderTimeline(surface.Regions(), adapter.Duration(), adapter.Zoom(), adapter.CurrentTime(), color))
	}

	fmt.Println()
	if legend := renderLegend(styles, snap.Results, color); legend != "" {
		fmt.Println(legend)
	}
	fmt.Println(renderTranscript(snap.Results, styles, color))
	fmt.Printf("%d segments, %d speakers\n", len(snap.Results), len(styles))

	if play && surfaceUp {
		followPlayback(runCtx, adapter)
	}
}

// followPlayback toggles playback and redraws the cursor line until the
// audio finishes or the context is cancelled.
func followPlayback(runCtx context.Context, adapter *wave.Adapter) {
	adapter.TogglePlayback()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return
		case <-ticker.C:
			if !adapter.IsPlaying() {
				fmt.Println()
				return
			}
			fmt.Printf("\r▶ %s / %s   ", formatTime(adapter.CurrentTime()), formatTime(adapter.Duration()))
		}
	}
}

func waitReady(runCtx context.Context, adapter *wave.Adapter, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return false
		case <-ticker.C:
			if adapter.IsReady() {
				return true
			}
			if time.Now().After(deadline) {
				return false
			}
		}
	}
}

func saveSession(ctx *commandContext, snap task.Snapshot, name, file string) {
	store, err := history.Open(ctx.cfg.History.Database)
	if err != nil {
		ctx.log.Warn().Err(err).Msg("history unavailable, session not recorded")
		return
	}
	defer store.Close()

	err = store.SaveSession(snap.TaskID, name, file, lastEnd(snap.Results), snap.Results)
	if err != nil {
		ctx.log.Warn().Err(err).Msg("failed to record session")
	}
}

// lastEnd returns the latest segment end, used as the session duration
// when the playback surface is unavailable.
func lastEnd(segs []types.Segment) float64 {
	var end float64
	for _, seg := range segs {
		if seg.End > end {
			end = seg.End
		}
	}
	return end
}
