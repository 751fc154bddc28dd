package mockapi

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/dan-lund/diamond/internal/types"
)

// job is one queued diarization request.
type job struct {
	TaskID   string
	FilePath string
}

// workerPool processes queued uploads, simulating diarization with a
// configurable delay.
type workerPool struct {
	jobQueue chan *job
	store    *resultStore
	delay    time.Duration
	log      zerolog.Logger
}

func newWorkerPool(workers int, store *resultStore, delay time.Duration, log zerolog.Logger) *workerPool {
	wp := &workerPool{
		jobQueue: make(chan *job, 100),
		store:    store,
		delay:    delay,
		log:      log,
	}
	for i := 0; i < workers; i++ {
		go wp.worker(i)
	}
	return wp
}

func (wp *workerPool) enqueue(j *job) {
	wp.store.setProcessing(j.TaskID)
	wp.jobQueue <- j
}

func (wp *workerPool) worker(id int) {
	for j := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.log.Error().Str("task_id", j.TaskID).
						Msgf("worker %d panic: %v\n%s", id, r, string(debug.Stack()))
					wp.store.setFailed(j.TaskID)
					wp.removeUpload(j.FilePath)
				}
			}()
			wp.process(id, j)
		}()
	}
}

func (wp *workerPool) process(id int, j *job) {
	wp.log.Info().Int("worker", id).Str("task_id", j.TaskID).Msg("processing upload")
	time.Sleep(wp.delay)

	segments, err := fakeDiarize(j.FilePath)
	if err != nil {
		wp.log.Error().Err(err).Str("task_id", j.TaskID).Msg("simulated diarization failed")
		wp.store.setFailed(j.TaskID)
		wp.removeUpload(j.FilePath)
		return
	}

	wp.store.setCompleted(j.TaskID, segments)
	wp.removeUpload(j.FilePath)
	wp.log.Info().Int("worker", id).Str("task_id", j.TaskID).
		Int("segments", len(segments)).Msg("upload processed")
}

func (wp *workerPool) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		wp.log.Warn().Err(err).Str("path", path).Msg("failed to remove upload")
	}
}

// fakeDiarize fabricates a plausible segment list from the upload size:
// alternating speakers over contiguous 2.5 second turns.
func fakeDiarize(path string) ([]types.Segment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}

	turns := int(info.Size()/4096)%6 + 2
	speakers := 2 + int(info.Size())%2

	segments := make([]types.Segment, 0, turns)
	const turnLen = 2.5
	for i := 0; i < turns; i++ {
		segments = append(segments, types.Segment{
			Speaker: fmt.Sprintf("SPEAKER_%02d", i%speakers),
			Start:   float64(i) * turnLen,
			End:     float64(i+1) * turnLen,
		})
	}
	return segments, nil
}
