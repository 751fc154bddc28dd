// Package cleanup reaps stale temporary uploads.
package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler periodically removes aged files from a temp directory.
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger
	stopChan chan struct{}
}

// NewScheduler creates a cleanup scheduler for tempDir.
func NewScheduler(tempDir string, interval, maxAge time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		tempDir:  tempDir,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start runs one immediate sweep and then sweeps on the interval until
// Stop is called.
func (s *Scheduler) Start() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	s.log.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).
		Msg("cleanup scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// sweep removes files older than maxAge from the temp directory.
func (s *Scheduler) sweep() {
	now := time.Now()
	var deleted int

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("failed to delete stale upload")
			return nil
		}
		deleted++
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("cleanup sweep failed")
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("cleanup sweep complete")
	}
}

// EnsureDir creates the temp directory if it does not exist.
func EnsureDir(tempDir string) error {
	return os.MkdirAll(tempDir, 0755)
}
