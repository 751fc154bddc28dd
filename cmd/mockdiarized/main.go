// mockdiarized is a local stand-in for the remote diarization backend. It
// serves the same HTTP contract with simulated processing, so the diamond
// client can be developed and demoed without the real service.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dan-lund/diamond/internal/cleanup"
	"github.com/dan-lund/diamond/internal/logging"
	"github.com/dan-lund/diamond/internal/mockapi"
)

func main() {
	var (
		addr     = flag.String("addr", ":8000", "listen address")
		tempDir  = flag.String("temp-dir", "temp", "directory for in-flight uploads")
		bankDir  = flag.String("bank-dir", "embeddings", "speaker bank directory (*.npy)")
		delay    = flag.Duration("delay", 6*time.Second, "simulated processing time per upload")
		workers  = flag.Int("workers", 2, "processing pool size")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log := logging.NewDefault(*logLevel)

	if err := cleanup.EnsureDir(*tempDir); err != nil {
		log.Fatal().Err(err).Msg("failed to create temp directory")
	}

	reaper := cleanup.NewScheduler(*tempDir, 15*time.Minute, time.Hour, log)
	reaper.Start()
	defer reaper.Stop()

	app, err := mockapi.New(mockapi.Options{
		TempDir:         *tempDir,
		BankDir:         *bankDir,
		ProcessingDelay: *delay,
		Workers:         *workers,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build mock backend")
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("addr", *addr).Msg("mock diarization backend listening")
	if err := app.Listen(*addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
