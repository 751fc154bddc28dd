// Package mockapi is a local stand-in for the remote diarization backend.
// It implements the backend's HTTP contract with simulated processing so
// the client can be exercised end to end without the real service.
package mockapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dan-lund/diamond/internal/audiofile"
)

// Options configures the mock backend.
type Options struct {
	// TempDir receives uploads until processing removes them.
	TempDir string
	// BankDir is scanned for *.npy files; their basenames become the
	// enrolled speaker identities, as in the reference backend.
	BankDir string
	// ProcessingDelay is how long a task stays in "processing".
	ProcessingDelay time.Duration
	// Workers is the processing pool size.
	Workers int
}

// New builds the fiber application serving the diarization contract.
func New(opts Options, log zerolog.Logger) (*fiber.App, error) {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if err := os.MkdirAll(opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	store := newResultStore()
	pool := newWorkerPool(opts.Workers, store, opts.ProcessingDelay, log)

	app := fiber.New(fiber.Config{
		BodyLimit:             100 * 1024 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Starts a diarization task for an uploaded audio file.
	app.Post("/diarize/", func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No file uploaded",
			})
		}
		if !audiofile.ValidFormat(file.Filename) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unsupported audio format",
			})
		}

		taskID := uuid.New().String()
		tempPath := filepath.Join(opts.TempDir, fmt.Sprintf("%s%s", taskID, filepath.Ext(file.Filename)))
		if err := c.SaveFile(file, tempPath); err != nil {
			log.Error().Err(err).Msg("failed to save upload")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save file",
			})
		}

		pool.enqueue(&job{TaskID: taskID, FilePath: tempPath})
		return c.JSON(fiber.Map{
			"task_id": taskID,
			"message": "Processing started",
		})
	})

	// Returns the status of a diarization task.
	app.Get("/status/:task_id", func(c *fiber.Ctx) error {
		rec, ok := store.get(c.Params("task_id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invalid Task ID",
			})
		}
		return c.JSON(rec)
	})

	// Returns a list of all enrolled speaker names.
	app.Get("/speakers", func(c *fiber.Ctx) error {
		speakers := loadSpeakerBank(opts.BankDir)
		return c.JSON(fiber.Map{
			"speakers": speakers,
			"total":    len(speakers),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	return app, nil
}

// loadSpeakerBank lists enrolled identities from the embedding files in
// bankDir. A missing directory is an empty bank.
func loadSpeakerBank(bankDir string) []string {
	speakers := []string{}
	entries, err := os.ReadDir(bankDir)
	if err != nil {
		return speakers
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".npy") {
			continue
		}
		speakers = append(speakers, strings.TrimSuffix(entry.Name(), ".npy"))
	}
	return speakers
}
