// Package export writes diarization results to the local filesystem.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dan-lund/diamond/internal/types"
)

// Result is what gets written for one completed session.
type Result struct {
	TaskID      string
	RequestName string
	SourceFile  string
	Duration    float64
	Segments    []types.Segment
}

// Write saves the transcript log and a metadata JSON sidecar under a dated
// directory tree (outputDir/2026/08/31/). Returns the transcript path.
func Write(outputDir string, result Result) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("create date directory: %w", err)
	}

	// Filename: 20260831_143022_interview.txt
	timestamp := now.Format("20060102_150405")
	baseFilename := fmt.Sprintf("%s_%s", timestamp, sanitizeFilename(result.RequestName))

	txtPath := filepath.Join(dateDir, baseFilename+".txt")
	metaPath := filepath.Join(dateDir, baseFilename+"_meta.json")

	if err := os.WriteFile(txtPath, []byte(transcriptText(result.Segments)), 0644); err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}

	metadata := map[string]any{
		"task_id":          result.TaskID,
		"request_name":     result.RequestName,
		"source_file":      result.SourceFile,
		"duration_seconds": result.Duration,
		"segment_count":    len(result.Segments),
		"segments":         result.Segments,
		"created_at":       now,
	}

	metaJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return "", fmt.Errorf("save metadata: %w", err)
	}

	return txtPath, nil
}

// transcriptText renders one line per segment in input order.
func transcriptText(segs []types.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		fmt.Fprintf(&b, "%-16s %8.2fs - %8.2fs\n", strings.ToUpper(seg.Speaker), seg.Start, seg.End)
	}
	return b.String()
}

// sanitizeFilename removes path separators and caps the length.
func sanitizeFilename(name string) string {
	result := filepath.Base(name)
	for _, c := range []string{":", "*", "?", "\"", "<", ">", "|"} {
		result = strings.ReplaceAll(result, c, "_")
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
