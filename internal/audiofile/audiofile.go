// Package audiofile validates audio inputs before they reach the network.
package audiofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var supportedFormats = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".wma"}

// ValidFormat checks if the file extension is a supported audio format.
func ValidFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// Check verifies the path exists, is a regular file, and carries a
// supported audio extension.
func Check(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio file: %s is a directory", path)
	}
	if !ValidFormat(path) {
		return fmt.Errorf("unsupported audio format %q (supported: %s)",
			filepath.Ext(path), strings.Join(supportedFormats, ", "))
	}
	return nil
}
