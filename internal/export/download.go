package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atssight/recruiter-desk/internal/models"
)

// SaveDownload writes a backend payload into dir under its own file name and
// returns the path written
func SaveDownload(dir string, d *models.Download) (string, error) {
	if d == nil {
		return "", fmt.Errorf("nothing to save")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(d.Filename))
	if err := os.WriteFile(path, d.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// SanitizeFilename strips directories and characters that are invalid on
// common filesystems
func SanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return '_'
		}
		if r < 32 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "/" || name == "." {
		return "download"
	}
	return name
}
