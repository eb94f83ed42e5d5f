package ingestion

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/atssight/recruiter-desk/internal/models"
)

// ProgressCallback is called to report progress while staging files
type ProgressCallback func(current, total int, message string)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// IsSupported reports whether the backend accepts files with this name as resumes
func IsSupported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// FileHandler stages resume files before they are sent in a bulk upload
type FileHandler struct {
	uploadsDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
	}
}

// UploadsDir returns the staging directory
func (fh *FileHandler) UploadsDir() string {
	return fh.uploadsDir
}

// SaveUploadedFile saves an uploaded file to the staging directory
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	filePath := filepath.Join(fh.uploadsDir, name)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// CollectResumes turns files and directories into upload parts. Directories
// are read one level deep; unsupported files are skipped with a log line.
// The result is sorted by path so uploads are reproducible.
func (fh *FileHandler) CollectResumes(paths ...string) ([]models.UploadFile, error) {
	var files []models.UploadFile
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if !IsSupported(path) {
			log.Printf("Skipping unsupported file type: %s", filepath.Base(path))
			return
		}
		files = append(files, models.UploadFile{
			Name:        filepath.Base(path),
			Path:        path,
			ContentType: detectContentType(path),
		})
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			add(filepath.Join(p, e.Name()))
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// StagedResumes returns the supported files currently in the staging directory
func (fh *FileHandler) StagedResumes() ([]models.UploadFile, error) {
	if _, err := os.Stat(fh.uploadsDir); os.IsNotExist(err) {
		return []models.UploadFile{}, nil
	}
	return fh.CollectResumes(fh.uploadsDir)
}

// NewBatch creates a private staging subdirectory for one upload, so
// concurrent uploads never see or remove each other's files. Call Discard
// on the batch once the upload has been sent.
func (fh *FileHandler) NewBatch() (*FileHandler, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	dir, err := os.MkdirTemp(fh.uploadsDir, "batch-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging batch: %w", err)
	}
	return NewFileHandler(dir), nil
}

// Discard removes the staging directory and everything in it
func (fh *FileHandler) Discard() {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		log.Printf("Warning: failed to remove %s: %v", fh.uploadsDir, err)
	}
}

// ClearUploads removes all files from the staging directory
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0755)
}

func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
