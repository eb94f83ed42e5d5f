package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileHandler(t *testing.T) {
	fh := NewFileHandler("test_uploads")
	if fh == nil {
		t.Fatal("Expected non-nil FileHandler")
	}

	if fh.UploadsDir() != "test_uploads" {
		t.Errorf("Expected uploadsDir 'test_uploads', got '%s'", fh.UploadsDir())
	}
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := t.TempDir()
	fh := NewFileHandler(tmpDir)

	path, err := fh.SaveUploadedFile("test_cv.txt", strings.NewReader("Test CV content"))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "test_cv.txt")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "Test CV content" {
		t.Errorf("Expected content 'Test CV content', got '%s'", string(data))
	}
}

func TestSaveUploadedFileStripsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	fh := NewFileHandler(filepath.Join(tmpDir, "staging"))

	path, err := fh.SaveUploadedFile("../../escape.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	if filepath.Dir(path) != filepath.Join(tmpDir, "staging") {
		t.Errorf("File escaped the staging directory: %s", path)
	}

	if _, err := fh.SaveUploadedFile("/", strings.NewReader("x")); err == nil {
		t.Error("Expected error for empty file name")
	}
}

func TestCollectResumes(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"alice.pdf":    "%PDF-1.4 alice",
		"bob.TXT":      "Bob resume",
		"photo.png":    "\x89PNG",
		"notes.md":     "# notes",
		"carla.docx":   "PK",
		"nested/x.pdf": "%PDF-1.4",
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	fh := NewFileHandler(tmpDir)
	got, err := fh.CollectResumes(tmpDir, filepath.Join(tmpDir, "alice.pdf"))
	if err != nil {
		t.Fatalf("CollectResumes failed: %v", err)
	}

	want := []string{"alice.pdf", "bob.TXT", "carla.docx"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d files, got %d: %+v", len(want), len(got), got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("File %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if got[0].ContentType != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", got[0].ContentType)
	}
	if !strings.HasPrefix(got[1].ContentType, "text/plain") {
		t.Errorf("Expected text/plain, got %s", got[1].ContentType)
	}
}

func TestCollectResumesMissingPath(t *testing.T) {
	fh := NewFileHandler(t.TempDir())
	if _, err := fh.CollectResumes(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestStagedResumes(t *testing.T) {
	fh := NewFileHandler(filepath.Join(t.TempDir(), "not-created"))

	got, err := fh.StagedResumes()
	if err != nil {
		t.Fatalf("StagedResumes failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no staged files, got %d", len(got))
	}

	if _, err := fh.SaveUploadedFile("Jane_CV.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	got, err = fh.StagedResumes()
	if err != nil {
		t.Fatalf("StagedResumes failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Jane_CV.pdf" {
		t.Errorf("Unexpected staged files: %+v", got)
	}
}

func TestNewBatchIsolatesUploads(t *testing.T) {
	root := t.TempDir()
	fh := NewFileHandler(root)

	a, err := fh.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	b, err := fh.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}
	if a.UploadsDir() == b.UploadsDir() {
		t.Fatalf("Expected distinct batch directories, got %s twice", a.UploadsDir())
	}
	if filepath.Dir(a.UploadsDir()) != root {
		t.Errorf("Expected batch under %s, got %s", root, a.UploadsDir())
	}

	if _, err := a.SaveUploadedFile("alice.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if _, err := b.SaveUploadedFile("bob.pdf", strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	b.Discard()
	if _, err := os.Stat(b.UploadsDir()); !os.IsNotExist(err) {
		t.Errorf("Expected discarded batch to be removed, stat err = %v", err)
	}

	got, err := a.StagedResumes()
	if err != nil {
		t.Fatalf("StagedResumes failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "alice.pdf" {
		t.Errorf("Unexpected staged files after discarding the other batch: %+v", got)
	}
}

func TestClearUploads(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test"), 0644)

	fh := NewFileHandler(tmpDir)
	if err := fh.ClearUploads(); err != nil {
		t.Fatalf("Failed to clear uploads: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, got %d entries", len(entries))
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cv.pdf", true},
		{"CV.PDF", true},
		{"cv.doc", true},
		{"cv.docx", true},
		{"cv.txt", true},
		{"cv.rtf", false},
		{"cv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupported(tt.name); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
