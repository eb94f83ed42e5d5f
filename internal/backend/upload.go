package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/atssight/recruiter-desk/internal/models"
)

var (
	// ErrNoResumes is returned when a bulk upload carries no resume files
	ErrNoResumes = errors.New("at least one resume is required")
	// ErrNoJobDescription is returned when neither a JD file nor JD text is set
	ErrNoJobDescription = errors.New("a job description file or text is required")
)

// ValidateBulkUpload checks the request before anything is sent
func ValidateBulkUpload(req models.BulkUpload) error {
	if len(req.Resumes) == 0 {
		return ErrNoResumes
	}
	if !req.HasJobDescription() {
		return ErrNoJobDescription
	}
	return nil
}

// BulkUpload sends resumes and a JD as one multipart request and returns the
// leaderboard the backend created. The request is bounded by the upload timeout.
func (c *Client) BulkUpload(ctx context.Context, req models.BulkUpload) (*models.Leaderboard, error) {
	if err := ValidateBulkUpload(req); err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range req.Resumes {
		if err := writeFilePart(writer, "resumes", f); err != nil {
			return nil, err
		}
	}
	if req.JDFile != nil {
		if err := writeFilePart(writer, "jd", *req.JDFile); err != nil {
			return nil, err
		}
	}
	if text := strings.TrimSpace(req.JDText); text != "" {
		if err := writer.WriteField("jdText", req.JDText); err != nil {
			return nil, fmt.Errorf("failed to write jdText field: %w", err)
		}
	}
	if title := strings.TrimSpace(req.JDTitle); title != "" {
		if err := writer.WriteField("jdTitle", title); err != nil {
			return nil, fmt.Errorf("failed to write jdTitle field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	log.Printf("Uploading %d resume(s), %d bytes", len(req.Resumes), body.Len())

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, apiPrefix+"/bulk-upload", body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var lb models.Leaderboard
	if err := decode(resp, &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

func writeFilePart(w *multipart.Writer, field string, f models.UploadFile) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = DetectContentType(f.Path)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", name, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// DetectContentType sniffs a file's MIME type, defaulting to octet-stream
func DetectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
