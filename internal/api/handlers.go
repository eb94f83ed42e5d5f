package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/export"
	"github.com/atssight/recruiter-desk/internal/ingestion"
	"github.com/atssight/recruiter-desk/internal/leaderboard"
	"github.com/atssight/recruiter-desk/internal/models"
)

const (
	maxUploadMemory = 32 << 20 // 32 MB
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type leaderboardItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	CreatedAt  string `json:"createdAt"`
	Candidates int    `json:"candidates"`
	Favorites  int    `json:"favorites"`
}

type entryView struct {
	models.CandidateEntry
	Badge string `json:"badge"`
	Band  string `json:"band"`
}

func toItems(boards []models.Leaderboard) []leaderboardItem {
	items := make([]leaderboardItem, 0, len(boards))
	for _, lb := range boards {
		items = append(items, leaderboardItem{
			ID:         lb.ID,
			Title:      lb.Title(),
			CreatedAt:  lb.CreatedAt,
			Candidates: len(lb.Entries),
			Favorites:  lb.FavoriteCount(),
		})
	}
	return items
}

func (s *Server) handleListLeaderboards(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toItems(s.dash.Leaderboards()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.dash.Refresh(r.Context()); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toItems(s.dash.Leaderboards()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.Summary())
}

func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	lb, err := s.dash.Leaderboard(id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lb)
}

func (s *Server) handleSelectLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	if err := s.dash.SelectLeaderboard(id); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"selected": id})
}

func (s *Server) handleRefreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	lb, err := s.dash.RefreshLeaderboard(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lb)
}

func (s *Server) handleDeleteLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	navigate, err := s.dash.DeleteLeaderboard(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true, "navigateToList": navigate})
}

// viewFor loads a leaderboard and applies the search and favorites query
func (s *Server) viewFor(r *http.Request, id int64) (models.Leaderboard, []models.CandidateEntry, error) {
	lb, err := s.dash.Leaderboard(id)
	if err != nil {
		return models.Leaderboard{}, nil, err
	}
	q := r.URL.Query()
	favoritesOnly, _ := strconv.ParseBool(q.Get("favorites"))
	return lb, leaderboard.View(lb.Entries, q.Get("search"), favoritesOnly), nil
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	_, entries, err := s.viewFor(r, id)
	if err != nil {
		respondErr(w, err)
		return
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			CandidateEntry: e,
			Badge:          leaderboard.RankBadge(e.RankPosition),
			Band:           leaderboard.ScoreBand(e.MatchScore),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	lb, entries, err := s.viewFor(r, id)
	if err != nil {
		respondErr(w, err)
		return
	}

	tmpDir, err := os.MkdirTemp("", "atssight-export-*")
	if err != nil {
		respondErr(w, fmt.Errorf("failed to create temp dir: %w", err))
		return
	}
	defer os.RemoveAll(tmpDir)

	name := fmt.Sprintf("leaderboard_%d.xlsx", lb.ID)
	path, err := export.ExportToExcel(lb, entries, filepath.Join(tmpDir, name))
	if err != nil {
		respondErr(w, err)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		respondErr(w, fmt.Errorf("failed to read export: %w", err))
		return
	}
	writeDownload(w, &models.Download{Filename: name, ContentType: xlsxContentType, Data: data})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid leaderboard id")
		return
	}
	topN := s.opts.ExportTopN
	if v := r.URL.Query().Get("topN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "topN must be a positive integer")
			return
		}
		topN = n
	}
	d, err := s.dash.ExportCSV(r.Context(), id, topN)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeDownload(w, d)
}

// handleUpload stages the multipart files and forwards them as one bulk upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	fh := s.dash.FileHandler
	if fh == nil {
		respondError(w, http.StatusInternalServerError, "no staging directory configured")
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	batch, err := fh.NewBatch()
	if err != nil {
		respondErr(w, err)
		return
	}
	defer batch.Discard()

	var saved []string
	for _, header := range r.MultipartForm.File["resumes"] {
		if !ingestion.IsSupported(header.Filename) {
			log.Printf("Skipping unsupported file type: %s", header.Filename)
			continue
		}
		file, err := header.Open()
		if err != nil {
			respondErr(w, fmt.Errorf("failed to open uploaded file: %w", err))
			return
		}
		path, err := batch.SaveUploadedFile(header.Filename, file)
		file.Close()
		if err != nil {
			respondErr(w, fmt.Errorf("failed to save file %s: %w", header.Filename, err))
			return
		}
		saved = append(saved, path)
	}

	req := models.BulkUpload{
		JDText:  r.FormValue("jdText"),
		JDTitle: r.FormValue("jdTitle"),
	}
	if len(saved) > 0 {
		resumes, err := batch.CollectResumes(saved...)
		if err != nil {
			respondErr(w, err)
			return
		}
		req.Resumes = resumes
	}

	if headers := r.MultipartForm.File["jd"]; len(headers) > 0 {
		jdDir, err := os.MkdirTemp("", "atssight-jd-*")
		if err != nil {
			respondErr(w, fmt.Errorf("failed to create temp dir: %w", err))
			return
		}
		defer os.RemoveAll(jdDir)

		jd, err := stageFile(jdDir, headers[0])
		if err != nil {
			respondErr(w, err)
			return
		}
		req.JDFile = jd
	}

	lb, err := s.dash.BulkUpload(r.Context(), req)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, lb)
}

// stageFile copies one multipart file into dir
func stageFile(dir string, header *multipart.FileHeader) (*models.UploadFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := export.SanitizeFilename(header.Filename)
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return &models.UploadFile{Name: name, Path: path, ContentType: backend.DetectContentType(path)}, nil
}

type gmailRequest struct {
	Subject string `json:"subject"`
	JDText  string `json:"jdText"`
	JDTitle string `json:"jdTitle"`
}

func (s *Server) handleGmail(w http.ResponseWriter, r *http.Request) {
	if s.opts.Fetcher == nil {
		respondError(w, http.StatusNotImplemented, "Gmail ingestion is not configured")
		return
	}

	var req gmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		respondError(w, http.StatusBadRequest, "subject is required")
		return
	}

	lb, err := s.dash.IngestFromGmail(r.Context(), s.opts.Fetcher, req.Subject, models.BulkUpload{
		JDText:  req.JDText,
		JDTitle: req.JDTitle,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, lb)
}

func (s *Server) handleSelectCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	detail, err := s.dash.SelectCandidate(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.dash.Detail())
}

func (s *Server) handleClearDetail(w http.ResponseWriter, r *http.Request) {
	s.dash.ClearCandidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	entry, err := s.dash.ToggleFavorite(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == nil {
		respondError(w, http.StatusBadRequest, `body must be {"notes": "..."}`)
		return
	}
	entry, err := s.dash.UpdateNotes(r.Context(), id, *req.Notes)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleInterview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	guide, ok := s.dash.InterviewGuide(id)
	if !ok {
		respondError(w, http.StatusConflict, "select the candidate and load the report first")
		return
	}
	respondJSON(w, http.StatusOK, guide)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	d, err := s.dash.DownloadReportPDF(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeDownload(w, d)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	d, err := s.dash.DownloadResume(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeDownload(w, d)
}

func writeDownload(w http.ResponseWriter, d *models.Download) {
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.SanitizeFilename(d.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(d.Data); err != nil {
		log.Printf("Failed to write download %s: %v", d.Filename, err)
	}
}
