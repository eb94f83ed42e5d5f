package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/atssight/recruiter-desk/internal/auth"
	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/dashboard"
)

// Options configures the local API
type Options struct {
	// Session reports login state on /health; optional
	Session *auth.Session
	// Fetcher enables POST /leaderboards/gmail when set
	Fetcher dashboard.AttachmentFetcher
	// ExportTopN is the CSV export default when the request has no topN
	ExportTopN int
	// AllowedOrigins for CORS; defaults to localhost dev servers
	AllowedOrigins []string
}

// Server exposes the dashboard over HTTP for scripts and browser front ends
type Server struct {
	dash        *dashboard.Dashboard
	opts        Options
	hub         *Hub
	unsubscribe func()
}

// NewServer creates a new API server and starts relaying dashboard events
// to websocket clients
func NewServer(dash *dashboard.Dashboard, opts Options) *Server {
	if opts.ExportTopN <= 0 {
		opts.ExportTopN = backend.DefaultExportTopN
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	hub := NewHub()
	return &Server{
		dash:        dash,
		opts:        opts,
		hub:         hub,
		unsubscribe: dash.Subscribe(hub.Broadcast),
	}
}

// Close stops event relaying and disconnects websocket clients
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	lb := r.PathPrefix("/leaderboards").Subrouter()
	lb.HandleFunc("", s.handleListLeaderboards).Methods(http.MethodGet)
	lb.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	lb.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	lb.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	lb.HandleFunc("/gmail", s.handleGmail).Methods(http.MethodPost)
	lb.HandleFunc("/{id:[0-9]+}", s.handleGetLeaderboard).Methods(http.MethodGet)
	lb.HandleFunc("/{id:[0-9]+}", s.handleDeleteLeaderboard).Methods(http.MethodDelete)
	lb.HandleFunc("/{id:[0-9]+}/select", s.handleSelectLeaderboard).Methods(http.MethodPost)
	lb.HandleFunc("/{id:[0-9]+}/refresh", s.handleRefreshLeaderboard).Methods(http.MethodPost)
	lb.HandleFunc("/{id:[0-9]+}/entries", s.handleEntries).Methods(http.MethodGet)
	lb.HandleFunc("/{id:[0-9]+}/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
	lb.HandleFunc("/{id:[0-9]+}/export.csv", s.handleExportCSV).Methods(http.MethodGet)

	e := r.PathPrefix("/entries/{id:[0-9]+}").Subrouter()
	e.HandleFunc("/select", s.handleSelectCandidate).Methods(http.MethodPost)
	e.HandleFunc("/favorite", s.handleToggleFavorite).Methods(http.MethodPost)
	e.HandleFunc("/notes", s.handleUpdateNotes).Methods(http.MethodPut)
	e.HandleFunc("/interview", s.handleInterview).Methods(http.MethodGet)
	e.HandleFunc("/report.pdf", s.handleReportPDF).Methods(http.MethodGet)
	e.HandleFunc("/resume", s.handleResume).Methods(http.MethodGet)

	r.HandleFunc("/detail", s.handleDetail).Methods(http.MethodGet)
	r.HandleFunc("/detail", s.handleClearDetail).Methods(http.MethodDelete)

	r.Use(loggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "ATSSight Recruiter Desk",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"GET /leaderboards":                  "List loaded leaderboards",
			"POST /leaderboards/refresh":         "Reload leaderboards from the backend",
			"POST /leaderboards/upload":          "Bulk upload resumes and a job description",
			"GET /leaderboards/{id}/entries":     "Filtered, sorted entries (search, favorites)",
			"GET /leaderboards/{id}/export.xlsx": "Excel export of the current view",
			"GET /leaderboards/{id}/export.csv":  "Backend CSV export (topN)",
			"POST /leaderboards/{id}/refresh":    "Reload one leaderboard",
			"DELETE /leaderboards/{id}":          "Delete a leaderboard",
			"POST /entries/{id}/select":          "Open a candidate and load the report",
			"POST /entries/{id}/favorite":        "Toggle favorite",
			"PUT /entries/{id}/notes":            "Save recruiter notes",
			"GET /entries/{id}/interview":        "Interview guide for a loaded report",
			"GET /detail":                        "Current candidate detail",
			"GET /events":                        "Websocket stream of dashboard changes",
			"GET /health":                        "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "healthy"}
	if s.opts.Session != nil {
		resp["authenticated"] = s.opts.Session.Authenticated()
		resp["role"] = s.opts.Session.Role()
	}
	respondJSON(w, http.StatusOK, resp)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondErr maps dashboard and backend errors onto status codes
func respondErr(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, backend.UserMessage(err))
	case errors.As(err, &apiErr):
		respondError(w, http.StatusBadGateway, apiErr.Message())
	case errors.Is(err, backend.ErrNetwork):
		respondError(w, http.StatusServiceUnavailable, backend.UserMessage(err))
	case errors.Is(err, backend.ErrNoResumes), errors.Is(err, backend.ErrNoJobDescription):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrLeaderboardNotFound), errors.Is(err, dashboard.ErrEntryNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s %d %s", r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
