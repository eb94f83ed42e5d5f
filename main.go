package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atssight/recruiter-desk/internal/api"
	"github.com/atssight/recruiter-desk/internal/auth"
	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/config"
	"github.com/atssight/recruiter-desk/internal/dashboard"
	"github.com/atssight/recruiter-desk/internal/gui"
	"github.com/atssight/recruiter-desk/internal/ingestion"
)

func main() {
	headless := flag.Bool("headless", false, "serve the local HTTP API instead of opening the desktop app")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	session, err := auth.LoadSession(cfg.TokenPath)
	if err != nil {
		log.Printf("Failed to load session, starting signed out: %v", err)
		session = auth.NewSession(cfg.TokenPath)
	}

	client := backend.NewClient(cfg.BaseURL, session, backend.WithUploadTimeout(cfg.UploadTimeout.Duration))
	fileHandler := ingestion.NewFileHandler(cfg.UploadsDir)
	// Batches left behind by an interrupted run
	if err := fileHandler.ClearUploads(); err != nil {
		log.Printf("Warning: %v", err)
	}
	dash := dashboard.New(client, fileHandler, dashboard.Settings{ReportTimeout: cfg.ReportTimeout.Duration})
	session.OnAuthFailure(dash.HandleSessionExpired)

	if *headless {
		if err := serve(cfg, session, dash); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	gui.NewApp(gui.Deps{
		Config:    cfg,
		Session:   session,
		Client:    client,
		Dashboard: dash,
	}).Run()
}

// serve runs the local API until SIGINT or SIGTERM
func serve(cfg *config.Config, session *auth.Session, dash *dashboard.Dashboard) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := api.Options{
		Session:    session,
		ExportTopN: cfg.ExportTopN,
	}
	if cfg.GmailEnabled() {
		gh, err := ingestion.NewGmailHandler(ctx, ingestion.GmailConfig{
			CredentialsPath: cfg.GmailCredentialsPath,
			TokenPath:       cfg.GmailTokenPath,
			PromptAuthCode:  promptStdin,
		}, func(current, total int, message string) {
			log.Printf("Gmail [%d/%d] %s", current, total, message)
		})
		if err != nil {
			log.Printf("Gmail ingestion disabled: %v", err)
		} else {
			opts.Fetcher = gh
		}
	}

	server := api.NewServer(dash, opts)
	defer server.Close()

	if session.Authenticated() {
		if err := dash.Refresh(ctx); err != nil {
			log.Printf("Initial refresh failed: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting ATSSight recruiter API on %s (backend %s)", cfg.ListenAddr, cfg.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// promptStdin runs the Gmail consent step on the terminal
func promptStdin(authURL string) (string, error) {
	fmt.Printf("Go to the following link in your browser, then type the authorization code:\n%v\n", authURL)
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && code == "" {
		return "", fmt.Errorf("unable to read authorization code: %w", err)
	}
	return strings.TrimSpace(code), nil
}
