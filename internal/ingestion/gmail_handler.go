package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoMessages is returned when the subject filter matches nothing
var ErrNoMessages = errors.New("no messages found")

// GmailConfig locates the OAuth files
type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	// PromptAuthCode shows authURL to the user and returns the pasted code.
	// Only called when no cached token exists.
	PromptAuthCode func(authURL string) (string, error)
}

// GmailHandler fetches resume attachments from the recruiter's inbox
type GmailHandler struct {
	service  *gmail.Service
	progress ProgressCallback
}

// NewGmailHandler creates a Gmail handler, running the OAuth consent flow if
// no cached token exists
func NewGmailHandler(ctx context.Context, cfg GmailConfig, progress ProgressCallback) (*GmailHandler, error) {
	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		tok, err = tokenFromWeb(ctx, config, cfg.PromptAuthCode)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenPath, tok); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailHandler{
		service:  srv,
		progress: progress,
	}, nil
}

func tokenFromWeb(ctx context.Context, config *oauth2.Config, prompt func(string) (string, error)) (*oauth2.Token, error) {
	if prompt == nil {
		return nil, errors.New("gmail authorization required but no prompt is available")
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	code, err := prompt(authURL)
	if err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	log.Printf("Saving Gmail credential file to: %s", path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	return nil
}

func (gh *GmailHandler) reportProgress(current, total int, message string) {
	if gh.progress != nil {
		gh.progress(current, total, message)
	}
}

// FetchAttachments downloads resume attachments from messages matching the
// subject into dir and returns the saved paths
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	user := "me"
	r, err := gh.service.Users.Messages.List(user).Q(searchQuery(subject)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}
	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("%w with subject: %s", ErrNoMessages, subject)
	}

	var saved []string
	total := len(r.Messages)
	for i, msg := range r.Messages {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		gh.reportProgress(i, total, fmt.Sprintf("Reading message %d/%d", i+1, total))

		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			log.Printf("Unable to retrieve message %s: %v", msg.Id, err)
			continue
		}

		sender := extractSenderName(message)
		for _, part := range attachmentParts(message.Payload) {
			if !IsSupported(part.Filename) {
				log.Printf("Skipping attachment %s from %s", part.Filename, sender)
				continue
			}

			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				log.Printf("Unable to retrieve attachment: %v", err)
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				log.Printf("Unable to decode attachment: %v", err)
				continue
			}

			filePath := filepath.Join(dir, attachmentFilename(sender, part.Filename))
			if err := os.WriteFile(filePath, data, 0644); err != nil {
				log.Printf("Unable to write file %s: %v", filePath, err)
				continue
			}
			log.Printf("Downloaded: %s", filepath.Base(filePath))
			saved = append(saved, filePath)
		}
	}

	gh.reportProgress(total, total, fmt.Sprintf("Fetched %d attachment(s)", len(saved)))
	return saved, nil
}

func searchQuery(subject string) string {
	return fmt.Sprintf("subject:(%s) has:attachment", strings.TrimSpace(subject))
}

// attachmentParts walks nested multipart payloads and returns parts that carry an attachment
func attachmentParts(part *gmail.MessagePart) []*gmail.MessagePart {
	if part == nil {
		return nil
	}
	var out []*gmail.MessagePart
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, part)
	}
	for _, child := range part.Parts {
		out = append(out, attachmentParts(child)...)
	}
	return out
}

// attachmentFilename prefixes the attachment with the sender so files from
// different applicants don't collide
func attachmentFilename(sender, filename string) string {
	base := filepath.Base(filename)
	if sender == "" || strings.HasPrefix(base, sender+"_") {
		return base
	}
	return sender + "_" + base
}

// extractSenderName extracts the sender's name from email headers
func extractSenderName(message *gmail.Message) string {
	if message == nil || message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// Parse "Name <email@example.com>" format
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				name := strings.Trim(strings.TrimSpace(from[:idx]), `"`)
				return strings.ReplaceAll(name, " ", "")
			}
			// If no name, use email prefix
			if idx := strings.Index(from, "@"); idx > 0 {
				return strings.TrimPrefix(from[:idx], "<")
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
