package gui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/atssight/recruiter-desk/internal/auth"
	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/config"
)

// createSettingsTab creates the settings and sign-in tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	a.accountLabel = widget.NewLabel("")
	a.renderAccount()

	tokenEntry := widget.NewPasswordEntry()
	tokenEntry.SetPlaceHolder("Paste the bearer token issued by ATSSight")

	signInBtn := widget.NewButton("Sign In", func() {
		token := strings.TrimSpace(tokenEntry.Text)
		if token == "" {
			dialog.ShowError(fmt.Errorf("please paste a token"), a.mainWindow)
			return
		}
		if err := a.signIn(token); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		tokenEntry.SetText("")
		a.renderAccount()
		a.refresh()
		a.tabs.Select(a.listTab)
	})
	signOutBtn := widget.NewButton("Sign Out", func() {
		if err := a.session.Clear(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.dash.HandleSessionExpired()
	})

	baseURLEntry := widget.NewEntry()
	baseURLEntry.SetText(a.config.BaseURL)
	downloadsEntry := widget.NewEntry()
	downloadsEntry.SetText(a.config.DownloadsDir)
	uploadTimeoutEntry := widget.NewEntry()
	uploadTimeoutEntry.SetText(a.config.UploadTimeout.String())
	reportTimeoutEntry := widget.NewEntry()
	reportTimeoutEntry.SetText(a.config.ReportTimeout.String())
	topNEntry := widget.NewEntry()
	topNEntry.SetText(strconv.Itoa(a.config.ExportTopN))
	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Backend URL", baseURLEntry),
		widget.NewFormItem("Downloads Folder", downloadsEntry),
		widget.NewFormItem("Upload Timeout", uploadTimeoutEntry),
		widget.NewFormItem("Report Timeout", reportTimeoutEntry),
		widget.NewFormItem("CSV Top N", topNEntry),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
	)

	readForm := func() (*config.Config, error) {
		cfg := *a.config
		cfg.BaseURL = strings.TrimSpace(baseURLEntry.Text)
		cfg.DownloadsDir = strings.TrimSpace(downloadsEntry.Text)
		cfg.GmailCredentialsPath = strings.TrimSpace(gmailCredsEntry.Text)

		upload, err := time.ParseDuration(strings.TrimSpace(uploadTimeoutEntry.Text))
		if err != nil {
			return nil, fmt.Errorf("invalid upload timeout: %w", err)
		}
		report, err := time.ParseDuration(strings.TrimSpace(reportTimeoutEntry.Text))
		if err != nil {
			return nil, fmt.Errorf("invalid report timeout: %w", err)
		}
		topN, err := strconv.Atoi(strings.TrimSpace(topNEntry.Text))
		if err != nil {
			return nil, fmt.Errorf("invalid top N: %w", err)
		}
		cfg.UploadTimeout = config.Duration{Duration: upload}
		cfg.ReportTimeout = config.Duration{Duration: report}
		cfg.ExportTopN = topN
		return &cfg, cfg.Validate()
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		cfg, err := readForm()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if err := cfg.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		restart := cfg.BaseURL != a.config.BaseURL || cfg.UploadTimeout != a.config.UploadTimeout || cfg.ReportTimeout != a.config.ReportTimeout
		*a.config = *cfg
		msg := "Settings saved successfully"
		if restart {
			msg += "\nRestart the app to apply connection changes."
		}
		dialog.ShowInformation("Success", msg, a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			status, err := a.client.Health(ctx)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("%s", backend.UserMessage(err)), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", "Backend is reachable: "+status, a.mainWindow)
			})
		}()
	})

	return container.NewVScroll(container.NewVBox(
		widget.NewLabel("Account"),
		a.accountLabel,
		container.NewBorder(nil, nil, nil, container.NewHBox(signInBtn, signOutBtn), tokenEntry),
		widget.NewSeparator(),
		widget.NewLabel("Settings"),
		form,
		container.NewHBox(saveBtn, testBtn),
	))
}

// signIn stores a pasted token, taking the role from its claims
func (a *App) signIn(token string) error {
	probe := auth.NewSession("")
	if err := probe.Set(token, ""); err != nil {
		return err
	}
	role := ""
	if claims, err := probe.Claims(); err == nil {
		if probe.Expired(time.Now()) {
			return fmt.Errorf("this token expired, please request a new one")
		}
		role = claims.Role
	}
	return a.session.Set(token, role)
}

func (a *App) renderAccount() {
	if !a.session.Authenticated() {
		a.accountLabel.SetText("Not signed in")
		return
	}
	text := "Signed in (" + auth.Redact(a.session.Token()) + ")"
	if claims, err := a.session.Claims(); err == nil && claims.Email != "" {
		text = "Signed in as " + claims.Email
	}
	if role := a.session.Role(); role != "" {
		text += " · " + role
	}
	a.accountLabel.SetText(text)
}
