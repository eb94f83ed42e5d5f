package gui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/ingestion"
	"github.com/atssight/recruiter-desk/internal/models"
)

// createUploadTab builds the bulk upload form
func (a *App) createUploadTab() fyne.CanvasObject {
	a.resumesLabel = widget.NewLabel("No resumes selected")
	addFileBtn := widget.NewButton("Add Resume...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			a.resumePaths = append(a.resumePaths, uc.URI().Path())
			uc.Close()
			a.renderResumes()
		}, a.mainWindow)
	})
	addFolderBtn := widget.NewButton("Add Folder...", func() {
		dialog.ShowFolderOpen(func(lu fyne.ListableURI, err error) {
			if err != nil || lu == nil {
				return
			}
			a.resumePaths = append(a.resumePaths, lu.Path())
			a.renderResumes()
		}, a.mainWindow)
	})
	clearBtn := widget.NewButton("Clear", func() {
		a.resumePaths = nil
		a.renderResumes()
	})

	a.jdFileLabel = widget.NewLabel("No JD file")
	jdFileBtn := widget.NewButton("Choose JD File...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil || uc == nil {
				return
			}
			a.jdFilePath = uc.URI().Path()
			uc.Close()
			a.jdFileLabel.SetText(filepath.Base(a.jdFilePath))
		}, a.mainWindow)
	})

	a.jdTitleEntry = widget.NewEntry()
	a.jdTitleEntry.SetPlaceHolder("e.g., Senior Go Engineer")
	a.jdTextEntry = widget.NewMultiLineEntry()
	a.jdTextEntry.SetPlaceHolder("Paste the job description, or choose a JD file above")
	a.jdTextEntry.SetMinRowsVisible(8)

	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("e.g., Application for Go Engineer")

	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.uploadBtn = widget.NewButton("Upload && Rank", a.handleUpload)
	a.gmailBtn = widget.NewButton("Fetch from Gmail && Rank", a.handleGmail)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	resumes := container.NewVBox(
		widget.NewLabel("Resumes (.pdf, .doc, .docx, .txt)"),
		container.NewHBox(addFileBtn, addFolderBtn, clearBtn),
		a.resumesLabel,
	)
	jd := widget.NewForm(
		widget.NewFormItem("JD Title", a.jdTitleEntry),
		widget.NewFormItem("JD File", container.NewBorder(nil, nil, nil, jdFileBtn, a.jdFileLabel)),
		widget.NewFormItem("JD Text", a.jdTextEntry),
	)
	gmail := container.NewVBox(
		widget.NewLabel("Gmail"),
		widget.NewForm(widget.NewFormItem("Subject Filter", a.subjectEntry)),
	)
	progress := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.uploadBtn, a.gmailBtn, a.cancelBtn),
	)

	return container.NewVScroll(container.NewVBox(
		resumes,
		widget.NewSeparator(),
		widget.NewLabel("Job Description"),
		jd,
		widget.NewSeparator(),
		gmail,
		widget.NewSeparator(),
		progress,
	))
}

func (a *App) renderResumes() {
	if len(a.resumePaths) == 0 {
		a.resumesLabel.SetText("No resumes selected")
		return
	}
	names := make([]string, 0, len(a.resumePaths))
	for _, p := range a.resumePaths {
		names = append(names, filepath.Base(p))
	}
	a.resumesLabel.SetText(strings.Join(names, ", "))
}

// jobDescription builds the JD half of a bulk upload from the form
func (a *App) jobDescription() (models.BulkUpload, error) {
	req := models.BulkUpload{
		JDText:  a.jdTextEntry.Text,
		JDTitle: a.jdTitleEntry.Text,
	}
	if a.jdFilePath != "" {
		req.JDFile = &models.UploadFile{
			Name:        filepath.Base(a.jdFilePath),
			Path:        a.jdFilePath,
			ContentType: backend.DetectContentType(a.jdFilePath),
		}
	}
	if !req.HasJobDescription() {
		return req, backend.ErrNoJobDescription
	}
	return req, nil
}

func (a *App) handleUpload() {
	req, err := a.jobDescription()
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	resumes, err := a.dash.FileHandler.CollectResumes(a.resumePaths...)
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	req.Resumes = resumes
	if err := backend.ValidateBulkUpload(req); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	a.runIngest(func(ctx context.Context) (*models.Leaderboard, error) {
		return a.dash.BulkUpload(ctx, req)
	})
}

func (a *App) handleGmail() {
	subject := strings.TrimSpace(a.subjectEntry.Text)
	if subject == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}
	if !a.config.GmailEnabled() {
		dialog.ShowError(fmt.Errorf("gmail credentials are not configured. Please set them in Settings"), a.mainWindow)
		return
	}
	jd, err := a.jobDescription()
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}

	a.runIngest(func(ctx context.Context) (*models.Leaderboard, error) {
		gh, err := ingestion.NewGmailHandler(ctx, ingestion.GmailConfig{
			CredentialsPath: a.config.GmailCredentialsPath,
			TokenPath:       a.config.GmailTokenPath,
			PromptAuthCode:  a.promptAuthCode,
		}, func(current, total int, message string) {
			fyne.Do(func() {
				a.progressBar.SetValue(float64(current) / float64(total))
				a.progressLabel.SetText(message)
			})
		})
		if err != nil {
			return nil, err
		}
		return a.dash.IngestFromGmail(ctx, gh, subject, jd)
	})
}

// promptAuthCode asks for the OAuth code on the UI thread and blocks the
// calling goroutine until the user answers
func (a *App) promptAuthCode(authURL string) (string, error) {
	type answer struct {
		code string
		ok   bool
	}
	ch := make(chan answer, 1)

	fyne.Do(func() {
		code := widget.NewEntry()
		link := widget.NewEntry()
		link.SetText(authURL)
		dialog.ShowForm("Authorize Gmail", "Continue", "Cancel",
			[]*widget.FormItem{
				widget.NewFormItem("Open this URL", link),
				widget.NewFormItem("Authorization code", code),
			},
			func(ok bool) { ch <- answer{code: strings.TrimSpace(code.Text), ok: ok} },
			a.mainWindow)
	})

	ans := <-ch
	if !ans.ok || ans.code == "" {
		return "", errors.New("gmail authorization canceled")
	}
	return ans.code, nil
}

// runIngest runs an upload in the background with the progress controls
func (a *App) runIngest(run func(ctx context.Context) (*models.Leaderboard, error)) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFunc = cancel

	a.uploadBtn.Disable()
	a.gmailBtn.Disable()
	a.cancelBtn.Enable()
	a.progressBar.SetValue(0)

	go func() {
		lb, err := run(ctx)
		cancel()

		fyne.Do(func() {
			a.uploadBtn.Enable()
			a.gmailBtn.Enable()
			a.cancelBtn.Disable()

			if err != nil {
				if errors.Is(err, context.Canceled) {
					a.progressLabel.SetText("Upload canceled")
					return
				}
				a.progressLabel.SetText("Error: " + backend.UserMessage(err))
				a.showMutationError("upload resumes", err)
				return
			}

			a.progressLabel.SetText(fmt.Sprintf("Complete! Ranked %d candidates", len(lb.Entries)))
			a.resumePaths = nil
			a.renderResumes()
			a.renderBoard()
			a.tabs.Select(a.boardTab)

			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Leaderboard ready",
				Content: fmt.Sprintf("%s: %d candidates ranked", lb.Title(), len(lb.Entries)),
			})
		})
	}()
}

// handleCancel handles cancellation of an upload
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}
