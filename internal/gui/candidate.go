package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/atssight/recruiter-desk/internal/dashboard"
	"github.com/atssight/recruiter-desk/internal/export"
	"github.com/atssight/recruiter-desk/internal/models"
)

// createCandidateTab shows the report of the selected candidate
func (a *App) createCandidateTab() fyne.CanvasObject {
	a.candidateHeader = widget.NewLabel("No candidate selected")
	a.candidateHeader.TextStyle = fyne.TextStyle{Bold: true}

	a.favoriteBtn = widget.NewButton("☆ Favorite", func() {
		if id := a.dash.SelectedCandidate(); id != 0 {
			a.toggleFavorite(id)
		}
	})

	a.notesEntry = widget.NewMultiLineEntry()
	a.notesEntry.SetPlaceHolder("Recruiter notes...")
	a.notesEntry.SetMinRowsVisible(4)
	a.saveNotesBtn = widget.NewButton("Save Notes", a.handleSaveNotes)

	a.reportText = widget.NewRichTextFromMarkdown(detailMarkdown(dashboard.CandidateDetail{State: dashboard.StateIdle}))
	a.reportText.Wrapping = fyne.TextWrapWord
	a.interviewText = widget.NewRichTextFromMarkdown("")
	a.interviewText.Wrapping = fyne.TextWrapWord

	a.pdfBtn = widget.NewButton("Download Report PDF", func() { a.handleDownload("report", a.dash.DownloadReportPDF) })
	a.resumeBtn = widget.NewButton("Download Resume", func() { a.handleDownload("resume", a.dash.DownloadResume) })
	closeBtn := widget.NewButton("Close", func() {
		a.dash.ClearCandidate()
		a.tabs.Select(a.boardTab)
	})

	header := container.NewVBox(
		container.NewHBox(a.candidateHeader, a.favoriteBtn, a.pdfBtn, a.resumeBtn, closeBtn),
		widget.NewSeparator(),
	)
	notes := container.NewVBox(
		widget.NewLabel("Notes"),
		a.notesEntry,
		a.saveNotesBtn,
		widget.NewSeparator(),
		widget.NewLabel("Interview guide"),
		a.interviewText,
	)

	a.renderCandidate()
	split := container.NewHSplit(container.NewVScroll(a.reportText), container.NewVScroll(notes))
	split.Offset = 0.6
	return container.NewBorder(header, nil, nil, nil, split)
}

// renderCandidate syncs the pane with the dashboard's detail projection
func (a *App) renderCandidate() {
	cd := a.dash.Detail()
	a.reportText.ParseMarkdown(detailMarkdown(cd))

	hasEntry := cd.Entry != nil
	for _, w := range []fyne.Disableable{a.favoriteBtn, a.saveNotesBtn, a.pdfBtn, a.resumeBtn, a.notesEntry} {
		if hasEntry {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	if !hasEntry {
		a.candidateHeader.SetText("No candidate selected")
		a.notesEntry.SetText("")
		a.notesFor = 0
		a.interviewText.ParseMarkdown("")
		return
	}

	e := cd.Entry
	a.candidateHeader.SetText(fmt.Sprintf("%s  %s", entryCell(*e, 0), e.CandidateName))
	if e.IsFavorite {
		a.favoriteBtn.SetText("★ Favorite")
	} else {
		a.favoriteBtn.SetText("☆ Favorite")
	}
	// Keep unsaved edits unless a different candidate is shown
	if a.notesFor != e.ID {
		a.notesEntry.SetText(e.Notes)
		a.notesFor = e.ID
	}

	if guide, ok := a.dash.InterviewGuide(e.ID); ok {
		a.interviewText.ParseMarkdown(interviewMarkdown(guide))
	} else {
		a.interviewText.ParseMarkdown("")
	}
}

func (a *App) toggleFavorite(entryID int64) {
	go func() {
		_, err := a.dash.ToggleFavorite(context.Background(), entryID)
		if err != nil {
			fyne.Do(func() { a.showMutationError("update favorite", err) })
		}
	}()
}

func (a *App) handleSaveNotes() {
	id := a.dash.SelectedCandidate()
	if id == 0 {
		return
	}
	notes := a.notesEntry.Text
	a.saveNotesBtn.Disable()
	go func() {
		_, err := a.dash.UpdateNotes(context.Background(), id, notes)
		fyne.Do(func() {
			a.saveNotesBtn.Enable()
			if err != nil {
				a.showMutationError("save notes", err)
				return
			}
			dialog.ShowInformation("Saved", "Notes saved", a.mainWindow)
		})
	}()
}

func (a *App) handleDownload(kind string, fetch func(context.Context, int64) (*models.Download, error)) {
	id := a.dash.SelectedCandidate()
	if id == 0 {
		return
	}
	go func() {
		d, err := fetch(context.Background(), id)
		var path string
		if err == nil {
			path, err = export.SaveDownload(a.config.DownloadsDir, d)
		}
		fyne.Do(func() {
			if err != nil {
				a.showMutationError("download "+kind, err)
				return
			}
			dialog.ShowInformation("Download complete", "Saved "+path, a.mainWindow)
		})
	}()
}
