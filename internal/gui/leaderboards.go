package gui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/atssight/recruiter-desk/internal/export"
	"github.com/atssight/recruiter-desk/internal/models"
)

// createLeaderboardsTab lists every leaderboard of the recruiter
func (a *App) createLeaderboardsTab() fyne.CanvasObject {
	a.listStatus = widget.NewLabel("")
	a.summaryText = widget.NewRichTextFromMarkdown("")
	a.summaryText.Wrapping = fyne.TextWrapWord

	a.boardList = widget.NewList(
		func() int {
			return len(a.boards)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id < len(a.boards) {
				item.(*widget.Label).SetText(boardLabel(a.boards[id]))
			}
		},
	)
	a.boardList.OnSelected = func(id widget.ListItemID) {
		if id < len(a.boards) {
			a.selectedList = a.boards[id].ID
		}
	}

	openBtn := widget.NewButton("Open", a.handleOpenBoard)
	deleteBtn := widget.NewButton("Delete", a.handleDeleteBoard)
	csvBtn := widget.NewButton("Export CSV...", a.handleExportCSV)
	refreshBtn := widget.NewButton("Refresh", a.refresh)

	top := container.NewVBox(
		widget.NewLabel("Overview"),
		a.summaryText,
		widget.NewSeparator(),
		container.NewHBox(refreshBtn, openBtn, deleteBtn, csvBtn, a.listStatus),
	)
	return container.NewBorder(top, nil, nil, nil, a.boardList)
}

func (a *App) renderLeaderboards() {
	a.boards = a.dash.Leaderboards()
	a.boardList.UnselectAll()
	a.selectedList = 0
	a.boardList.Refresh()
	a.summaryText.ParseMarkdown(summaryMarkdown(a.dash.Summary()))
	if len(a.boards) == 0 && a.session.Authenticated() {
		a.listStatus.SetText("No leaderboards yet. Upload resumes to create one.")
	}
}

func (a *App) handleOpenBoard() {
	if a.selectedList == 0 {
		dialog.ShowError(fmt.Errorf("please select a leaderboard"), a.mainWindow)
		return
	}
	if err := a.dash.SelectLeaderboard(a.selectedList); err != nil {
		dialog.ShowError(err, a.mainWindow)
		return
	}
	a.renderBoard()
	a.tabs.Select(a.boardTab)
}

func (a *App) handleDeleteBoard() {
	id := a.selectedList
	if id == 0 {
		dialog.ShowError(fmt.Errorf("please select a leaderboard"), a.mainWindow)
		return
	}
	dialog.ShowConfirm("Delete leaderboard",
		"Delete this leaderboard and all of its candidates? This cannot be undone.",
		func(ok bool) {
			if !ok {
				return
			}
			go func() {
				navigate, err := a.dash.DeleteLeaderboard(context.Background(), id)
				fyne.Do(func() {
					if err != nil {
						a.showMutationError("delete leaderboard", err)
						return
					}
					if navigate {
						a.tabs.Select(a.listTab)
					}
				})
			}()
		}, a.mainWindow)
}

func (a *App) handleExportCSV() {
	id := a.selectedList
	if id == 0 {
		dialog.ShowError(fmt.Errorf("please select a leaderboard"), a.mainWindow)
		return
	}

	topN := widget.NewEntry()
	topN.SetText(strconv.Itoa(a.config.ExportTopN))
	dialog.ShowForm("Export CSV", "Export", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Top N candidates", topN)},
		func(ok bool) {
			if !ok {
				return
			}
			n, err := strconv.Atoi(topN.Text)
			if err != nil || n <= 0 {
				dialog.ShowError(fmt.Errorf("top N must be a positive number"), a.mainWindow)
				return
			}
			go func() {
				d, err := a.dash.ExportCSV(context.Background(), id, n)
				var path string
				if err == nil {
					path, err = export.SaveDownload(a.config.DownloadsDir, d)
				}
				fyne.Do(func() {
					if err != nil {
						a.showMutationError("export leaderboard", err)
						return
					}
					dialog.ShowInformation("Export complete", "Saved "+path, a.mainWindow)
				})
			}()
		}, a.mainWindow)
}

// createBoardTab shows the filtered, sorted entries of the selected leaderboard
func (a *App) createBoardTab() fyne.CanvasObject {
	a.boardTitle = widget.NewLabel("No leaderboard selected")
	a.boardTitle.TextStyle = fyne.TextStyle{Bold: true}

	a.searchEntry = widget.NewEntry()
	a.searchEntry.SetPlaceHolder("Search by name or skill...")
	a.searchEntry.OnChanged = func(string) { a.renderBoard() }

	a.favoritesCheck = widget.NewCheck("Favorites only", func(bool) { a.renderBoard() })

	a.entriesTable = widget.NewTable(
		func() (int, int) {
			return len(a.entries) + 1, len(entryHeaders) // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.SetText(entryHeaders[id.Col])
				label.TextStyle = fyne.TextStyle{Bold: true}
				return
			}
			label.TextStyle = fyne.TextStyle{}
			if id.Row-1 < len(a.entries) {
				label.SetText(entryCell(a.entries[id.Row-1], id.Col))
			}
		},
	)
	widths := []float32{70, 200, 70, 90, 40, 360}
	for col, w := range widths {
		a.entriesTable.SetColumnWidth(col, w)
	}
	a.entriesTable.OnSelected = func(id widget.TableCellID) {
		a.entriesTable.UnselectAll()
		if id.Row == 0 || id.Row-1 >= len(a.entries) {
			return
		}
		if id.Col == 4 {
			a.toggleFavorite(a.entries[id.Row-1].ID)
			return
		}
		a.openCandidate(a.entries[id.Row-1].ID)
	}

	exportBtn := widget.NewButton("Export view to Excel...", a.handleExportExcel)
	backBtn := widget.NewButton("Back to list", func() { a.tabs.Select(a.listTab) })
	reloadBtn := widget.NewButton("Reload", a.handleReloadBoard)

	top := container.NewVBox(
		container.NewHBox(backBtn, reloadBtn, a.boardTitle),
		container.NewBorder(nil, nil, nil, a.favoritesCheck, a.searchEntry),
	)
	return container.NewBorder(top, exportBtn, nil, nil, a.entriesTable)
}

func (a *App) renderBoard() {
	lb, ok := a.dash.SelectedLeaderboard()
	if !ok {
		a.boardTitle.SetText("No leaderboard selected")
	} else {
		a.boardTitle.SetText(fmt.Sprintf("%s (%d candidates)", lb.Title(), len(lb.Entries)))
	}
	a.entries = a.dash.Entries(a.searchEntry.Text, a.favoritesCheck.Checked)
	a.entriesTable.Refresh()
}

// handleReloadBoard fetches the selected leaderboard again
func (a *App) handleReloadBoard() {
	lb, ok := a.dash.SelectedLeaderboard()
	if !ok {
		return
	}
	go func() {
		if _, err := a.dash.RefreshLeaderboard(context.Background(), lb.ID); err != nil {
			fyne.Do(func() { a.showMutationError("reload leaderboard", err) })
		}
	}()
}

func (a *App) openCandidate(entryID int64) {
	a.tabs.Select(a.candidateTab)
	go func() {
		// Failures land in the detail pane as the fallback view
		a.dash.SelectCandidate(context.Background(), entryID)
	}()
}

func (a *App) handleExportExcel() {
	lb, ok := a.dash.SelectedLeaderboard()
	if !ok {
		dialog.ShowError(fmt.Errorf("no leaderboard selected"), a.mainWindow)
		return
	}
	entries := append([]models.CandidateEntry(nil), a.entries...)

	timestamp := time.Now().Format("2006-01-02_150405")
	defaultName := fmt.Sprintf("Leaderboard_%d_%s.xlsx", lb.ID, timestamp)

	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		outputPath := uc.URI().Path()
		uc.Close()

		written, err := export.ExportToExcel(lb, entries, outputPath)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Leaderboard exported to "+written, a.mainWindow)
	}, a.mainWindow)
	save.SetFileName(defaultName)
	save.Show()
}
