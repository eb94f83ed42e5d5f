package gui

import (
	"context"
	"errors"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/atssight/recruiter-desk/internal/auth"
	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/config"
	"github.com/atssight/recruiter-desk/internal/dashboard"
	"github.com/atssight/recruiter-desk/internal/models"
)

// Deps are the services the desktop app drives
type Deps struct {
	Config    *config.Config
	Session   *auth.Session
	Client    *backend.Client
	Dashboard *dashboard.Dashboard
}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	session    *auth.Session
	client     *backend.Client
	dash       *dashboard.Dashboard

	tabs         *container.AppTabs
	listTab      *container.TabItem
	boardTab     *container.TabItem
	candidateTab *container.TabItem
	uploadTab    *container.TabItem
	settingsTab  *container.TabItem

	// Leaderboards tab
	boards       []models.Leaderboard
	boardList    *widget.List
	summaryText  *widget.RichText
	listStatus   *widget.Label
	selectedList int64

	// Leaderboard tab
	boardTitle     *widget.Label
	searchEntry    *widget.Entry
	favoritesCheck *widget.Check
	entries        []models.CandidateEntry
	entriesTable   *widget.Table

	// Candidate tab
	candidateHeader *widget.Label
	favoriteBtn     *widget.Button
	notesEntry      *widget.Entry
	notesFor        int64
	saveNotesBtn    *widget.Button
	reportText      *widget.RichText
	interviewText   *widget.RichText
	pdfBtn          *widget.Button
	resumeBtn       *widget.Button

	// Upload tab
	resumePaths   []string
	resumesLabel  *widget.Label
	jdFilePath    string
	jdFileLabel   *widget.Label
	jdTitleEntry  *widget.Entry
	jdTextEntry   *widget.Entry
	subjectEntry  *widget.Entry
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	uploadBtn     *widget.Button
	gmailBtn      *widget.Button
	cancelBtn     *widget.Button
	cancelFunc    context.CancelFunc

	// Settings tab
	accountLabel *widget.Label
}

// NewApp creates a new GUI application
func NewApp(deps Deps) *App {
	a := app.New()
	w := a.NewWindow("ATSSight Recruiter Desk")
	w.Resize(fyne.NewSize(1100, 750))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     deps.Config,
		session:    deps.Session,
		client:     deps.Client,
		dash:       deps.Dashboard,
	}

	guiApp.setupUI()

	guiApp.dash.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			guiApp.progressBar.SetValue(float64(current) / float64(total))
			guiApp.progressLabel.SetText(message)
		})
	})
	// Dashboard events arrive on whichever goroutine made the change
	guiApp.dash.Subscribe(func(ev dashboard.Event) {
		fyne.Do(func() { guiApp.handleEvent(ev) })
	})

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	if a.session.Authenticated() {
		a.refresh()
	} else {
		a.tabs.Select(a.settingsTab)
	}
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	a.listTab = container.NewTabItem("Leaderboards", a.createLeaderboardsTab())
	a.boardTab = container.NewTabItem("Leaderboard", a.createBoardTab())
	a.candidateTab = container.NewTabItem("Candidate", a.createCandidateTab())
	a.uploadTab = container.NewTabItem("Upload", a.createUploadTab())
	a.settingsTab = container.NewTabItem("Settings", a.createSettingsTab())

	a.tabs = container.NewAppTabs(a.listTab, a.boardTab, a.candidateTab, a.uploadTab, a.settingsTab)
	a.mainWindow.SetContent(a.tabs)
}

// handleEvent re-renders the views a dashboard change touches
func (a *App) handleEvent(ev dashboard.Event) {
	switch ev.Type {
	case dashboard.LeaderboardsChanged:
		a.renderLeaderboards()
		a.renderBoard()
	case dashboard.SelectionChanged:
		a.renderBoard()
		a.renderCandidate()
	case dashboard.EntryChanged:
		a.renderLeaderboards()
		a.renderBoard()
	case dashboard.DetailChanged:
		a.renderCandidate()
	case dashboard.SessionExpired:
		a.renderLeaderboards()
		a.renderBoard()
		a.renderCandidate()
		a.renderAccount()
		a.tabs.Select(a.settingsTab)
		dialog.ShowInformation("Signed out", backend.UserMessage(backend.ErrUnauthorized), a.mainWindow)
	}
}

// refresh reloads leaderboards in the background
func (a *App) refresh() {
	a.listStatus.SetText("Loading leaderboards...")
	go func() {
		err := a.dash.Refresh(context.Background())
		fyne.Do(func() {
			if err != nil {
				log.Printf("Failed to load leaderboards: %v", err)
				a.listStatus.SetText("Error: " + backend.UserMessage(err))
				return
			}
			a.listStatus.SetText("")
			a.renderLeaderboards()
		})
	}()
}

// showMutationError is the blocking alert for failed writes
func (a *App) showMutationError(action string, err error) {
	log.Printf("Failed to %s: %v", action, err)
	if errors.Is(err, backend.ErrUnauthorized) {
		// SessionExpired already informs the user
		return
	}
	dialog.ShowError(errors.New(backend.UserMessage(err)), a.mainWindow)
}
