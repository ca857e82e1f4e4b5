package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/models"
)

type screen int

const (
	screenWelcome screen = iota
	screenLogin
	screenRegister
	screenLibrary
	screenDetail
	screenForm
	screenShelves
	screenSyncStatus
)

type appMode int

const (
	modeLogin appMode = iota
	modeMain
)

type navigateMsg struct {
	to screen
}

func navigate(to screen) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

// appModel is the TUI router: it keeps the active screen, handles global
// quit and navigation, and delegates everything else to the screen models.
type appModel struct {
	ctx           context.Context
	services      *service.ClientServices
	auth          AuthFlow
	sync          SyncController
	mode          appMode
	currentScreen screen

	welcome    welcomeModel
	login      authFormModel
	register   authFormModel
	library    libraryModel
	detail     detailModel
	form       bookFormModel
	shelves    shelvesModel
	syncStatus syncStatusModel

	quitByUser bool
}

func newLoginAppModel(ctx context.Context, auth AuthFlow) appModel {
	return appModel{
		ctx:           ctx,
		auth:          auth,
		mode:          modeLogin,
		currentScreen: screenWelcome,
		welcome:       newWelcomeModel(),
		login:         newAuthFormModel(ctx, auth, false),
		register:      newAuthFormModel(ctx, auth, true),
	}
}

func newMainAppModel(ctx context.Context, services *service.ClientServices, sync SyncController) appModel {
	return appModel{
		ctx:           ctx,
		services:      services,
		sync:          sync,
		mode:          modeMain,
		currentScreen: screenLibrary,
		library:       newLibraryModel(ctx, services.Books),
		shelves:       newShelvesModel(ctx, services.Shelves),
		syncStatus:    newSyncStatusModel(ctx, sync),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.mode == modeMain {
		return m.library.cmdLoad()
	}
	return nil
}

func (m appModel) cmdSyncNow() tea.Cmd {
	return func() tea.Msg {
		done := make(chan error, 1)
		m.sync.FetchRemoteChanges(func(err error) { done <- err })
		m.sync.NotifyLocalChange()
		return fetchDoneMsg{err: <-done}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		m.quitByUser = true
		return m, tea.Quit
	}

	if nav, ok := msg.(navigateMsg); ok {
		return m.navigateTo(nav.to)
	}

	// A finished sign-in (or registration) ends the login program.
	if auth, ok := msg.(authDoneMsg); ok && m.mode == modeLogin {
		if auth.err == nil && !auth.registered {
			return m, tea.Quit
		}
		if auth.err == nil && auth.registered {
			m.welcome.status = "registered, sign in now"
			m.register = newAuthFormModel(m.ctx, m.auth, true)
			m.currentScreen = screenWelcome
			return m, nil
		}
	}

	if m.mode == modeMain {
		return m.updateMain(msg)
	}
	return m.updateLogin(msg)
}

func (m appModel) navigateTo(to screen) (tea.Model, tea.Cmd) {
	m.currentScreen = to

	switch to {
	case screenLibrary:
		return m, m.library.cmdLoad()
	case screenShelves:
		return m, m.shelves.cmdLoad()
	case screenSyncStatus:
		return m, m.syncStatus.cmdLoad()
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScreen {
	case screenWelcome:
		m.welcome, cmd = m.welcome.update(msg)
	case screenLogin:
		m.login, cmd = m.login.update(msg)
	case screenRegister:
		m.register, cmd = m.register.update(msg)
	}
	return m, cmd
}

func (m appModel) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Screen-changing hotkeys and submissions are routed here; everything
	// else goes to the active screen model.
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.currentScreen {
		case screenLibrary:
			switch keyMsg.String() {
			case "q":
				m.quitByUser = true
				return m, tea.Quit
			case "enter":
				if book, ok := m.library.selected(); ok {
					m.detail = detailModel{book: book}
					m.currentScreen = screenDetail
				}
				return m, nil
			case "n":
				m.form = newBookFormModel(m.ctx, m.services.Books, models.Book{})
				m.currentScreen = screenForm
				return m, nil
			case "e":
				if book, ok := m.library.selected(); ok {
					m.form = newBookFormModel(m.ctx, m.services.Books, book)
					m.currentScreen = screenForm
				}
				return m, nil
			case "s":
				return m, m.cmdSyncNow()
			case "y":
				return m.navigateTo(screenSyncStatus)
			case "tab":
				return m.navigateTo(screenShelves)
			}

		case screenDetail:
			switch keyMsg.String() {
			case "esc":
				return m.navigateTo(screenLibrary)
			case "e":
				m.form = newBookFormModel(m.ctx, m.services.Books, m.detail.book)
				m.currentScreen = screenForm
				return m, nil
			}

		case screenForm:
			if keyMsg.String() == "esc" {
				return m.navigateTo(screenLibrary)
			}

		case screenShelves:
			if !m.shelves.adding {
				switch keyMsg.String() {
				case "esc", "tab":
					return m.navigateTo(screenLibrary)
				}
			}

		case screenSyncStatus:
			switch keyMsg.String() {
			case "esc":
				return m.navigateTo(screenLibrary)
			case "s":
				return m, m.cmdSyncNow()
			}
		}
	}

	// A successful save returns to the library.
	if saved, ok := msg.(bookSavedMsg); ok && saved.err == nil && m.currentScreen == screenForm {
		return m.navigateTo(screenLibrary)
	}

	var cmd tea.Cmd
	switch m.currentScreen {
	case screenLibrary:
		m.library, cmd = m.library.update(msg)
	case screenForm:
		m.form, cmd = m.form.update(msg)
	case screenShelves:
		m.shelves, cmd = m.shelves.update(msg)
	case screenSyncStatus:
		m.syncStatus, cmd = m.syncStatus.update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	switch m.currentScreen {
	case screenWelcome:
		return m.welcome.view()
	case screenLogin:
		return m.login.view()
	case screenRegister:
		return m.register.view()
	case screenLibrary:
		return m.library.view()
	case screenDetail:
		return m.detail.view()
	case screenForm:
		return m.form.view()
	case screenShelves:
		return m.shelves.view()
	case screenSyncStatus:
		return m.syncStatus.view()
	}
	return ""
}
