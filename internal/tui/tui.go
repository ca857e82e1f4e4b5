// Package tui implements the terminal UI of the reading-list client: the
// sign-in flow, the library and shelf screens, and the sync diagnostics
// view.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/service"
)

var ErrUserQuit = errors.New("user quit")

type TUI struct {
	services *service.ClientServices
	auth     AuthFlow
	sync     SyncController

	logger *logger.Logger
}

func New(services *service.ClientServices, auth AuthFlow, sync SyncController, log *logger.Logger) *TUI {
	return &TUI{services: services, auth: auth, sync: sync, logger: log}
}

// LoginFlow runs the welcome/login/register screens and blocks until the
// user is signed in or quits. Returns [ErrUserQuit] when the user bails.
func (t *TUI) LoginFlow(ctx context.Context) error {
	final, err := tea.NewProgram(newLoginAppModel(ctx, t.auth), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	m, ok := final.(appModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if m.quitByUser {
		return ErrUserQuit
	}
	return nil
}

// MainLoop runs the library screens until the user quits.
func (t *TUI) MainLoop(ctx context.Context) error {
	_, err := tea.NewProgram(newMainAppModel(ctx, t.services, t.sync), tea.WithAltScreen()).Run()
	return err
}
