package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/models"
)

// syncStatusModel is the diagnostics screen: object counts, the pending
// push backlog, and the reason sync is disabled, if it is.
type syncStatusModel struct {
	ctx  context.Context
	sync SyncController

	status  models.SyncStatus
	loading bool
	errMsg  string
}

func newSyncStatusModel(ctx context.Context, sync SyncController) syncStatusModel {
	return syncStatusModel{ctx: ctx, sync: sync, loading: true}
}

func (m syncStatusModel) cmdLoad() tea.Cmd {
	return func() tea.Msg {
		status, err := m.sync.Status(m.ctx)
		return statusLoadedMsg{status: status, err: err}
	}
}

func (m syncStatusModel) update(msg tea.Msg) (syncStatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.status = msg.status
		return m, nil

	case fetchDoneMsg:
		return m, m.cmdLoad()

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.cmdLoad()
		}
	}

	return m, nil
}

func disabledReasonLabel(reason models.DisabledReason) string {
	switch reason {
	case models.ReasonUnexpectedError:
		return "stopped after an unexpected error"
	case models.ReasonOutOfDateApp:
		return "app update required"
	case models.ReasonUserDisabled:
		return "disabled by user"
	case models.ReasonAccountUnavailable:
		return "account unavailable"
	default:
		return "-"
	}
}

func (m syncStatusModel) view() string {
	if m.loading {
		return renderPage("SYNC STATUS", "loading...", "")
	}

	var b strings.Builder
	if m.errMsg != "" {
		b.WriteString("ERROR: " + m.errMsg + "\n\n")
	}

	running := "no"
	if m.status.Running {
		running = "yes"
	}
	b.WriteString(fmt.Sprintf("Running:        %s\n", running))
	if m.status.DisabledReason != models.ReasonNone {
		b.WriteString(fmt.Sprintf("Disabled:       %s\n", disabledReasonLabel(m.status.DisabledReason)))
	}
	b.WriteString(fmt.Sprintf("Pending pushes: %d\n\n", m.status.PendingPushCount))

	for _, entityType := range models.SyncedEntityTypes {
		b.WriteString(fmt.Sprintf("%-10s %d objects, %d uploaded\n",
			string(entityType)+":",
			m.status.ObjectCount[entityType],
			m.status.UploadedObjectCount[entityType],
		))
	}

	if tx := m.status.LastProcessedTransaction; tx != nil {
		b.WriteString(fmt.Sprintf("\nLast confirmed change: #%d (%s %s)\n",
			tx.ID, tx.Kind, tx.EntityType))
	}

	return renderPage("SYNC STATUS", strings.TrimRight(b.String(), "\n"),
		"r: refresh │ s: sync now │ esc: back")
}
