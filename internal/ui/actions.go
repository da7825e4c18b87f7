package ui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/larder/internal/export"
	"github.com/five82/larder/internal/foodapi"
	"github.com/five82/larder/internal/inventory"
)

// Banner text shown after a successful add.
const addedNotice = "Food added to inventory successfully!"

// noticeDuration is how long a success banner stays visible.
const noticeDuration = 3 * time.Second

type action int

const (
	actionFetch action = iota
	actionDelete
	actionDeleteAll
	actionUpdate
	actionExport
)

func (a action) String() string {
	switch a {
	case actionDelete:
		return "delete"
	case actionDeleteAll:
		return "delete_all"
	case actionUpdate:
		return "update"
	case actionExport:
		return "export"
	default:
		return "fetch"
	}
}

// actionDoneMsg reports the outcome of a Gateway call.
type actionDoneMsg struct {
	action action
	notice string
	err    error
}

// addedMsg reports the outcome of adding a catalog product.
type addedMsg struct {
	item *foodapi.Item
	err  error
}

type noticeExpiredMsg int

func (m Model) fetchCmd() tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	gw, ctx := m.gateway, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: actionFetch, err: gw.FetchAll(ctx)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	gw, ctx := m.gateway, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: actionDelete, err: gw.DeleteOne(ctx, id)}
	}
}

func (m Model) deleteAllCmd() tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	gw, ctx := m.gateway, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: actionDeleteAll, err: gw.DeleteAll(ctx)}
	}
}

func (m Model) updateExpiryCmd(id, date string) tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	gw, ctx := m.gateway, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: actionUpdate, err: gw.UpdateExpiry(ctx, id, date)}
	}
}

func (m Model) exportCmd() tea.Cmd {
	if m.config == nil {
		return nil
	}
	dir := m.config.ExportDir
	entries := m.snapshot.Entries
	return func() tea.Msg {
		path, err := export.WriteFile(dir, export.DefaultFilename, entries)
		if err != nil {
			return actionDoneMsg{action: actionExport, err: fmt.Errorf("export inventory: %w", err)}
		}
		return actionDoneMsg{
			action: actionExport,
			notice: fmt.Sprintf("Exported %d items to %s", len(entries), path),
		}
	}
}

func (m Model) addCmd(product foodapi.Product) tea.Cmd {
	if m.gateway == nil {
		return nil
	}
	gw, ctx := m.gateway, m.ctx
	return func() tea.Msg {
		item, err := gw.CreateOrIncrement(ctx, product)
		return addedMsg{item: item, err: err}
	}
}

func noticeExpireCmd(seq int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg(seq)
	})
}

// showNotice sets the success banner and schedules its removal.
func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	return noticeExpireCmd(m.noticeSeq)
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshSnapshot()

	switch {
	case errors.Is(msg.err, inventory.ErrSuperseded):
		// A newer edit for the same item owns the outcome.
		return m, nil
	case msg.err != nil:
		m.errorMsg = inventory.Message(msg.err)
		m.logger.Debug("action failed", zap.Stringer("action", msg.action), zap.Error(msg.err))
		return m, nil
	}

	m.errorMsg = ""
	if msg.notice != "" {
		cmd := m.showNotice(msg.notice)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleAdded(msg addedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMsg = inventory.Message(msg.err)
		return m, nil
	}
	m.errorMsg = ""
	if msg.item != nil {
		m.logger.Info("product added", zap.String("id", msg.item.ID), zap.Int("count", msg.item.Count))
	}
	expire := m.showNotice(addedNotice)
	return m, tea.Batch(expire, m.fetchCmd())
}
