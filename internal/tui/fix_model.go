package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Taiyaki256/discord-kintai/internal/correction"
	"github.com/Taiyaki256/discord-kintai/internal/ledger"
	"github.com/Taiyaki256/discord-kintai/internal/models"
	"github.com/Taiyaki256/discord-kintai/internal/parser"
	"github.com/Taiyaki256/discord-kintai/internal/timeutil"
	"github.com/Taiyaki256/discord-kintai/internal/view"
)

// expiryTickMsg polls the flow's deadline while the user idles.
type expiryTickMsg struct{}

// FixModel is the TUI model for the interactive correction flow. Every user
// action is forwarded to the correction manager; the model only renders
// whatever state the machine is in.
type FixModel struct {
	mgr    *correction.Manager
	flow   correction.Flow
	ledger view.LedgerView

	width  int
	height int
	cursor int
	input  textinput.Model

	inputErr  string
	commit    *correction.CommitResult
	err       error
	expired   bool
	cancelled bool
}

// NewFixModel starts a correction flow for one user and date.
func NewFixModel(mgr *correction.Manager, userID uint, date timeutil.Date) (FixModel, error) {
	flow, lv, err := mgr.Begin(userID, date, "tui")
	if err != nil {
		return FixModel{}, err
	}

	input := textinput.New()
	input.Placeholder = "HH:MM"
	input.CharLimit = 5
	input.Width = 12
	input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	return FixModel{
		mgr:    mgr,
		flow:   flow,
		ledger: lv,
		input:  input,
	}, nil
}

func (m FixModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, expiryTick())
}

func expiryTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return expiryTickMsg{}
	})
}

func (m FixModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expiryTickMsg:
		if _, err := m.mgr.Get(m.flow.ID); errors.Is(err, ledger.ErrSessionExpired) {
			m.expired = true
			return m, tea.Quit
		}
		return m, expiryTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// The flow may already have expired; either way we are done.
			_ = m.mgr.Cancel(m.flow.ID)
			m.cancelled = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m FixModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.flow.State == correction.StateAwaitingTimeInput {
		switch msg.String() {
		case "enter":
			return m.submitTime()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options())-1 {
			m.cursor++
		}
	case "left", "h":
		if m.flow.State == correction.StateSelectingTarget && m.ledger.Page > 0 {
			return m.turnPage(m.ledger.Page - 1)
		}
	case "right", "l":
		if m.flow.State == correction.StateSelectingTarget && m.ledger.HasMore {
			return m.turnPage(m.ledger.Page + 1)
		}
	case "enter", " ":
		return m.choose()
	case "y", "Y":
		if m.flow.State == correction.StateAwaitingConfirmation {
			return m.confirm()
		}
	case "n", "N":
		if m.flow.State == correction.StateAwaitingConfirmation {
			return m.decline()
		}
	}
	return m, nil
}

// choose applies the highlighted option to the state machine.
func (m FixModel) choose() (tea.Model, tea.Cmd) {
	var err error
	switch m.flow.State {
	case correction.StateSelectingAction:
		actions := []correction.Action{correction.ActionEdit, correction.ActionDelete, correction.ActionAdd}
		m.flow, err = m.mgr.Choose(m.flow.ID, actions[m.cursor])
	case correction.StateSelectingTarget:
		if m.deleteAllIndex() == m.cursor {
			m.flow, err = m.mgr.PickAll(m.flow.ID)
		} else {
			id, convErr := strconv.ParseUint(m.ledger.Entries[m.cursor].SelectionKey, 10, 32)
			if convErr != nil {
				m.err = convErr
				return m, tea.Quit
			}
			m.flow, err = m.mgr.PickTarget(m.flow.ID, uint(id))
		}
	case correction.StateAwaitingNewRecordKind:
		kinds := []models.EventKind{models.KindStart, models.KindEnd}
		m.flow, err = m.mgr.PickKind(m.flow.ID, kinds[m.cursor])
	case correction.StateAwaitingConfirmation:
		return m.confirm()
	default:
		return m, nil
	}
	if err != nil {
		return m.fail(err)
	}

	m.cursor = 0
	if m.flow.State == correction.StateAwaitingTimeInput {
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m FixModel) submitTime() (tea.Model, tea.Cmd) {
	flow, err := m.mgr.SubmitTime(m.flow.ID, m.input.Value())
	if err != nil {
		var vErr *ledger.ValidationError
		switch {
		case errors.As(err, &vErr):
			m.inputErr = vErr.Message
		case errors.Is(err, parser.ErrInvalidFormat), errors.Is(err, parser.ErrOutOfRange):
			m.inputErr = err.Error()
		default:
			return m.fail(err)
		}
		return m, nil
	}
	m.flow = flow
	m.inputErr = ""
	return m, nil
}

func (m FixModel) confirm() (tea.Model, tea.Cmd) {
	res, err := m.mgr.Confirm(m.flow.ID)
	if err != nil {
		return m.fail(err)
	}
	m.commit = &res
	return m, tea.Quit
}

func (m FixModel) decline() (tea.Model, tea.Cmd) {
	if err := m.mgr.Decline(m.flow.ID); err != nil {
		return m.fail(err)
	}
	m.cancelled = true
	return m, tea.Quit
}

func (m FixModel) turnPage(page int) (tea.Model, tea.Cmd) {
	lv, err := m.mgr.LedgerPage(m.flow.ID, page)
	if err != nil {
		return m.fail(err)
	}
	m.ledger = lv
	m.cursor = 0
	return m, nil
}

func (m FixModel) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, ledger.ErrSessionExpired) {
		m.expired = true
	} else {
		m.err = err
	}
	return m, tea.Quit
}

// deleteAllIndex is the cursor position of the delete-all option, or -1 when
// it is not offered.
func (m FixModel) deleteAllIndex() int {
	if m.flow.Action == correction.ActionDelete && len(m.ledger.Entries) > 1 {
		return len(m.ledger.Entries)
	}
	return -1
}

// options returns the labels for the current selection menu.
func (m FixModel) options() []string {
	switch m.flow.State {
	case correction.StateSelectingAction:
		return []string{"Edit a record's time", "Delete a record", "Add a record"}
	case correction.StateSelectingTarget:
		opts := make([]string, 0, len(m.ledger.Entries)+1)
		for _, e := range m.ledger.Entries {
			label := fmt.Sprintf("%s %s", e.Clock, e.Kind)
			if e.Modified {
				label += fmt.Sprintf(" (edited, was %s)", e.OriginalClock)
			}
			opts = append(opts, label)
		}
		if m.deleteAllIndex() >= 0 {
			opts = append(opts, "Delete ALL records for this date")
		}
		return opts
	case correction.StateAwaitingNewRecordKind:
		return []string{"Start record", "End record"}
	default:
		return nil
	}
}

func (m FixModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Fix records - %s", m.flow.Date)))
	b.WriteString("\n\n")

	switch m.flow.State {
	case correction.StateSelectingAction, correction.StateSelectingTarget, correction.StateAwaitingNewRecordKind:
		b.WriteString(m.viewMenu())
	case correction.StateAwaitingTimeInput:
		b.WriteString("New time (24h clock):\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != "" {
			b.WriteString(errStyle.Render("✗ " + m.inputErr))
			b.WriteString("\n")
		}
		b.WriteString(helpView("enter: submit • esc: cancel"))
	case correction.StateAwaitingConfirmation:
		b.WriteString(m.viewConfirmation())
	}
	return b.String()
}

func (m FixModel) viewMenu() string {
	var b strings.Builder
	switch m.flow.State {
	case correction.StateSelectingAction:
		b.WriteString("What do you want to do?\n\n")
	case correction.StateSelectingTarget:
		b.WriteString("Pick a record:\n\n")
	case correction.StateAwaitingNewRecordKind:
		b.WriteString("What kind of record?\n\n")
	}

	selected := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	for i, opt := range m.options() {
		if i == m.cursor {
			b.WriteString(selected.Render("> " + opt))
		} else {
			b.WriteString("  " + opt)
		}
		b.WriteString("\n")
	}

	help := "↑/↓: move • enter: select • esc: cancel"
	if m.flow.State == correction.StateSelectingTarget && (m.ledger.Page > 0 || m.ledger.HasMore) {
		help = "↑/↓: move • ←/→: page • enter: select • esc: cancel"
	}
	b.WriteString(helpView(help))
	return b.String()
}

func (m FixModel) viewConfirmation() string {
	var b strings.Builder
	b.WriteString("Confirm:\n\n")

	switch m.flow.Action {
	case correction.ActionEdit:
		b.WriteString(fmt.Sprintf("  Change record #%d to %s\n",
			m.flow.TargetEventID, timeutil.FormatClock(m.flow.Pending.NewTime)))
	case correction.ActionAdd:
		b.WriteString(fmt.Sprintf("  Add a %s record at %s\n",
			m.flow.Pending.Kind.Label(), timeutil.FormatClock(m.flow.Pending.NewTime)))
	case correction.ActionDelete:
		if m.flow.DeleteAll {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  Delete ALL records for %s", m.flow.Date)))
			b.WriteString("\n")
		} else {
			b.WriteString(fmt.Sprintf("  Delete record #%d\n", m.flow.TargetEventID))
		}
	}
	b.WriteString(helpView("y: confirm • n: keep everything as it is"))
	return b.String()
}

func helpView(text string) string {
	return "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Render(text) + "\n"
}
