package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/multitimer/internal/domain"
)

// CountersModel is the tally-counter board screen.
type CountersModel struct {
	session   *Session
	cursor    int
	editing   bool
	label     textinput.Model
	err       error
	statusMsg string
}

// NewCountersModel creates the counter board screen
func NewCountersModel(s *Session) tea.Model {
	return &CountersModel{session: s}
}

// IsCapturingInput returns true while the label form is open
func (m *CountersModel) IsCapturingInput() bool {
	return m.editing
}

func (m *CountersModel) Init() tea.Cmd {
	return nil
}

func (m *CountersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The settings screen can shrink the board while this screen is
	// hidden; the cursor has to follow before any slot access.
	if m.cursor >= m.session.Board.Size() {
		m.cursor = 0
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		return m.updateLabelForm(keyMsg)
	}

	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Left), key.Matches(keyMsg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, DefaultKeyMap.Right), key.Matches(keyMsg, DefaultKeyMap.Down):
		if m.cursor < m.session.Board.Size()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, DefaultKeyMap.Toggle):
		m.err = m.session.Board.Increment(m.cursor)
	case key.Matches(keyMsg, DefaultKeyMap.Reset):
		m.err = m.session.Board.Reset(m.cursor)
	case key.Matches(keyMsg, DefaultKeyMap.ResetAll):
		m.session.Board.ResetAll()
	case key.Matches(keyMsg, DefaultKeyMap.Label):
		m.openLabelForm()
	default:
		switch keyMsg.String() {
		case "+", "=":
			m.err = m.session.Board.Increment(m.cursor)
		case "-", "_":
			m.err = m.session.Board.Decrement(m.cursor)
		default:
			if n, err := strconv.Atoi(keyMsg.String()); err == nil && n >= 1 && n <= m.session.Board.Size() {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

func (m *CountersModel) openLabelForm() {
	counters := m.session.Board.Counters()
	m.label = textinput.New()
	m.label.Placeholder = strconv.Itoa(m.cursor + 1)
	m.label.CharLimit = m.session.App.Config.Engine.LabelLimit
	m.label.Width = 20
	m.label.SetValue(counters[m.cursor].Label)
	m.label.Focus()
	m.editing = true
}

func (m *CountersModel) updateLabelForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil

	case "enter":
		if err := m.session.Board.SetLabel(m.cursor, strings.TrimSpace(m.label.Value())); err != nil {
			m.err = err
			return m, nil
		}
		m.editing = false
		m.session.CounterPrefs.Labels = m.session.Board.Labels()
		return m, savePrefsCmd(m.session, domain.BoardCounter, m.session.CounterPrefs)
	}

	var cmd tea.Cmd
	m.label, cmd = m.label.Update(msg)
	return m, cmd
}

// View renders the counter board
func (m *CountersModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Counter Board"))
	b.WriteString("\n\n")

	counters := m.session.Board.Counters()
	var rows []string
	for start := 0; start < len(counters); start += gridColumns {
		end := start + gridColumns
		if end > len(counters) {
			end = len(counters)
		}
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			body := fmt.Sprintf("%s\n%s", counters[i].Label, counterValueStyle.Render(strconv.Itoa(counters[i].Value)))
			cell := lipgloss.NewStyle().
				Width(12).
				Align(lipgloss.Center).
				Padding(0, 1)
			if i == m.cursor {
				cell = cell.Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor)
			} else {
				cell = cell.Border(lipgloss.HiddenBorder())
			}
			cells = append(cells, cell.Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(fmt.Sprintf("\nLabel for counter %d: %s\n", m.cursor+1, m.label.View()))
		b.WriteString(helpStyle.Render("enter=confirm, esc=cancel"))
	} else {
		if m.err != nil {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
		} else if m.statusMsg != "" {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(successColor).Render(m.statusMsg))
		}
		b.WriteString("\n" + helpStyle.Render("←/→=select, space/+=increment, -=decrement, r=reset, R=reset all, e=label"))
	}

	return b.String()
}
