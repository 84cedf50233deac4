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
	"github.com/andy/multitimer/internal/timeformat"
)

type timersMode int

const (
	timersModeView timersMode = iota
	timersModeEditTime
	timersModeEditLabel
)

// time entry form field indices
const (
	timeFieldMinutes = iota
	timeFieldSeconds
	timeFieldCount
)

// TimersModel is the timer board screen.
type TimersModel struct {
	session *Session
	snaps   []domain.TimerSnapshot
	cursor  int
	running int
	total   int
	mode    timersMode

	timeFields [timeFieldCount]textinput.Model
	timeFocus  int
	labelField textinput.Model

	err       error
	statusMsg string
}

// NewTimersModel creates the timer board screen
func NewTimersModel(s *Session) tea.Model {
	return &TimersModel{
		session: s,
		snaps:   s.Engine.Snapshots(),
		total:   s.Engine.TimerCount(),
		running: s.Engine.RunningCount(),
	}
}

// IsCapturingInput returns true while a form is open
func (m *TimersModel) IsCapturingInput() bool {
	return m.mode != timersModeView
}

func (m *TimersModel) Init() tea.Cmd {
	return nil
}

func (m *TimersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimerUpdatedMsg:
		if msg.Index >= 0 && msg.Index < len(m.snaps) {
			m.snaps[msg.Index] = msg.Snapshot
		}
		return m, nil

	case RunningCountMsg:
		m.running = msg.Running
		m.total = msg.Total
		return m, nil

	case BoardRebuiltMsg:
		m.snaps = msg.Snapshots
		if m.cursor >= len(m.snaps) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case timersModeEditTime:
			return m.updateTimeForm(msg)
		case timersModeEditLabel:
			return m.updateLabelForm(msg)
		}
		return m.updateView(msg)
	}

	return m, nil
}

func (m *TimersModel) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Left), key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Right), key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.snaps)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		m.openTimeForm()
	case key.Matches(msg, DefaultKeyMap.Label):
		m.openLabelForm()
	case key.Matches(msg, DefaultKeyMap.Toggle):
		m.toggleTimer()
	case key.Matches(msg, DefaultKeyMap.StartAll):
		m.session.Engine.StartAll()
	case key.Matches(msg, DefaultKeyMap.StopAll):
		m.session.Engine.StopAll()
	case key.Matches(msg, DefaultKeyMap.Reset):
		if err := m.session.Engine.Reset(m.cursor); err != nil {
			m.err = err
		}
	case key.Matches(msg, DefaultKeyMap.ResetAll):
		m.session.Engine.ResetAll()
	default:
		// Digits jump straight to a timer slot.
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.snaps) {
			m.cursor = n - 1
		}
	}
	return m, nil
}

// toggleTimer starts or stops the timer under the cursor.
func (m *TimersModel) toggleTimer() {
	snap := m.snaps[m.cursor]
	var err error
	if snap.Running {
		err = m.session.Engine.Stop(m.cursor)
	} else {
		err = m.session.Engine.Start(m.cursor)
	}
	if err != nil {
		m.err = err
	}
}

func (m *TimersModel) openTimeForm() {
	snap := m.snaps[m.cursor]
	minutes, seconds := timeformat.Split(snap.TotalSeconds)

	m.timeFields[timeFieldMinutes] = textinput.New()
	m.timeFields[timeFieldMinutes].Placeholder = "0"
	m.timeFields[timeFieldMinutes].CharLimit = 3
	m.timeFields[timeFieldMinutes].Width = 5
	if snap.TotalSeconds > 0 {
		m.timeFields[timeFieldMinutes].SetValue(strconv.Itoa(minutes))
	}

	m.timeFields[timeFieldSeconds] = textinput.New()
	m.timeFields[timeFieldSeconds].Placeholder = "0"
	m.timeFields[timeFieldSeconds].CharLimit = 2
	m.timeFields[timeFieldSeconds].Width = 5
	if snap.TotalSeconds > 0 {
		m.timeFields[timeFieldSeconds].SetValue(strconv.Itoa(seconds))
	}

	m.timeFocus = timeFieldMinutes
	m.timeFields[timeFieldMinutes].Focus()
	m.mode = timersModeEditTime
}

func (m *TimersModel) updateTimeForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = timersModeView
		return m, nil

	case "tab", "shift+tab", "up", "down":
		m.timeFields[m.timeFocus].Blur()
		m.timeFocus = (m.timeFocus + 1) % timeFieldCount
		m.timeFields[m.timeFocus].Focus()
		return m, nil

	case "enter":
		return m, m.confirmTimeForm()
	}

	var cmd tea.Cmd
	m.timeFields[m.timeFocus], cmd = m.timeFields[m.timeFocus].Update(msg)
	return m, cmd
}

func (m *TimersModel) confirmTimeForm() tea.Cmd {
	minutes, err := formValue(m.timeFields[timeFieldMinutes].Value())
	if err != nil {
		m.err = fmt.Errorf("minutes: %w", err)
		return nil
	}
	seconds, err := formValue(m.timeFields[timeFieldSeconds].Value())
	if err != nil {
		m.err = fmt.Errorf("seconds: %w", err)
		return nil
	}

	total, err := timeformat.Compose(minutes, seconds)
	if err != nil {
		m.err = err
		return nil
	}
	if err := m.session.Engine.SetTime(m.cursor, total); err != nil {
		m.err = err
		return nil
	}

	m.mode = timersModeView
	m.statusMsg = fmt.Sprintf("Timer %d set to %s", m.cursor+1, timeformat.Format(total))
	return nil
}

func formValue(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return n, nil
}

func (m *TimersModel) openLabelForm() {
	m.labelField = textinput.New()
	m.labelField.Placeholder = strconv.Itoa(m.cursor + 1)
	m.labelField.CharLimit = m.session.App.Config.Engine.LabelLimit
	m.labelField.Width = 20
	m.labelField.SetValue(m.snaps[m.cursor].Label)
	m.labelField.Focus()
	m.mode = timersModeEditLabel
}

func (m *TimersModel) updateLabelForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = timersModeView
		return m, nil

	case "enter":
		if err := m.session.Engine.SetLabel(m.cursor, strings.TrimSpace(m.labelField.Value())); err != nil {
			m.err = err
			return m, nil
		}
		m.mode = timersModeView
		// Labels are part of the persisted blob; save on change, not on tick.
		m.session.TimerPrefs.Labels = m.session.Engine.Labels()
		return m, savePrefsCmd(m.session, domain.BoardTimer, m.session.TimerPrefs)
	}

	var cmd tea.Cmd
	m.labelField, cmd = m.labelField.Update(msg)
	return m, cmd
}

// View renders the timer board
func (m *TimersModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Timer Board"))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("   %d of %d running", m.running, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	switch m.mode {
	case timersModeEditTime:
		b.WriteString(fmt.Sprintf("\nSet time for timer %d:  minutes %s  seconds %s\n",
			m.cursor+1,
			m.timeFields[timeFieldMinutes].View(),
			m.timeFields[timeFieldSeconds].View(),
		))
		b.WriteString(helpStyle.Render("enter=confirm, tab=switch field, esc=cancel"))
	case timersModeEditLabel:
		b.WriteString(fmt.Sprintf("\nLabel for timer %d: %s\n", m.cursor+1, m.labelField.View()))
		b.WriteString(helpStyle.Render("enter=confirm, esc=cancel"))
	default:
		if m.err != nil {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
		} else if m.statusMsg != "" {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(successColor).Render(m.statusMsg))
		}
		b.WriteString("\n" + helpStyle.Render("←/→=select, enter=set time, space=start/stop, a=start all, x=stop all, r=reset, R=reset all, e=label"))
	}

	return b.String()
}

const gridColumns = 5

func (m *TimersModel) renderGrid() string {
	var rows []string
	for start := 0; start < len(m.snaps); start += gridColumns {
		end := start + gridColumns
		if end > len(m.snaps) {
			end = len(m.snaps)
		}
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m *TimersModel) renderCell(i int) string {
	snap := m.snaps[i]

	var valueStyle lipgloss.Style
	var stateStr string
	switch snap.State() {
	case domain.TimerStateRunning:
		valueStyle = timerRunningStyle
		stateStr = "running"
	case domain.TimerStateCompleted:
		valueStyle = timerCompletedStyle
		stateStr = "done"
		if snap.Blinking {
			valueStyle = timerBlinkStyle
		}
	case domain.TimerStateReady:
		valueStyle = timerReadyStyle
		stateStr = "ready"
	default:
		valueStyle = timerIdleStyle
		stateStr = "-"
	}

	value := timeformat.Format(snap.RemainingSeconds)
	body := fmt.Sprintf("%s\n%s\n%s", snap.Label, valueStyle.Render(value), subtitleStyle.Render(stateStr))

	if m.session.TimerPrefs.SegmentedAnimation && snap.TotalSeconds > 0 {
		body += "\n" + segmentBar(snap.RemainingSeconds, snap.TotalSeconds)
	}

	cell := lipgloss.NewStyle().
		Width(12).
		Align(lipgloss.Center).
		Padding(0, 1)
	if i == m.cursor {
		cell = cell.Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor)
	} else {
		cell = cell.Border(lipgloss.HiddenBorder())
	}
	return cell.Render(body)
}

// segmentBar renders the segmented countdown animation: one block per
// remaining share of the total, ten segments wide.
func segmentBar(remaining, total int) string {
	const width = 10
	filled := (remaining*width + total - 1) / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("■", filled) + strings.Repeat("·", width-filled)
	return timerReadyStyle.Render(bar)
}
