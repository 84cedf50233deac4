package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/multitimer/internal/alert"
	"github.com/andy/multitimer/internal/app"
	"github.com/andy/multitimer/internal/counter"
	"github.com/andy/multitimer/internal/domain"
	"github.com/andy/multitimer/internal/engine"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenTimers Screen = iota
	ScreenCounters
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenTimers:
		return "Timers"
	case ScreenCounters:
		return "Counters"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Session bundles the live components shared by all screens.
type Session struct {
	App          *app.App
	Engine       *engine.Engine
	Board        *counter.Board
	Notifier     *alert.Notifier
	TimerPrefs   *domain.Preferences
	CounterPrefs *domain.Preferences
}

// savePrefsCmd persists a board's blob in the background. Mutation of the
// shared blob happens in Update; only the IO runs off the event loop.
func savePrefsCmd(s *Session, board string, p *domain.Preferences) tea.Cmd {
	snapshot := p.Clone()
	return func() tea.Msg {
		err := s.App.SavePreferences(context.Background(), board, snapshot)
		return prefsSavedMsg{err: err}
	}
}

// InputCapturer is implemented by screens that capture keyboard input (e.g.
// text forms). When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// Model is the root Bubble Tea model
type Model struct {
	session       *Session
	currentScreen Screen
	width         int
	height        int

	timers   tea.Model
	counters tea.Model
	settings tea.Model

	toast string
	err   error
}

// New creates a new root model
func New(s *Session) Model {
	return Model{
		session:       s,
		currentScreen: ScreenTimers,
		timers:        NewTimersModel(s),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.timers != nil {
		return m.timers.Init()
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	switch screen {
	case ScreenTimers:
		if m.timers == nil {
			m.timers = NewTimersModel(m.session)
			return m.timers.Init()
		}
	case ScreenCounters:
		if m.counters == nil {
			m.counters = NewCountersModel(m.session)
			return m.counters.Init()
		}
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.session)
			return m.settings.Init()
		}
	}
	return nil
}

// activeScreen returns the model for the current screen
func (m *Model) activeScreen() tea.Model {
	switch m.currentScreen {
	case ScreenTimers:
		return m.timers
	case ScreenCounters:
		return m.counters
	case ScreenSettings:
		return m.settings
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.activeScreen().(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Clear transient state on any keypress
		m.toast = ""
		m.err = nil

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Timers):
				m.currentScreen = ScreenTimers
				return m, m.initScreen(ScreenTimers)

			case key.Matches(msg, DefaultKeyMap.Counters):
				m.currentScreen = ScreenCounters
				return m, m.initScreen(ScreenCounters)

			case key.Matches(msg, DefaultKeyMap.Settings):
				m.currentScreen = ScreenSettings
				return m, m.initScreen(ScreenSettings)
			}
		}

	case SwitchScreenMsg:
		m.currentScreen = msg.Screen
		return m, m.initScreen(msg.Screen)

	case ToastMsg:
		m.toast = msg.Text
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to the current screen. Engine notifications always go
	// to the timers screen so it stays current while hidden.
	var cmd tea.Cmd
	switch msg.(type) {
	case TimerUpdatedMsg, RunningCountMsg, BoardRebuiltMsg:
		if m.timers != nil {
			m.timers, cmd = m.timers.Update(msg)
		}
		return m, cmd
	}

	switch m.currentScreen {
	case ScreenTimers:
		if m.timers != nil {
			m.timers, cmd = m.timers.Update(msg)
		}
	case ScreenCounters:
		if m.counters != nil {
			m.counters, cmd = m.counters.Update(msg)
		}
	case ScreenSettings:
		if m.settings != nil {
			m.settings, cmd = m.settings.Update(msg)
		}
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	accent := accentFor(m.session.TimerPrefs.CurrentTheme)
	header := headerStyle.Foreground(accent).Render(fmt.Sprintf("multitimer - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[T]imers  [C]ounters  [,] Settings  [Q]uit")

	var content string
	if screen := m.activeScreen(); screen != nil {
		content = screen.View()
	} else {
		content = "Loading..."
	}

	statusLine := ""
	if m.toast != "" {
		statusLine = lipgloss.NewStyle().Foreground(warningColor).Render("\n" + m.toast)
	} else if m.err != nil {
		statusLine = lipgloss.NewStyle().Foreground(errorColor).Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, statusLine, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run wires the engine, counter board and alert notifier to a fresh Bubble
// Tea program and blocks until the user quits.
func Run(a *app.App) error {
	ctx := context.Background()

	timerPrefs, err := a.LoadPreferences(ctx, domain.BoardTimer)
	if err != nil {
		return fmt.Errorf("failed to load timer preferences: %w", err)
	}
	counterPrefs, err := a.LoadPreferences(ctx, domain.BoardCounter)
	if err != nil {
		return fmt.Errorf("failed to load counter preferences: %w", err)
	}

	bridge := newDisplayBridge()
	notifier := alert.New(os.Stdout, bridge.toast)
	notifier.SetOptions(alert.Options{
		AudioEnabled:     timerPrefs.AudioEnabled,
		VibrationEnabled: timerPrefs.VibrationEnabled,
		Sound:            timerPrefs.SelectedSound,
	})

	engCfg := a.Config.Engine
	engCfg.AutoStartEnabled = timerPrefs.AutoStartEnabled
	engCfg.SequentialExecution = timerPrefs.SequentialExecution

	eng, err := engine.New(engCfg, engine.NewClock(), bridge, notifier)
	if err != nil {
		return fmt.Errorf("failed to create timer engine: %w", err)
	}
	defer eng.Close()
	eng.ApplyLabels(timerPrefs.Labels)

	board, err := counter.NewBoard(a.Config.Engine.TimerCount, a.Config.Engine.LabelLimit)
	if err != nil {
		return fmt.Errorf("failed to create counter board: %w", err)
	}
	board.ApplyLabels(counterPrefs.Labels)

	session := &Session{
		App:          a,
		Engine:       eng,
		Board:        board,
		Notifier:     notifier,
		TimerPrefs:   timerPrefs,
		CounterPrefs: counterPrefs,
	}

	p := tea.NewProgram(New(session), tea.WithAltScreen())
	bridge.attach(p)
	_, err = p.Run()
	return err
}
