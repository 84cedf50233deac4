package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/multitimer/internal/alert"
	"github.com/andy/multitimer/internal/config"
	"github.com/andy/multitimer/internal/domain"
	"github.com/andy/multitimer/internal/timeformat"
)

// settings entry indices
const (
	settingAutoStart = iota
	settingSequential
	settingSegmented
	settingAudio
	settingVibration
	settingSound
	settingTheme
	settingTimerCount
	settingMaxTime
	settingCount
)

var soundOptions = []string{"beep", "chime", "none"}
var themeOptions = []string{"dark", "light"}

// SettingsModel edits the persisted preferences and the engine presets.
// Every change is applied to the live engine and saved immediately; prefs
// never wait for an explicit save action.
type SettingsModel struct {
	session *Session
	cursor  int
	err     error
}

// NewSettingsModel creates the settings screen
func NewSettingsModel(s *Session) tea.Model {
	return &SettingsModel{session: s}
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil

	switch {
	case key.Matches(keyMsg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, DefaultKeyMap.Down):
		if m.cursor < settingCount-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, DefaultKeyMap.Select), key.Matches(keyMsg, DefaultKeyMap.Toggle),
		key.Matches(keyMsg, DefaultKeyMap.Right):
		return m, m.apply(1)
	case key.Matches(keyMsg, DefaultKeyMap.Left):
		return m, m.apply(-1)
	}
	return m, nil
}

// apply mutates the setting under the cursor. direction picks the next or
// previous option for cycled entries; toggles ignore it.
func (m *SettingsModel) apply(direction int) tea.Cmd {
	s := m.session
	p := s.TimerPrefs

	switch m.cursor {
	case settingAutoStart:
		p.AutoStartEnabled = !p.AutoStartEnabled
		s.Engine.SetAutoStart(p.AutoStartEnabled)
	case settingSequential:
		p.SequentialExecution = !p.SequentialExecution
		s.Engine.SetSequential(p.SequentialExecution)
	case settingSegmented:
		p.SegmentedAnimation = !p.SegmentedAnimation
	case settingAudio:
		p.AudioEnabled = !p.AudioEnabled
		m.pushAlertOptions()
	case settingVibration:
		p.VibrationEnabled = !p.VibrationEnabled
		m.pushAlertOptions()
	case settingSound:
		p.SelectedSound = cycle(soundOptions, p.SelectedSound, direction)
		m.pushAlertOptions()
	case settingTheme:
		p.CurrentTheme = cycle(themeOptions, p.CurrentTheme, direction)
	case settingTimerCount:
		count := cycleInt(config.TimerCountPresets, s.App.Config.Engine.TimerCount, direction)
		if err := s.Engine.ChangeTimerCount(count); err != nil {
			m.err = err
			return nil
		}
		if err := s.Board.ChangeCounterCount(count); err != nil {
			m.err = err
			return nil
		}
		s.App.Config.Engine.TimerCount = count
		// Rebuilds reset labels to defaults; keep the persisted blobs in
		// step so the next launch does not resurrect the old ones.
		p.Labels = s.Engine.Labels()
		s.CounterPrefs.Labels = s.Board.Labels()
		return tea.Batch(m.saveConfigAndPrefs(), savePrefsCmd(s, domain.BoardCounter, s.CounterPrefs))
	case settingMaxTime:
		maxTime := cycleInt(config.MaxTimePresets, s.App.Config.Engine.MaxTime, direction)
		if err := s.Engine.ChangeMaxTime(maxTime); err != nil {
			m.err = err
			return nil
		}
		s.App.Config.Engine.MaxTime = maxTime
		p.Labels = s.Engine.Labels()
		return m.saveConfigAndPrefs()
	}

	return savePrefsCmd(s, domain.BoardTimer, p)
}

func (m *SettingsModel) pushAlertOptions() {
	p := m.session.TimerPrefs
	m.session.Notifier.SetOptions(alert.Options{
		AudioEnabled:     p.AudioEnabled,
		VibrationEnabled: p.VibrationEnabled,
		Sound:            p.SelectedSound,
	})
}

func (m *SettingsModel) saveConfigAndPrefs() tea.Cmd {
	s := m.session
	prefsCmd := savePrefsCmd(s, domain.BoardTimer, s.TimerPrefs)
	return tea.Batch(prefsCmd, func() tea.Msg {
		if err := s.App.SaveConfig(); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	})
}

func cycle(options []string, current string, direction int) string {
	for i, opt := range options {
		if opt == current {
			return options[(i+direction+len(options))%len(options)]
		}
	}
	return options[0]
}

func cycleInt(options []int, current, direction int) int {
	for i, opt := range options {
		if opt == current {
			return options[(i+direction+len(options))%len(options)]
		}
	}
	return options[0]
}

// View renders the settings list
func (m *SettingsModel) View() string {
	s := m.session
	p := s.TimerPrefs

	entries := []struct {
		name  string
		value string
	}{
		{"Auto-start on set", onOff(p.AutoStartEnabled)},
		{"Sequential execution", onOff(p.SequentialExecution)},
		{"Segmented animation", onOff(p.SegmentedAnimation)},
		{"Audio", onOff(p.AudioEnabled)},
		{"Vibration", onOff(p.VibrationEnabled)},
		{"Sound", p.SelectedSound},
		{"Theme", p.CurrentTheme},
		{"Timer count", fmt.Sprintf("%d", s.App.Config.Engine.TimerCount)},
		{"Max time", timeformat.Format(s.App.Config.Engine.MaxTime)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	for i, entry := range entries {
		line := fmt.Sprintf("%-22s %s", entry.name, entry.value)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(" "+line+" ") + "\n")
		} else {
			b.WriteString(" " + line + " \n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓=select, enter/space=toggle, ←/→=cycle"))
	b.WriteString("\n" + subtitleStyle.Render("Changing timer count or max time resets all timers and counters."))

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
