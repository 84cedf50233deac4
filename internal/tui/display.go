package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/multitimer/internal/domain"
)

// displayBridge adapts engine notifications into Bubble Tea messages. The
// engine emits from its tick callbacks; Program.Send is safe to call from
// any goroutine. Notifications arriving before the program is attached are
// dropped — the model pulls a full snapshot on Init anyway.
type displayBridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

func newDisplayBridge() *displayBridge {
	return &displayBridge{}
}

func (b *displayBridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *displayBridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *displayBridge) TimerUpdated(i int, snap domain.TimerSnapshot) {
	b.send(TimerUpdatedMsg{Index: i, Snapshot: snap})
}

func (b *displayBridge) RunningCountChanged(running, total int) {
	b.send(RunningCountMsg{Running: running, Total: total})
}

func (b *displayBridge) CollectionRebuilt(snaps []domain.TimerSnapshot) {
	b.send(BoardRebuiltMsg{Snapshots: snaps})
}

// toast is the alert fallback channel.
func (b *displayBridge) toast(text string) {
	b.send(ToastMsg{Text: text})
}
