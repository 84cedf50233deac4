package domain

// Storage keys for the persisted preference blobs. The timer board and the
// counter board are independent app instances and never share a blob.
const (
	BoardTimer   = "board.timer"
	BoardCounter = "board.counter"
)

// Preferences is the flat blob persisted per board. Only user-chosen
// settings live here; live countdown values are never persisted.
type Preferences struct {
	AutoStartEnabled    bool     `json:"autoStartEnabled"`
	SequentialExecution bool     `json:"sequentialExecution"`
	SegmentedAnimation  bool     `json:"segmentedAnimation"`
	SelectedSound       string   `json:"selectedSound"`
	CurrentTheme        string   `json:"currentTheme"`
	AudioEnabled        bool     `json:"audioEnabled"`
	VibrationEnabled    bool     `json:"vibrationEnabled"`
	Labels              []string `json:"labels"`
}

// DefaultPreferences returns the blob used when nothing has been saved yet.
func DefaultPreferences() *Preferences {
	return &Preferences{
		SelectedSound:    "beep",
		CurrentTheme:     "dark",
		AudioEnabled:     true,
		VibrationEnabled: true,
	}
}

// Clone returns a deep copy so callers can mutate freely before saving.
func (p *Preferences) Clone() *Preferences {
	out := *p
	out.Labels = append([]string(nil), p.Labels...)
	return &out
}
