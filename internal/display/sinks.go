package display

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Recorder is a Sink that keeps every screen it was asked to show
type Recorder struct {
	mu      sync.Mutex
	screens []Screen
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ShowMessage implements Sink
func (r *Recorder) ShowMessage(line1, line2 string) {
	r.record(MessageScreen(line1, line2))
}

// ShowMenu implements Sink
func (r *Recorder) ShowMenu(view MenuView) {
	r.record(MenuScreen(view))
}

func (r *Recorder) record(s Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, s)
}

// Last returns the most recent screen
func (r *Recorder) Last() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.screens) == 0 {
		return Screen{}
	}
	return r.screens[len(r.screens)-1]
}

// Screens returns a copy of every recorded screen
func (r *Recorder) Screens() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Screen, len(r.screens))
	copy(out, r.screens)
	return out
}

// Count returns how many screens were rendered
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}

// LogSink renders screens as log lines, for headless stations
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a LogSink
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger.WithPrefix("display")}
}

// ShowMessage implements Sink
func (s *LogSink) ShowMessage(line1, line2 string) {
	s.logger.Info(line1, "detail", line2)
}

// ShowMenu implements Sink
func (s *LogSink) ShowMenu(view MenuView) {
	s.logger.Info("Menu", "screen", MenuScreen(view).Text())
}
