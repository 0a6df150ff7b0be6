package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LogNotifier records shopper-facing messages in the log at info level.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Error(message string) {
	n.log.WithField("toast", "error").Info(message)
}

// Recorder keeps messages in memory until drained.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Drain returns the recorded messages and clears them.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.messages
	r.messages = nil
	return out
}

// Multi fans a message out to several notifiers.
type Multi []interface{ Error(string) }

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
